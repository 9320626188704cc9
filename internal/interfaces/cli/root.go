// Package cli implements the ayuda-import command: offline bulk loads of
// people and historical deliveries straight into the datastore.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// log replaces the stderr logger when set
	log *zap.Logger
}

// NewRootCommand creates the root command of the importer.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ayuda-import",
		Short: "Bulk loads for the relief distribution tracker",
		Long: `Load the official list of affected people and the deliveries made
before the system existed from CSV exports, without going through the API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ./config.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewPreviewCommand())
	cmd.AddCommand(NewPeopleCommand(opts))
	cmd.AddCommand(NewDeliveriesCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())

	return cmd
}

// fileFlags are the flags shared by the commands reading an import file
type fileFlags struct {
	path     string
	mappings []string
}

func (f *fileFlags) register(cmd *cobra.Command, withMapping bool) {
	cmd.Flags().StringVarP(&f.path, "file", "f", "", "CSV file to read")
	_ = cmd.MarkFlagRequired("file")
	if withMapping {
		cmd.Flags().StringArrayVarP(&f.mappings, "map", "m", nil, "column mapping as field=Header (repeatable)")
	}
}

func (f *fileFlags) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// ParseMappings turns field=Header pairs into a column mapping. Header
// names may contain '=' after the first one.
func ParseMappings(pairs []string) (csvimport.ColumnMapping, error) {
	mapping := make(csvimport.ColumnMapping, len(pairs))
	for _, pair := range pairs {
		field, header, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		header = strings.TrimSpace(header)
		if !ok || field == "" || header == "" {
			return nil, fmt.Errorf("invalid mapping %q: want field=Header", pair)
		}
		mapping[field] = header
	}
	return mapping, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
