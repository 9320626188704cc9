package cli

import (
	"path/filepath"

	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	"github.com/spf13/cobra"
)

// NewPreviewCommand prints the headers and first rows of a file so the
// mapping can be chosen. It does not touch the datastore.
func NewPreviewCommand() *cobra.Command {
	var flags fileFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the columns and first rows of a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := flags.read()
			if err != nil {
				return err
			}
			preview, err := importapp.Preview(data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), preview)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// NewPeopleCommand loads the list of affected people.
func NewPeopleCommand(opts *RootOptions) *cobra.Command {
	var flags fileFlags
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Import affected people",
		Example: `  ayuda-import people -f damnificados.csv \
    -m identity=RUT -m name=Nombre -m address=Direccion -m sector=Sector`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(&flags)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.people.Import(e.withLogger(cmd.Context()), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// NewDeliveriesCommand loads deliveries made before the system existed.
func NewDeliveriesCommand(opts *RootOptions) *cobra.Command {
	var (
		flags       fileFlags
		fixedDate   string
		fixedCenter string
	)
	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Import historical deliveries",
		Example: `  ayuda-import deliveries -f entregas.csv \
    -m identity=RUT -m item=Producto -m quantity=Cantidad --date 2024-02-03`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(&flags)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.deliveries.Import(e.withLogger(cmd.Context()), importapp.DeliveryImportRequest{
				ImportRequest: req,
				FixedDate:     fixedDate,
				FixedCenter:   fixedCenter,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&fixedDate, "date", "", "date for rows without a date column (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&fixedCenter, "center", "", "center for rows without a center column")
	return cmd
}

func buildRequest(flags *fileFlags) (importapp.ImportRequest, error) {
	mapping, err := ParseMappings(flags.mappings)
	if err != nil {
		return importapp.ImportRequest{}, err
	}
	data, err := flags.read()
	if err != nil {
		return importapp.ImportRequest{}, err
	}
	return importapp.ImportRequest{
		FileName: filepath.Base(flags.path),
		Data:     data,
		Mapping:  mapping,
	}, nil
}
