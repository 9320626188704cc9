package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// sqliteConfig writes a config file pointing at a fresh sqlite database
func sqliteConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "ayuda.db")
	configPath = writeFile(t, dir, "config.toml", `
[database]
driver = "sqlite"
path = "`+filepath.ToSlash(dbPath)+`"

[relief]
import_center = "Carga Histórica Municipal"
import_officer = "Admin (Carga Masiva)"
`)
	return configPath, dbPath
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runWith(t, &RootOptions{}, stdin, args...)
}

func runWith(t *testing.T, opts *RootOptions, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseMappings(t *testing.T) {
	mapping, err := ParseMappings([]string{"identity=RUT", " name = Nombre Completo ", "sector=Zona=Norte"})
	require.NoError(t, err)
	assert.Equal(t, csvimport.ColumnMapping{
		"identity": "RUT",
		"name":     "Nombre Completo",
		"sector":   "Zona=Norte",
	}, mapping)

	for _, bad := range []string{"identity", "=RUT", "identity="} {
		_, err := ParseMappings([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestPreviewCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", "RUT;Nombre\n11.111.111-1;Ana\n")

	out, err := run(t, "", "preview", "--file", path)
	require.NoError(t, err)

	var preview csvimport.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, []string{"RUT", "Nombre"}, preview.Headers)
	assert.Equal(t, ";", preview.Delimiter)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, "Ana", preview.Rows[0]["Nombre"])
}

func TestPreviewCommand_RequiresFile(t *testing.T) {
	_, err := run(t, "", "preview")
	assert.Error(t, err)
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := run(t, "s3creta\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3creta")))

	_, err = run(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestPeopleAndDeliveriesCommands(t *testing.T) {
	configPath, dbPath := sqliteConfig(t)
	dir := t.TempDir()

	people := writeFile(t, dir, "people.csv",
		"RUT,Nombre,Direccion\n11.111.111-1,Ana Pérez,Los Aromos 12\n22.222.222-2,Luis Soto,Los Aromos 12\n")
	out, err := run(t, "", "people", "-c", configPath, "-f", people,
		"-m", "identity=RUT", "-m", "name=Nombre", "-m", "address=Direccion")
	require.NoError(t, err)

	var result importapp.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, importapp.ModePeople, result.Mode)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Succeeded)

	deliveries := writeFile(t, dir, "deliveries.csv",
		"RUT,Producto,Cantidad\n111111111,Agua,2\n99.999.999-9,Pañales,1\n")
	out, err = run(t, "", "deliveries", "-c", configPath, "-f", deliveries,
		"-m", "identity=RUT", "-m", "item=Producto", "-m", "quantity=Cantidad", "--date", "2024-02-03")
	require.NoError(t, err)

	result = importapp.ImportResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, importapp.ModeDeliveries, result.Mode)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.MissingRecipient)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: dbPath}, nil)
	require.NoError(t, err)
	defer db.Close()

	history, err := persistence.NewGormDeliveryRepository(db.DB).HistoryFor(context.Background(), registry.IdentityKey("111111111"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Agua", history[0].Item)
	assert.Equal(t, 2, history[0].Quantity)
	assert.Equal(t, "Carga Histórica Municipal", history[0].Center)
	assert.Equal(t, "Admin (Carga Masiva)", history[0].Officer)
}

func TestPeopleCommand_RejectsBadMapping(t *testing.T) {
	configPath, _ := sqliteConfig(t)
	path := writeFile(t, t.TempDir(), "people.csv", "RUT,Nombre\n1-9,Ana\n")

	_, err := run(t, "", "people", "-c", configPath, "-f", path, "-m", "identity")
	assert.Error(t, err)

	_, err = run(t, "", "people", "-c", configPath, "-f", path, "-m", "identity=RUT")
	assert.Error(t, err)
}

func TestPeopleCommand_LogsImportSummary(t *testing.T) {
	configPath, _ := sqliteConfig(t)
	path := writeFile(t, t.TempDir(), "people.csv",
		"RUT,Nombre,Direccion\n11.111.111-1,Ana Pérez,Los Aromos 12\n22.222.222-2,,Los Aromos 12\n")

	core, logs := observer.New(zapcore.InfoLevel)
	_, err := runWith(t, &RootOptions{log: zap.New(core)}, "", "people", "-c", configPath, "-f", path,
		"-m", "identity=RUT", "-m", "name=Nombre", "-m", "address=Direccion")
	require.NoError(t, err)

	entries := logs.FilterMessage("Import finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, importapp.ModePeople, fields["mode"])
	assert.EqualValues(t, 1, fields["succeeded"])
	assert.EqualValues(t, 1, fields["failed"])
}
