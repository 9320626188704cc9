package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFRUT,Nombre\n1-9,Ana"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, "RUT", parser.Headers()[0])
	})

	t.Run("empty file returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("invalid encoding returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("RUT,Nombre\n1-9,Mu\xf1oz\n"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("semicolon is detected", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("RUT;Nombre;Dirección\n1-9;Ana, María;Los Pinos 12"))
		require.NoError(t, err)
		assert.Equal(t, ';', parser.Delimiter())
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"RUT", "Nombre", "Dirección"}, parser.Headers())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Ana, María", row.Get("Nombre"))
	})

	t.Run("explicit delimiter wins", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("a;b,c\n1;2,3"), WithDelimiter(','))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"a;b", "c"}, parser.Headers())
	})
}

func TestCSVParser_ReadRows(t *testing.T) {
	data := "RUT,Nombre,Familia\n 12.345.678-5 , Ana ,3\n,,\n9.876.543-2,Luis\n"
	parser, err := ParseFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	rows, err := parser.ReadAllRows(0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].LineNumber)
	assert.Equal(t, "12.345.678-5", rows[0].Get("RUT"))
	assert.Equal(t, "Ana", rows[0].Get("Nombre"))

	assert.Equal(t, 4, rows[1].LineNumber)
	assert.Equal(t, "", rows[1].Get("Familia"))
	assert.Equal(t, 3, parser.TotalRows())
}

func TestCSVParser_ReadAllRows_Limit(t *testing.T) {
	parser, err := ParseFromBytes([]byte("a\n1\n2\n3\n"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	rows, err := parser.ReadAllRows(2)
	assert.ErrorIs(t, err, ErrTooManyRows)
	assert.Len(t, rows, 2)
}

func TestCSVParser_ReadRow_EOF(t *testing.T) {
	parser, err := ParseFromBytes([]byte("a,b\n"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	_, err = parser.ReadRow()
	assert.Equal(t, io.EOF, err)
}

func TestColumnMapping_Check(t *testing.T) {
	parser, err := ParseFromBytes([]byte("RUT,Nombre,Dirección\n"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	t.Run("valid mapping", func(t *testing.T) {
		m := ColumnMapping{"identity": "RUT", "name": "Nombre", "address": "Dirección", "sector": ""}
		assert.NoError(t, m.Check(parser, "identity", "name"))
	})

	t.Run("unknown header", func(t *testing.T) {
		m := ColumnMapping{"identity": "Rut Beneficiario", "name": "Nombre"}
		err := m.Check(parser, "identity", "name")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "Rut Beneficiario")
	})

	t.Run("required field unmapped", func(t *testing.T) {
		m := ColumnMapping{"identity": "RUT"}
		err := m.Check(parser, "identity", "name")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'name' is not mapped")
	})
}

func TestBuildPreview(t *testing.T) {
	data := "RUT;Item;Cantidad\n1-9;Agua;2\n2-7;Pañales;1\n\n3-5;Colchón;1\n4-3;Frazada;4\n"
	preview, err := BuildPreview([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"RUT", "Item", "Cantidad"}, preview.Headers)
	assert.Equal(t, ";", preview.Delimiter)
	require.Len(t, preview.Rows, PreviewRows)
	assert.Equal(t, "Colchón", preview.Rows[2]["Item"])
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	ec.AddRequired(2, "RUT")
	ec.AddParse(3, "Cantidad", "integer >= 1", "dos")
	ec.AddParse(4, "Cantidad", "integer >= 1", "-1")

	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, 3, ec.TotalCount())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, "row 3, column 'Cantidad': expected integer >= 1", ec.Errors()[1].Error())
	assert.Equal(t, ErrCodeParse, ec.Errors()[1].Code)
}
