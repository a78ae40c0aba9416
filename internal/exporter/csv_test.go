package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	table := NewTable("top-venues", "venue", "wickets", "economy")
	table.AddRow("Eden Gardens, Kolkata", 12, 4.25)
	table.AddRow(`Lord's "Home"`, 7, (*float64)(nil))
	return table
}

func TestCSVWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().Write(&buf, sampleTable()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "output should start with BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"venue", "wickets", "economy"},
		{"Eden Gardens, Kolkata", "12", "4.25"},
		{`Lord's "Home"`, "7", ""},
	}, records)
}

func TestCSVWriterWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriterWithOptions(WriteOptions{BOMPrefix: false})
	require.NoError(t, w.Write(&buf, NewTable("empty", "a", "b")))
	assert.Equal(t, "a,b\n", buf.String())
}

func TestCSVWriterWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, NewCSVWriter().WriteFile(path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Eden Gardens, Kolkata",12,4.25`)
}
