package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"DATA_TOA", "TECNICO", "CIDADES", "STATUS", "LATIDUDE", "LONGITUDE", "VALOR TÉCNICO", "VALOR EMPRESA", "CONTRATO"},
		{"15/01/2025 10:30", "joão silva", "campinas", "executado", -22.9, -47.06, "1.500,00", 300, 123},
		{"02/01/2025 08:15", "MARIA", "SUMARE", "CONCLUÍDO", nil, nil, 50, 100, 456},
		{nil, "PEDRO", "SUMARE", "EXECUTADO", nil, nil, 10, 20, 789},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(dir, "servicos.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cli := NewCLI(Options{Output: &out, ErrOutput: &errOut})
	cli.SetArgs(args)
	err := cli.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCLI_ImportThenQuery(t *testing.T) {
	// Given
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"backend: sqlite\nsqlite:\n  path: "+filepath.Join(dir, "servicos.db")+"\nlog:\n  level: error\n"), 0o644))

	// When
	out, _, err := run(t, "import", "--config", cfgPath, "--file", sheet)

	// Then
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 services into sqlite.servicos")
	assert.Contains(t, out, "Rows read: 3, without date: 1, duplicates: 0")
	assert.Contains(t, out, "Period: 02/01/2025 to 15/01/2025")

	t.Run("query", func(t *testing.T) {
		out, notices, err := run(t, "query", "-c", cfgPath, "--start", "01/01/2025", "--end", "31/01/2025")

		require.NoError(t, err)
		assert.Contains(t, out, "João Silva")
		assert.Contains(t, out, "02/01/2025 08:15")
		assert.Contains(t, out, "2 records")
		assert.Contains(t, notices, "[info] Loaded 2 records")
	})

	t.Run("query located", func(t *testing.T) {
		out, _, err := run(t, "query", "-c", cfgPath, "--start", "01/01/2025", "--end", "31/01/2025", "--located")

		require.NoError(t, err)
		assert.Contains(t, out, "1 records")
		assert.NotContains(t, out, "Maria")
	})

	t.Run("report", func(t *testing.T) {
		out, _, err := run(t, "report", "-c", cfgPath, "--start", "01/01/2025", "--end", "31/01/2025")

		require.NoError(t, err)
		assert.Contains(t, out, "Field Service Report (31 days)")
		assert.Contains(t, out, "=== Cities ===")
		assert.Contains(t, out, "Company value: BRL 400.00")
	})

	t.Run("report plain with filter", func(t *testing.T) {
		out, _, err := run(t, "report", "-c", cfgPath, "--start", "01/01/2025", "--end", "31/01/2025",
			"--format", "plain", "--city", "Sumare")

		require.NoError(t, err)
		assert.Contains(t, out, "- Sumare: 1 services")
		assert.NotContains(t, out, "Campinas")
	})

	t.Run("bounds", func(t *testing.T) {
		out, notices, err := run(t, "bounds", "-c", cfgPath)

		require.NoError(t, err)
		assert.Contains(t, out, "First: 02/01/2025 08:15")
		assert.Contains(t, out, "Rows:  2")
		assert.Contains(t, notices, "Data available from 02/01/2025 08:15 to 15/01/2025 10:30")
	})

	t.Run("columns", func(t *testing.T) {
		out, _, err := run(t, "columns", "-c", cfgPath)

		require.NoError(t, err)
		assert.Contains(t, out, "LATIDUDE")
		assert.Contains(t, out, "latitude")
	})
}

func TestCLI_InvalidOrder(t *testing.T) {
	_, _, err := run(t, "query", "--start", "01/01/2025", "--end", "31/01/2025", "--order", "sideways")

	assert.Error(t, err)
}

func TestCLI_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: mysql\n"), 0o644))

	_, _, err := run(t, "bounds", "-c", cfgPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
}
