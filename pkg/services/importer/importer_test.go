package importer

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/store/backend"
	"github.com/de-tools/service-atlas/pkg/store/records"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
)

var header = []any{
	"DATA_TOA", "TECNICO", "CIDADES", "STATUS", "LATIDUDE", "LONGITUDE",
	"VALOR TÉCNICO", "VALOR EMPRESA", "CONTRATO",
}

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "servicos.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func sheetRows() [][]any {
	return [][]any{
		{"15/01/2025 10:30", "joão silva", "campinas", "executado", -22.9, -47.06, "1.500,00", 300, 123},
		{"15/01/2025 10:30", "joão silva", "campinas", "executado", -22.9, -47.06, "1.500,00", 300, 123},
		{"02/01/2025", "MARIA", nil, "CANCELADO", nil, nil, 50, 100, 456},
		{nil, "PEDRO", "SUMARE", "EXECUTADO", nil, nil, 10, 20, 789},
	}
}

func newImporter(t *testing.T, s Settings) (*Importer, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w, err := records.NewWriter(db, sqlstore.SQLite, "servicos")
	require.NoError(t, err)
	return New(db, w, normalize.New(), s), db
}

func TestImporter_Import(t *testing.T) {
	// Given
	path := writeSheet(t, sheetRows())
	imp, db := newImporter(t, Settings{TitleCase: true, Indexes: true})
	ctx := context.Background()

	// When
	summary, err := imp.Import(ctx, path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Read)
	assert.Equal(t, 1, summary.DroppedTimestamp)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 2, summary.Written)
	assert.Equal(t, 2, summary.Technicians)
	assert.Equal(t, 2, summary.Cities)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), summary.First)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), summary.Last)
	assert.InDelta(t, 1550.0, summary.TechnicianValueTotal, 1e-9)
	assert.InDelta(t, 400.0, summary.CompanyValueTotal, 1e-9)

	b, err := sqlstore.New(db, sqlstore.SQLite, records.Schema("servicos"))
	require.NoError(t, err)
	r, err := domain.NewQueryRange(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	set, err := b.FetchRange(ctx, r, backend.FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "Maria", set.Row(0)["TECNICO"])
	assert.Equal(t, domain.Unspecified, set.Row(0)["CIDADES"])
	assert.Equal(t, "João Silva", set.Row(1)["TECNICO"])
	assert.Equal(t, "Campinas", set.Row(1)["CIDADES"])
}

func TestImporter_ReplaceKeepsSingleCopy(t *testing.T) {
	// Given
	path := writeSheet(t, sheetRows())
	imp, db := newImporter(t, Settings{Replace: true})
	ctx := context.Background()

	// When
	_, err := imp.Import(ctx, path)
	require.NoError(t, err)
	_, err = imp.Import(ctx, path)
	require.NoError(t, err)

	// Then
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "servicos"`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestImporter_AppendWithoutReplace(t *testing.T) {
	path := writeSheet(t, sheetRows())
	imp, db := newImporter(t, Settings{})
	ctx := context.Background()

	_, err := imp.Import(ctx, path)
	require.NoError(t, err)
	_, err = imp.Import(ctx, path)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "servicos"`).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestImporter_NothingToImport(t *testing.T) {
	path := writeSheet(t, [][]any{{nil, "PEDRO", "SUMARE", "EXECUTADO", nil, nil, 10, 20, 789}})
	imp, _ := newImporter(t, Settings{})

	summary, err := imp.Import(context.Background(), path)

	assert.ErrorIs(t, err, ErrNothingToImport)
	assert.Equal(t, 1, summary.DroppedTimestamp)
}

func TestImporter_MissingFile(t *testing.T) {
	imp, _ := newImporter(t, Settings{})

	_, err := imp.Import(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))

	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	lat := -22.9
	lat2 := -22.9
	recs := []domain.ServiceRecord{
		{Timestamp: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), TechnicianID: "ANA", Latitude: &lat},
		{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), TechnicianID: "BIA"},
		{Timestamp: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), TechnicianID: "ANA", Latitude: &lat2},
		{Timestamp: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), TechnicianID: "ANA"},
	}

	out := Clean(recs, false)

	require.Len(t, out, 3)
	assert.Equal(t, "BIA", out[0].TechnicianID)
	assert.NotNil(t, out[1].Latitude)
	assert.Nil(t, out[2].Latitude)
}

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, *params.Bucket, *params.Key)
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestImporter_ImportFromS3(t *testing.T) {
	// Given
	content, err := os.ReadFile(writeSheet(t, sheetRows()))
	require.NoError(t, err)
	g := new(mockGetter)
	g.On("GetObject", mock.Anything, "campo", "exports/servicos.xlsx").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(content))}, nil)

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	defer db.Close()
	w, err := records.NewWriter(db, sqlstore.SQLite, "servicos")
	require.NoError(t, err)
	imp := New(db, w, normalize.New(), Settings{}, WithObjects(g))

	// When
	summary, err := imp.Import(context.Background(), "s3://campo/exports/servicos.xlsx")

	// Then
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Written)
	g.AssertExpectations(t)
}
