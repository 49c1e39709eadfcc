package normalize

import (
	"testing"
	"time"

	"github.com/de-tools/service-atlas/pkg/adapters"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NeonRow(t *testing.T) {
	// Given a row shaped like the postgres "basic" table
	row := store.RawRow{
		"DATA_TOA":      time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
		"TECNICO":       "  JOAO SILVA ",
		"CIDADES":       "CAMPINAS",
		"BASE":          "BASE CAMPINAS",
		"STATUS":        "EXECUTADO",
		"SERVIÇO":       "INSTALACAO",
		"LATIDUDE":      -22.9,
		"LONGITUDE":     -47.06,
		"VALOR TÉCNICO": "R$ 1.234,56",
		"VALOR EMPRESA": "1.500,00",
		"CONTRATO":      int64(998877),
		"OS":            "OS-1",
	}

	// When
	rec, err := New().Normalize(row)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "JOAO SILVA", rec.TechnicianID)
	assert.Equal(t, "CAMPINAS", rec.City)
	assert.Equal(t, "INSTALACAO", rec.ServiceType)
	assert.InDelta(t, 1234.56, rec.TechnicianValue, 1e-9)
	assert.InDelta(t, 1500.0, rec.CompanyValue, 1e-9)
	assert.False(t, rec.Unparsed())
	require.True(t, rec.HasLocation())
	assert.Equal(t, -22.9, *rec.Latitude)
	assert.Equal(t, "998877", rec.Contract)
	assert.Equal(t, "OS-1", rec.OrderID)
}

func TestNormalize_MySQLColumnSpelling(t *testing.T) {
	row := store.RawRow{
		"data_toa":      "2025-01-10 09:30:00",
		"tecnico":       "MARIA",
		"cidades":       nil,
		"servico":       "REPARO",
		"LATITUDE":      "-22,5",
		"LONGITUDE":     "-47,1",
		"VALOR_TÉCNICO": "80,00",
	}

	rec, err := New().Normalize(row)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, "REPARO", rec.ServiceType)
	assert.Equal(t, domain.Unspecified, rec.City)
	assert.Equal(t, domain.Unspecified, rec.Base)
	assert.InDelta(t, 80.0, rec.TechnicianValue, 1e-9)
	assert.Equal(t, 0.0, rec.CompanyValue)
	assert.False(t, rec.CompanyValueUnparsed)
	require.True(t, rec.HasLocation())
}

func TestNormalize_UnparseableTimestamp_IsDropped(t *testing.T) {
	_, err := New().Normalize(store.RawRow{"DATA_TOA": "ontem", "TECNICO": "X"})
	assert.ErrorIs(t, err, ErrDropped)

	_, err = New().Normalize(store.RawRow{"TECNICO": "X"})
	assert.ErrorIs(t, err, ErrDropped)
}

func TestNormalize_GarbageCurrency_ZeroWithFlag(t *testing.T) {
	rec, err := New().Normalize(store.RawRow{
		"DATA_TOA":      "10/01/2025",
		"VALOR TÉCNICO": "a combinar",
		"VALOR EMPRESA": "",
	})

	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.TechnicianValue)
	assert.True(t, rec.TechnicianValueUnparsed)
	assert.Equal(t, 0.0, rec.CompanyValue)
	assert.False(t, rec.CompanyValueUnparsed)
}

func TestNormalize_MissingCoordinates_AreAbsentNotZero(t *testing.T) {
	rec, err := New().Normalize(store.RawRow{
		"DATA_TOA":  "10/01/2025",
		"LATIDUDE":  nil,
		"LONGITUDE": "n/a",
	})

	require.NoError(t, err)
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.Longitude)
	assert.False(t, rec.HasLocation())
}

func TestNormalizeSet_DropsRowsIndependently(t *testing.T) {
	// Given
	set := store.RowSet{
		Columns: []string{"DATA_TOA", "TECNICO", "LATIDUDE", "LONGITUDE", "VALOR TÉCNICO"},
		Rows: [][]any{
			{"01/01/2025 08:00", "A", -22.0, -47.0, "10,00"},
			{"not a date", "B", -22.0, -47.0, "10,00"},
			{nil, "C", nil, nil, "10,00"},
			{"02/01/2025 08:00", "", nil, nil, "xx"},
		},
	}

	// When
	records, stats := New().NormalizeSet(set)

	// Then
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].TechnicianID)
	assert.Equal(t, domain.Unspecified, records[1].TechnicianID)
	assert.Equal(t, domain.NormalizeStats{
		Input:            4,
		Kept:             2,
		DroppedTimestamp: 2,
		UnparsedCurrency: 1,
		MissingLocation:  1,
	}, stats)
}

func TestNormalizeSet_EmptyInput_ReturnsEmptySlice(t *testing.T) {
	records, stats := New().NormalizeSet(store.EmptyRowSet(nil))

	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.Input)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	lat, lon := 0.0, -47.5
	canonical := domain.ServiceRecord{
		Timestamp:       time.Date(2025, 1, 3, 14, 0, 0, 0, time.UTC),
		TechnicianID:    "JOAO",
		City:            domain.Unspecified,
		Base:            "BASE BAURU",
		Status:          "EXECUTADO",
		ServiceType:     "INSTALACAO",
		Latitude:        &lat,
		Longitude:       &lon,
		TechnicianValue: 1234.56,
		CompanyValue:    1500,
		Contract:        "123",
		OrderID:         "9",
	}
	n := New()

	again, err := n.Normalize(adapters.MapServiceRecordToRawRow(canonical))
	require.NoError(t, err)
	if diff := cmp.Diff(canonical, again); diff != "" {
		t.Errorf("re-normalizing changed the record (-want +got):\n%s", diff)
	}

	flagged := canonical
	flagged.TechnicianValue = 0
	flagged.TechnicianValueUnparsed = true
	if diff := cmp.Diff(flagged, n.NormalizeRecord(n.NormalizeRecord(flagged))); diff != "" {
		t.Errorf("NormalizeRecord is not idempotent (-want +got):\n%s", diff)
	}
}

func TestWithSentinel(t *testing.T) {
	rec, err := New(WithSentinel("N/A")).Normalize(store.RawRow{"DATA_TOA": "10/01/2025"})

	require.NoError(t, err)
	assert.Equal(t, "N/A", rec.City)
}

func TestNormalize_DuplicateAliases_ResolveDeterministically(t *testing.T) {
	// Given a row carrying two spellings of the timestamp column
	row := store.RawRow{
		"DATA_TOA": "20/01/2025 10:00",
		"DATA TOA": "05/01/2025 08:00",
		"TECNICO":  "JOAO",
	}
	want := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)

	// When / Then: map iteration order never changes the pick
	for range 50 {
		rec, err := New().Normalize(row)
		require.NoError(t, err)
		require.Equal(t, want, rec.Timestamp)
	}
}

func TestResolveColumns(t *testing.T) {
	idx := ResolveColumns([]string{"DATA", "DATA_TOA", "Latidude", "valor_empresa"})

	col, ok := idx.Column(domain.FieldTimestamp)
	require.True(t, ok)
	assert.Equal(t, "DATA_TOA", col)

	col, ok = idx.Column(domain.FieldLatitude)
	require.True(t, ok)
	assert.Equal(t, "Latidude", col)

	col, ok = idx.Column(domain.FieldCompanyValue)
	require.True(t, ok)
	assert.Equal(t, "valor_empresa", col)

	_, ok = idx.Column(domain.FieldCity)
	assert.False(t, ok)
}
