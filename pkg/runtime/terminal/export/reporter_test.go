package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

func TestReporter_Handle(t *testing.T) {
	// Given
	var buf bytes.Buffer
	report := &domain.Report{
		Title: "Field Service Report",
		Period: domain.TimePeriod{
			Start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
			Duration: 31,
		},
		Services:        3,
		Currency:        "BRL",
		TechnicianValue: 250,
		CompanyValue:    1234.5,
		Sections: []domain.ReportSection{{
			Title:   "Cities",
			Summary: map[string]any{"Cities": 1},
			Details: []domain.ReportDetail{{Name: "CAMPINAS", Value: 3, Unit: "services", Note: "2 completed"}},
		}},
	}

	// When
	err := NewReporter(&buf).Handle(report)

	// Then
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Field Service Report (31 days)")
	assert.Contains(t, out, "Period: 01/01/2025 to 31/01/2025")
	assert.Contains(t, out, "Technician value: BRL 250.00")
	assert.Contains(t, out, "Company value: BRL 1234.50")
	assert.Contains(t, out, "=== Cities ===")
	assert.Regexp(t, `\| CAMPINAS\s+\| 3\s+\| services\s+\| 2 completed\s+\|`, out)
}

func TestReporter_Records(t *testing.T) {
	var buf bytes.Buffer
	lat, lon := -22.9, -47.06
	records := []domain.ServiceRecord{
		{
			Timestamp:    time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
			TechnicianID: "JOAO",
			City:         "CAMPINAS",
			Status:       "EXECUTADO",
			Latitude:     &lat,
			Longitude:    &lon,
			CompanyValue: 300,
		},
		{
			Timestamp:    time.Date(2025, 1, 3, 9, 30, 0, 0, time.UTC),
			TechnicianID: "A technician with a very long name",
		},
	}

	err := NewReporter(&buf).Records(records)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "02/01/2025 08:00")
	assert.Contains(t, out, "-22.90000, -47.06000")
	assert.Contains(t, out, "300.00")
	assert.Contains(t, out, "A technician with a…")
	assert.Contains(t, out, "2 records")
}

func TestReporter_NilWriterDefaultsToStdout(t *testing.T) {
	assert.NotNil(t, NewReporter(nil).writer)
}
