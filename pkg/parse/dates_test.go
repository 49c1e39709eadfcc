package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AcceptedFormats(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		hasTime bool
	}{
		{"01/02/2025", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"01/02/2025 13:45", time.Date(2025, 2, 1, 13, 45, 0, 0, time.UTC), true},
		{"2025-02-01", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"2025-02-01 13:45:10", time.Date(2025, 2, 1, 13, 45, 10, 0, time.UTC), true},
		{"  2025-02-01  ", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, hasTime, err := Date(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, tt.hasTime, hasTime)
		})
	}
}

func TestDate_RejectsOtherFormats(t *testing.T) {
	for _, input := range []string{"", "2025/02/01", "01-02-2025", "1 Feb 2025", "2025-02-01T10:00:00Z", "32/01/2025"} {
		t.Run(input, func(t *testing.T) {
			_, _, err := Date(input)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestRange_WidensDateOnlyEnd(t *testing.T) {
	// Given
	start, end := "01/01/2025", "28/01/2025"

	// When
	r, err := Range(start, end)

	// Then
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2025, 1, 28, 23, 59, 59, 0, time.UTC), r.End)
}

func TestRange_KeepsExplicitEndTime(t *testing.T) {
	r, err := Range("2025-01-01", "2025-01-28 08:30:00")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 28, 8, 30, 0, 0, time.UTC), r.End)
}

func TestRange_StartAfterEnd_ReturnsError(t *testing.T) {
	_, err := Range("10/01/2025", "09/01/2025")

	assert.True(t, errors.Is(err, domain.ErrInvalidRange))
}

func TestRange_SameDay_IsValid(t *testing.T) {
	r, err := Range("10/01/2025", "10/01/2025")

	require.NoError(t, err)
	assert.Equal(t, 1, r.Days())
}

func TestRange_InvalidBoundary_ReturnsError(t *testing.T) {
	_, err := Range("yesterday", "10/01/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Range("10/01/2025", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTimestamp(t *testing.T) {
	ref := time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)
	local := ref.In(time.FixedZone("BRT", -3*3600))

	tests := []struct {
		name  string
		input any
		want  time.Time
		ok    bool
	}{
		{"time value", ref, ref, true},
		{"time value in another zone", local, ref, true},
		{"pointer", &ref, ref, true},
		{"day first with minutes", "05/01/2025 10:30", ref, true},
		{"day first with seconds", "05/01/2025 10:30:00", ref, true},
		{"iso datetime", "2025-01-05 10:30:00", ref, true},
		{"iso with fraction", "2025-01-05 10:30:00.000", ref, true},
		{"rfc3339", "2025-01-05T10:30:00Z", ref, true},
		{"bytes", []byte("2025-01-05 10:30:00"), ref, true},
		{"date only", "05/01/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"nil", nil, time.Time{}, false},
		{"zero time", time.Time{}, time.Time{}, false},
		{"garbage", "amanhã", time.Time{}, false},
		{"number", 45662.5, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Timestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}
