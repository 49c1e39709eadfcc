package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

func TestFrom_DefaultsToLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	Warn(ctx, "no data for %s", "01/01/2025")

	assert.IsType(t, LogNotifier{}, From(ctx))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "no data for 01/01/2025")
}

func TestCollector_KeepsOrderAndForwards(t *testing.T) {
	next := &Collector{}
	c := &Collector{Next: next}
	ctx := WithNotifier(context.Background(), c)

	Info(ctx, "loaded %d rows", 3)
	Error(ctx, "query failed")

	want := []domain.Notice{
		{Level: domain.NoticeInfo, Message: "loaded 3 rows"},
		{Level: domain.NoticeError, Message: "query failed"},
	}
	assert.Equal(t, want, c.Notices())
	assert.Equal(t, want, next.Notices())
}

func TestCollector_NoticesIsACopy(t *testing.T) {
	c := &Collector{}
	c.Notify(context.Background(), domain.Notice{Level: domain.NoticeInfo, Message: "a"})

	got := c.Notices()
	got[0].Message = "changed"

	assert.Equal(t, "a", c.Notices()[0].Message)
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithNotifier(context.Background(), WriterNotifier{W: &buf})

	Warn(ctx, "No data found for the selected period")
	Info(ctx, "Loaded %d records", 3)

	assert.Equal(t, "[warning] No data found for the selected period\n[info] Loaded 3 records\n", buf.String())
}
