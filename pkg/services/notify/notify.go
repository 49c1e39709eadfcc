package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

// Notifier receives user-facing messages produced while serving a request.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

type notifierKey struct{}

func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// From returns the notifier bound to ctx, or a LogNotifier.
func From(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok && n != nil {
		return n
	}
	return LogNotifier{}
}

func Info(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(ctx, domain.Notice{Level: domain.NoticeInfo, Message: fmt.Sprintf(format, args...)})
}

func Warn(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(ctx, domain.Notice{Level: domain.NoticeWarning, Message: fmt.Sprintf(format, args...)})
}

func Error(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: fmt.Sprintf(format, args...)})
}

// LogNotifier writes notices to the context logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n domain.Notice) {
	logger := zerolog.Ctx(ctx)
	var event *zerolog.Event
	switch n.Level {
	case domain.NoticeError:
		event = logger.Error()
	case domain.NoticeWarning:
		event = logger.Warn()
	default:
		event = logger.Info()
	}
	event.Str("notice", string(n.Level)).Msg(n.Message)
}

// WriterNotifier prints notices as "[level] message" lines.
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Notify(_ context.Context, n domain.Notice) {
	fmt.Fprintf(w.W, "[%s] %s\n", n.Level, n.Message)
}

// Collector buffers notices so they can be returned with a result. It
// also forwards each notice to Next when set.
type Collector struct {
	Next Notifier

	mu      sync.Mutex
	notices []domain.Notice
}

func (c *Collector) Notify(ctx context.Context, n domain.Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.Notify(ctx, n)
	}
}

// Notices returns a copy of the collected notices in arrival order.
func (c *Collector) Notices() []domain.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}
