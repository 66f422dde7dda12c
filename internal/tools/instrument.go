package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgallion1/docedit/internal/editor"
)

// Middleware wraps the handler of the named tool.
type Middleware func(tool string, next Handler) Handler

// Chain composes middleware so that Chain(A, B)(name, h) runs A, then B,
// then h.
func Chain(mw ...Middleware) Middleware {
	return func(tool string, final Handler) Handler {
		h := final
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](tool, h)
		}
		return h
	}
}

// Status values of an Event.
const (
	StatusStart   = "start"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Event describes one phase of a tool call.
type Event struct {
	Tool      string          `json:"toolName"`
	Args      json.RawMessage `json:"args"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Result    any             `json:"result,omitempty"`
	Err       error           `json:"-"`
	Duration  time.Duration   `json:"duration,omitempty"`
}

// Observer receives tool call events.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Instrument emits a start event before each call and a success or error
// event after it. Results and errors pass through unchanged.
func Instrument(observers ...Observer) Middleware {
	return func(tool string, next Handler) Handler {
		return func(ctx context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
			start := time.Now()
			emit(observers, Event{Tool: tool, Args: args, Status: StatusStart, Timestamp: start})

			res, err := next(ctx, ed, args)

			ev := Event{Tool: tool, Args: args, Timestamp: time.Now(), Duration: time.Since(start)}
			if err != nil {
				ev.Status = StatusError
				ev.Err = err
			} else {
				ev.Status = StatusSuccess
				ev.Result = res
			}
			emit(observers, ev)
			return res, err
		}
	}
}

func emit(observers []Observer, e Event) {
	for _, o := range observers {
		o.Observe(e)
	}
}

// LogObserver writes tool events to a structured logger.
func LogObserver(log *slog.Logger) Observer {
	return ObserverFunc(func(e Event) {
		switch e.Status {
		case StatusStart:
			log.Debug("tool start", "tool", e.Tool, "args", string(e.Args))
		case StatusSuccess:
			log.Info("tool success", "tool", e.Tool, "duration_ms", e.Duration.Milliseconds())
		case StatusError:
			log.Warn("tool error", "tool", e.Tool, "duration_ms", e.Duration.Milliseconds(),
				"code", ErrorCode(e.Err), "error", e.Err)
		}
	})
}
