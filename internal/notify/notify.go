// Package notify carries user-visible notices (the toast channel) from the
// session, the access guard and the handlers to whatever renders them.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is one dismissible message. Notices sharing a non-empty ID are
// collapsed into one.
type Notice struct {
	ID      string `json:"id,omitempty"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n Notice)

func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

func Info(ctx context.Context, n Notifier, msg string)    { send(ctx, n, KindInfo, msg) }
func Success(ctx context.Context, n Notifier, msg string) { send(ctx, n, KindSuccess, msg) }
func Warn(ctx context.Context, n Notifier, msg string)    { send(ctx, n, KindWarning, msg) }
func Error(ctx context.Context, n Notifier, msg string)   { send(ctx, n, KindError, msg) }

func send(ctx context.Context, n Notifier, kind Kind, msg string) {
	Emit(ctx, n, Notice{Kind: kind, Message: msg})
}

// Emit delivers a fully formed notice; a nil notifier drops it.
func Emit(ctx context.Context, n Notifier, notice Notice) {
	if n == nil {
		return
	}
	n.Notify(ctx, notice)
}

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = appendUnique(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns the recorded notices and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Logged forwards to next and logs every notice.
func Logged(log zerolog.Logger, next Notifier) Notifier {
	return Func(func(ctx context.Context, n Notice) {
		event := log.Debug()
		if n.Kind == KindError {
			event = log.Info()
		}
		event.Str("kind", string(n.Kind)).Str("notice_id", n.ID).Msg(n.Message)
		if next != nil {
			next.Notify(ctx, n)
		}
	})
}

func appendUnique(list []Notice, n Notice) []Notice {
	if n.ID != "" {
		for _, existing := range list {
			if existing.ID == n.ID {
				return list
			}
		}
	}
	return append(list, n)
}
