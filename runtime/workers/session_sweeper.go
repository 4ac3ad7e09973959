package workers

import (
	"context"
	"log/slog"
	"time"

	"lanchat/auth"
)

// SessionSweeper periodically purges expired sessions so abandoned logins
// do not accumulate for the lifetime of the process.
type SessionSweeper struct {
	log      *slog.Logger
	sessions *auth.SessionStore
	interval time.Duration
}

func NewSessionSweeper(log *slog.Logger, sessions *auth.SessionStore, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{log: log, sessions: sessions, interval: interval}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if dropped := w.sessions.Sweep(); dropped > 0 {
				w.log.Debug("Expired sessions removed", "count", dropped)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
