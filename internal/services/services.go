package services

import (
	"context"
	"time"

	"coopsite/internal/log"
	"coopsite/internal/notify"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// publish hands ev to p. A broker outage must not fail the write that
// produced the event, so errors are only logged.
func publish(ctx context.Context, p notify.Publisher, ev notify.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Error(nil, "notify_failed", err, map[string]any{"event": ev.Type})
	}
}
