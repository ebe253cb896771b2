package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/telegram"
)

const (
	longPollTimeout = 30 // seconds, reduces request rate and avoids 429
	pollPause       = 2 * time.Second
)

// inboundLoop long-polls for updates with an increasing offset cursor and
// routes messages to the conversation engine. It classifies transport
// errors, backs off, and never terminates on its own.
func (a *App) inboundLoop(ctx context.Context) {
	offset := 0

	for ctx.Err() == nil {
		updates, err := a.api.GetUpdates(tgbotapi.UpdateConfig{Offset: offset, Timeout: longPollTimeout})
		if err != nil {
			offset = a.handlePollError(ctx, err, offset)
		} else {
			for _, upd := range updates {
				if upd.Message != nil && upd.Message.Text != "" {
					a.engine.HandleMessage(ctx, upd.Message.Chat.ID, upd.Message.Text)
				}
				offset = upd.UpdateID + 1
			}
		}

		if err := a.sleep(ctx, pollPause); err != nil {
			return
		}
	}
}

// handlePollError applies the per-class backoff and returns the cursor
// unchanged (a failed poll consumes no updates).
func (a *App) handlePollError(ctx context.Context, err error, offset int) int {
	c := telegram.Classify(err)
	switch c.Kind {
	case telegram.FailRateLimited:
		a.audit.Log(fmt.Sprintf("Inbound loop rate limited. Retrying after %s.", c.RetryAfter))
		_ = a.sleep(ctx, c.RetryAfter)
	case telegram.FailUnauthorized:
		// Invalid token. Log loudly and back off, but don't crash.
		a.audit.Log("Inbound loop unauthorized (401). Check bot token.")
		_ = a.sleep(ctx, 30*time.Second)
	case telegram.FailServer:
		_ = a.sleep(ctx, 5*time.Second)
	case telegram.FailTimeout:
		// Transient network trouble; resume quickly.
		_ = a.sleep(ctx, 2*time.Second)
	default:
		a.log.Warn("inbound poll failed", zap.String("kind", c.Kind.String()), zap.Error(c.Err))
		_ = a.sleep(ctx, 5*time.Second)
	}
	return offset
}
