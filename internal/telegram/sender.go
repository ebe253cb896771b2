package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxSendAttempts = 3
	initialBackoff  = 2 * time.Second
	maxBackoff      = 30 * time.Second

	// Telegram allows roughly 30 messages per second overall; stay under.
	sendRate  = 25
	sendBurst = 5
)

// Sender delivers messages through the classified-retry policy:
//   - rate-limited: wait exactly the hinted duration and retry, without
//     consuming an attempt;
//   - forbidden: abandon immediately;
//   - everything else: exponential backoff, abandon after three attempts.
//
// Abandonment is reported to the operator chat and returned as a SendError;
// callers that must survive one user's failure just log and move on.
type Sender struct {
	api     API
	log     *zap.Logger
	audit   *Audit
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewSender(api API, log *zap.Logger, audit *Audit) *Sender {
	return &Sender{
		api:     api,
		log:     log,
		audit:   audit,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Send delivers one text message to the chat, retrying per the policy.
func (s *Sender) Send(ctx context.Context, chatID int64, text string) error {
	attempt := 0
	delay := initialBackoff

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
		if err == nil {
			return nil
		}

		c := Classify(err)
		switch c.Kind {
		case FailRateLimited:
			// The server dictates the backoff; hinted waits do not count
			// against the attempt budget.
			s.log.Warn("rate limited, honoring retry-after",
				zap.Int64("chat_id", chatID),
				zap.Duration("retry_after", c.RetryAfter))
			if err := s.sleep(ctx, c.RetryAfter); err != nil {
				return c
			}

		case FailForbidden:
			s.audit.Log(fmt.Sprintf("Cannot send message to %d: forbidden (user blocked bot or no permission).", chatID))
			return c

		default:
			attempt++
			if attempt >= maxSendAttempts {
				s.audit.Log(fmt.Sprintf("Failed to send message to %d after %d attempts (%s): %v", chatID, attempt, c.Kind, c.Err))
				return c
			}
			s.log.Warn("send failed, backing off",
				zap.Int64("chat_id", chatID),
				zap.String("kind", c.Kind.String()),
				zap.Int("attempt", attempt),
				zap.Error(c.Err))
			if err := s.sleep(ctx, delay); err != nil {
				return c
			}
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
		}
	}
}
