package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Audit writes operator-facing log lines: always to the process log, and
// best-effort to the configured operator chat. A zero chat id disables the
// chat side entirely.
type Audit struct {
	api    API
	log    *zap.Logger
	chatID int64
}

func NewAudit(api API, log *zap.Logger, chatID int64) *Audit {
	return &Audit{api: api, log: log, chatID: chatID}
}

// Log records one audit line. The operator-chat send is a single attempt;
// a failure there is logged and dropped, never retried.
func (a *Audit) Log(msg string) {
	a.log.Info(msg)
	if a.chatID == 0 {
		return
	}
	if _, err := a.api.Send(tgbotapi.NewMessage(a.chatID, msg)); err != nil {
		a.log.Warn("failed to send audit message to operator chat", zap.Error(err))
	}
}
