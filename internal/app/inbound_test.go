package app

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/conversation"
	"github.com/ak800i/power-outage-notifier/internal/directory"
	"github.com/ak800i/power-outage-notifier/internal/domain"
	"github.com/ak800i/power-outage-notifier/internal/telegram"
)

type memRepo struct{ users []domain.User }

func (m *memRepo) LoadAll(context.Context) ([]domain.User, error) { return m.users, nil }
func (m *memRepo) SaveAll(_ context.Context, users []domain.User) error {
	m.users = append([]domain.User(nil), users...)
	return nil
}
func (m *memRepo) Close() error { return nil }

// pollAPI scripts GetUpdates responses and records the offsets it saw.
type pollAPI struct {
	batches [][]tgbotapi.Update
	errs    []error
	call    int
	offsets []int
	sent    []string
}

func (p *pollAPI) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	p.offsets = append(p.offsets, cfg.Offset)
	i := p.call
	p.call++
	var batch []tgbotapi.Update
	var err error
	if i < len(p.batches) {
		batch = p.batches[i]
	}
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return batch, err
}

func (p *pollAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		p.sent = append(p.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func msgUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message:  &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func newLoopApp(t *testing.T, api *pollAPI, cancel context.CancelFunc, stopAfter int) *App {
	t.Helper()
	log := zap.NewNop()
	dir := directory.New(&memRepo{})
	require.NoError(t, dir.Load(context.Background()))
	audit := telegram.NewAudit(api, log, 0)
	sender := telegram.NewSender(api, log, audit)

	pauses := 0
	return &App{
		log:    log,
		api:    api,
		audit:  audit,
		engine: conversation.NewEngine(dir, sender, audit, log),
		sleep: func(context.Context, time.Duration) error {
			pauses++
			if pauses >= stopAfter {
				cancel()
			}
			return nil
		},
	}
}

func TestInboundLoopAdvancesCursor(t *testing.T) {
	api := &pollAPI{batches: [][]tgbotapi.Update{
		{msgUpdate(10, 5, "/aboutme"), msgUpdate(11, 5, "ignored free text")},
		{msgUpdate(12, 5, "/aboutme")},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	a := newLoopApp(t, api, cancel, 2)

	a.inboundLoop(ctx)

	require.GreaterOrEqual(t, len(api.offsets), 2)
	assert.Equal(t, 0, api.offsets[0])
	assert.Equal(t, 12, api.offsets[1], "cursor is highest processed id + 1")
	// Both /aboutme commands produced a reply.
	assert.Len(t, api.sent, 2)
}

func TestInboundLoopSurvivesPollErrors(t *testing.T) {
	api := &pollAPI{
		errs:    []error{&tgbotapi.Error{Code: 500, Message: "boom"}, nil},
		batches: [][]tgbotapi.Update{nil, {msgUpdate(3, 1, "/aboutme")}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := newLoopApp(t, api, cancel, 3)

	a.inboundLoop(ctx)

	// The failed poll left the cursor alone and the loop kept going.
	require.GreaterOrEqual(t, len(api.offsets), 2)
	assert.Equal(t, 0, api.offsets[0])
	assert.Equal(t, 0, api.offsets[1])
	assert.Len(t, api.sent, 1)
}
