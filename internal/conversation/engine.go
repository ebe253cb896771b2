// Package conversation implements the registration state machine that
// turns inbound chat messages into roster mutations.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/directory"
	"github.com/ak800i/power-outage-notifier/internal/domain"
)

type state int

const (
	awaitingFriendlyName state = iota
	awaitingMunicipality
	awaitingStreet
)

// session is the ephemeral per-chat registration progress. At most one
// exists per chat.
type session struct {
	state state
	user  domain.User
}

// Sender delivers immediate conversational replies.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Auditor records operator-facing events.
type Auditor interface {
	Log(msg string)
}

// Engine routes inbound text per chat: commands cancel any in-flight
// session and are handled directly; other text advances the session if
// one exists and is ignored otherwise.
type Engine struct {
	dir    *directory.Directory
	sender Sender
	audit  Auditor
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewEngine(dir *directory.Directory, sender Sender, audit Auditor, log *zap.Logger) *Engine {
	return &Engine{
		dir:      dir,
		sender:   sender,
		audit:    audit,
		log:      log,
		sessions: make(map[int64]*session),
	}
}

// HandleMessage processes one inbound message from the chat.
func (e *Engine) HandleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		// A command always cancels an in-flight session first.
		e.removeSession(chatID)
		e.handleCommand(ctx, chatID, text)
		return
	}

	e.mu.Lock()
	sess, ok := e.sessions[chatID]
	e.mu.Unlock()
	if !ok {
		return // free text outside a session is ignored
	}
	e.handleAnswer(ctx, chatID, sess, text)
}

func (e *Engine) handleCommand(ctx context.Context, chatID int64, text string) {
	switch strings.Fields(text)[0] {
	case "/register":
		e.mu.Lock()
		e.sessions[chatID] = &session{
			state: awaitingFriendlyName,
			user:  domain.User{ChatID: chatID},
		}
		e.mu.Unlock()
		e.reply(ctx, chatID, promptFriendlyName)

	case "/unregister":
		e.unregister(ctx, chatID)

	case "/aboutme":
		e.aboutMe(ctx, chatID)

	default:
		// Unrecognized commands are ignored (the session is already gone).
	}
}

func (e *Engine) handleAnswer(ctx context.Context, chatID int64, sess *session, text string) {
	switch sess.state {
	case awaitingFriendlyName:
		if e.dir.NameTaken(text) {
			// The session intentionally stays in this state; the user can
			// answer again or restart with /register.
			e.reply(ctx, chatID, replyNameTaken)
			return
		}
		sess.user.FriendlyName = text
		sess.state = awaitingMunicipality
		e.reply(ctx, chatID, promptMunicipality)

	case awaitingMunicipality:
		sess.user.Municipality = domain.ToCyrillic(text)
		sess.state = awaitingStreet
		e.reply(ctx, chatID, promptStreet)

	case awaitingStreet:
		sess.user.Street = domain.ToCyrillic(text)
		e.removeSession(chatID)
		e.commit(ctx, sess.user)
	}
}

// commit appends the completed record and persists the roster.
func (e *Engine) commit(ctx context.Context, u domain.User) {
	if err := e.dir.Register(ctx, u); err != nil {
		if errors.Is(err, directory.ErrNameTaken) {
			e.reply(ctx, u.ChatID, replyNameTaken)
			return
		}
		e.log.Error("register failed", zap.Int64("chat_id", u.ChatID), zap.Error(err))
		e.reply(ctx, u.ChatID, replyRegisterFailed)
		return
	}
	e.reply(ctx, u.ChatID, fmt.Sprintf(registeredFmt, u.FriendlyName))
	e.audit.Log(fmt.Sprintf(auditRegisteredFmt, u.FriendlyName, u.Municipality, u.Street))
}

func (e *Engine) unregister(ctx context.Context, chatID int64) {
	removed, err := e.dir.Unregister(ctx, chatID)
	if errors.Is(err, directory.ErrNotRegistered) {
		e.reply(ctx, chatID, replyNotRegistered)
		return
	}
	if err != nil {
		e.log.Error("unregister failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	e.reply(ctx, chatID, replyUnregistered)
	for _, u := range removed {
		e.audit.Log(fmt.Sprintf(auditUnregisteredFmt, u.FriendlyName, u.Municipality, u.Street))
	}
}

func (e *Engine) aboutMe(ctx context.Context, chatID int64) {
	users := e.dir.ByChat(chatID)
	if len(users) == 0 {
		e.reply(ctx, chatID, replyNoInfo)
		return
	}
	var b strings.Builder
	b.WriteString(userInfoHeader)
	for _, u := range users {
		fmt.Fprintf(&b, userInfoFmt, u.FriendlyName, u.Municipality, u.Street)
	}
	e.reply(ctx, chatID, b.String())
}

func (e *Engine) removeSession(chatID int64) {
	e.mu.Lock()
	delete(e.sessions, chatID)
	e.mu.Unlock()
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string) {
	if err := e.sender.Send(ctx, chatID, text); err != nil {
		e.log.Warn("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
