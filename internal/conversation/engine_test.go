package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/directory"
	"github.com/ak800i/power-outage-notifier/internal/domain"
)

type memRepo struct {
	users []domain.User
	saves int
}

func (m *memRepo) LoadAll(context.Context) ([]domain.User, error) { return m.users, nil }
func (m *memRepo) SaveAll(_ context.Context, users []domain.User) error {
	m.users = append([]domain.User(nil), users...)
	m.saves++
	return nil
}
func (m *memRepo) Close() error { return nil }

type recordingSender struct{ sent []string }

func (r *recordingSender) Send(_ context.Context, _ int64, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

type recordingAudit struct{ lines []string }

func (r *recordingAudit) Log(msg string) { r.lines = append(r.lines, msg) }

func newTestEngine(t *testing.T, repo *memRepo) (*Engine, *recordingSender, *recordingAudit, *directory.Directory) {
	t.Helper()
	dir := directory.New(repo)
	require.NoError(t, dir.Load(context.Background()))
	sender := &recordingSender{}
	audit := &recordingAudit{}
	return NewEngine(dir, sender, audit, zap.NewNop()), sender, audit, dir
}

func TestRegistrationHappyPath(t *testing.T) {
	repo := &memRepo{}
	e, sender, audit, dir := newTestEngine(t, repo)
	ctx := context.Background()

	e.HandleMessage(ctx, 42, "/register")
	e.HandleMessage(ctx, 42, "Ана")
	e.HandleMessage(ctx, 42, "Palilula")
	e.HandleMessage(ctx, 42, "Save Mrkalja")

	require.Equal(t, []domain.User{{
		FriendlyName: "Ана",
		ChatID:       42,
		Municipality: "Палилула",
		Street:       "Саве Мркаља",
	}}, dir.Snapshot())
	require.Equal(t, 1, repo.saves)

	require.Len(t, sender.sent, 4)
	require.Equal(t, promptFriendlyName, sender.sent[0])
	require.Equal(t, promptMunicipality, sender.sent[1])
	require.Equal(t, promptStreet, sender.sent[2])
	require.Contains(t, sender.sent[3], "successfully registered as Ана")

	require.Len(t, audit.lines, 1)
	require.Contains(t, audit.lines[0], "User registered:Ана")
}

func TestRegistrationNameCollisionKeepsState(t *testing.T) {
	repo := &memRepo{users: []domain.User{
		{FriendlyName: "Ана", ChatID: 7, Municipality: "м", Street: "с"},
	}}
	e, sender, _, dir := newTestEngine(t, repo)
	ctx := context.Background()

	e.HandleMessage(ctx, 42, "/register")
	e.HandleMessage(ctx, 42, "Ана")
	require.Equal(t, replyNameTaken, sender.sent[len(sender.sent)-1])
	require.Len(t, dir.Snapshot(), 1, "roster unchanged")

	// Session is still awaiting a name: a fresh answer proceeds.
	e.HandleMessage(ctx, 42, "Бора")
	require.Equal(t, promptMunicipality, sender.sent[len(sender.sent)-1])
}

func TestCommandCancelsSession(t *testing.T) {
	repo := &memRepo{}
	e, sender, _, dir := newTestEngine(t, repo)
	ctx := context.Background()

	e.HandleMessage(ctx, 42, "/register")
	e.HandleMessage(ctx, 42, "Ана")
	// Any command, recognized or not, cancels the in-flight session.
	e.HandleMessage(ctx, 42, "/whatever")
	e.HandleMessage(ctx, 42, "Palilula")

	require.Empty(t, dir.Snapshot())
	// No prompt after the cancelled command: the trailing text was ignored.
	require.Equal(t, promptMunicipality, sender.sent[len(sender.sent)-1])
}

func TestFreeTextWithoutSessionIgnored(t *testing.T) {
	repo := &memRepo{}
	e, sender, _, _ := newTestEngine(t, repo)

	e.HandleMessage(context.Background(), 42, "hello there")
	require.Empty(t, sender.sent)
}

func TestUnregister(t *testing.T) {
	repo := &memRepo{users: []domain.User{
		{FriendlyName: "Ана", ChatID: 42, Municipality: "м", Street: "с"},
		{FriendlyName: "АнаПосао", ChatID: 42, Municipality: "м2", Street: "с2"},
	}}
	e, sender, audit, dir := newTestEngine(t, repo)
	ctx := context.Background()

	e.HandleMessage(ctx, 42, "/unregister")
	require.Equal(t, replyUnregistered, sender.sent[len(sender.sent)-1])
	require.Empty(t, dir.Snapshot())
	require.Equal(t, 1, repo.saves)
	require.Len(t, audit.lines, 2)

	e.HandleMessage(ctx, 42, "/unregister")
	require.Equal(t, replyNotRegistered, sender.sent[len(sender.sent)-1])
	require.Equal(t, 1, repo.saves, "no persist when nothing removed")
}

func TestAboutMe(t *testing.T) {
	repo := &memRepo{users: []domain.User{
		{FriendlyName: "Ана", ChatID: 42, Municipality: "Палилула", Street: "САВЕ МРКАЉА"},
	}}
	e, sender, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	e.HandleMessage(ctx, 99, "/aboutme")
	require.Equal(t, replyNoInfo, sender.sent[len(sender.sent)-1])

	e.HandleMessage(ctx, 42, "/aboutme")
	last := sender.sent[len(sender.sent)-1]
	require.True(t, strings.HasPrefix(last, userInfoHeader))
	require.Contains(t, last, "Friendly Name: Ана")
	require.Contains(t, last, "Municipality Name: Палилула")
	require.Contains(t, last, "Street Name: САВЕ МРКАЉА")
}
