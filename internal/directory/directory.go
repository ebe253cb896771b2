// Package directory owns the in-memory user roster and is the single
// writer of its persisted form.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ak800i/power-outage-notifier/internal/domain"
	"github.com/ak800i/power-outage-notifier/internal/store"
)

var (
	ErrNameTaken     = errors.New("friendly name already in use")
	ErrNotRegistered = errors.New("not registered")
)

// Directory is a mutex-guarded roster backed by a store.Repo. The inbound
// loop mutates it while the outage loop reads snapshots concurrently.
type Directory struct {
	mu    sync.RWMutex
	users []domain.User
	repo  store.Repo
}

func New(repo store.Repo) *Directory {
	return &Directory{repo: repo}
}

// Load replaces the in-memory roster with the persisted one.
func (d *Directory) Load(ctx context.Context) error {
	users, err := d.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the roster safe to iterate without holding
// the lock across network calls.
func (d *Directory) Snapshot() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, len(d.users))
	copy(out, d.users)
	return out
}

// ByChat returns every record registered under the given chat.
func (d *Directory) ByChat(chatID int64) []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []domain.User
	for _, u := range d.users {
		if u.ChatID == chatID {
			out = append(out, u)
		}
	}
	return out
}

// NameTaken reports whether a committed record already uses the name.
func (d *Directory) NameTaken(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.FriendlyName == name {
			return true
		}
	}
	return false
}

// Register appends a completed record and persists the full roster.
func (d *Directory) Register(ctx context.Context, u domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.users {
		if existing.FriendlyName == u.FriendlyName {
			return ErrNameTaken
		}
	}
	d.users = append(d.users, u)
	if err := d.repo.SaveAll(ctx, d.users); err != nil {
		// Roll back the append so memory and disk stay in step.
		d.users = d.users[:len(d.users)-1]
		return fmt.Errorf("persist roster: %w", err)
	}
	return nil
}

// Unregister removes every record for the chat and persists the roster
// exactly once. It returns the removed records.
func (d *Directory) Unregister(ctx context.Context, chatID int64) ([]domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var kept, removed []domain.User
	for _, u := range d.users {
		if u.ChatID == chatID {
			removed = append(removed, u)
		} else {
			kept = append(kept, u)
		}
	}
	if len(removed) == 0 {
		return nil, ErrNotRegistered
	}
	if err := d.repo.SaveAll(ctx, kept); err != nil {
		return nil, fmt.Errorf("persist roster: %w", err)
	}
	d.users = kept
	return removed, nil
}
