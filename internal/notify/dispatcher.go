// Package notify deduplicates and delivers outage notifications.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OutageKind identifies a notification stream for deduplication.
type OutageKind int

const (
	PowerOutage OutageKind = iota
	PlannedWaterOutage
	UnplannedWaterOutage
)

func (k OutageKind) String() string {
	switch k {
	case PowerOutage:
		return "power"
	case PlannedWaterOutage:
		return "planned_water"
	case UnplannedWaterOutage:
		return "unplanned_water"
	default:
		return "unknown"
	}
}

// Sender is the retrying delivery primitive the dispatcher sends through.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type dispatchKey struct {
	kind   OutageKind
	chatID int64
}

// Dispatcher enforces the delivery contract: nothing before local noon,
// and at most one send per (kind, chat) per calendar day. The suppression
// map is in-memory only; a restart re-arms the day's notifications once.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	loc    *time.Location
	now    func() time.Time

	mu       sync.Mutex
	lastSent map[dispatchKey]time.Time
}

func NewDispatcher(sender Sender, log *zap.Logger, loc *time.Location) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		log:      log,
		loc:      loc,
		now:      time.Now,
		lastSent: make(map[dispatchKey]time.Time),
	}
}

// Notify sends the message unless suppressed. Delivery failures are
// logged and swallowed so one user's failure never aborts a matching
// cycle.
func (d *Dispatcher) Notify(ctx context.Context, kind OutageKind, chatID int64, text string) {
	now := d.now().In(d.loc)

	// Outages posted in the morning wait for the midday review.
	if now.Hour() < 12 {
		return
	}

	key := dispatchKey{kind: kind, chatID: chatID}
	if !d.arm(key, now) {
		return
	}

	// The dedup entry stands even when delivery is abandoned after
	// retries: a silent drop is preferred over re-spamming working chats
	// on the next cycle.
	if err := d.sender.Send(ctx, chatID, text); err != nil {
		d.log.Error("notification abandoned",
			zap.String("kind", kind.String()),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// arm records a send for the key unless one already happened today.
func (d *Dispatcher) arm(key dispatchKey, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lastSent[key]; ok && sameDay(last.In(d.loc), now) {
		return false
	}
	d.lastSent[key] = now
	return true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
