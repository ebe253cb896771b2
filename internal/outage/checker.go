package outage

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/domain"
	"github.com/ak800i/power-outage-notifier/internal/notify"
)

const (
	powerOutageFmt          = "Power outage will occur in %d days in %s, %s."
	plannedWaterOutageFmt   = "Water outage might occurr in %s, %s.\n%s"
	unplannedWaterOutageFmt = "Water outage might be happening in %s, %s.\n%s"
)

// Fetcher retrieves the three listing shapes.
type Fetcher interface {
	TableRows(ctx context.Context, url string) ([][]string, error)
	Blocks(ctx context.Context, url string) ([]string, error)
	ListItems(ctx context.Context, url string) ([]string, error)
}

// Roster supplies the registered users to match against.
type Roster interface {
	Snapshot() []domain.User
}

// Dispatcher delivers deduplicated notifications.
type Dispatcher interface {
	Notify(ctx context.Context, kind notify.OutageKind, chatID int64, text string)
}

// Sources holds the listing URLs per outage type. The power list is
// ordered by day: index 0 is today, index 1 tomorrow, and so on.
type Sources struct {
	Power          []string
	PlannedWater   []string
	UnplannedWater []string
}

// Checker runs the three outage checks over the roster.
type Checker struct {
	fetch   Fetcher
	roster  Roster
	disp    Dispatcher
	log     *zap.Logger
	sources Sources
}

func NewChecker(fetch Fetcher, roster Roster, disp Dispatcher, log *zap.Logger, sources Sources) *Checker {
	return &Checker{fetch: fetch, roster: roster, disp: disp, log: log, sources: sources}
}

// RunAll executes the three checks concurrently. A failure in one check
// neither stops the others nor escapes the cycle.
func (c *Checker) RunAll(ctx context.Context) {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"power", c.CheckPower},
		{"planned_water", c.CheckPlannedWater},
		{"unplanned_water", c.CheckUnplannedWater},
	}

	var wg sync.WaitGroup
	for _, check := range checks {
		check := check
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("outage check panicked",
						zap.String("check", check.name),
						zap.Any("panic", r))
				}
			}()
			if err := check.fn(ctx); err != nil {
				c.log.Error("outage check failed",
					zap.String("check", check.name),
					zap.Error(err))
			}
		}()
	}
	wg.Wait()
}

// CheckPower walks the per-day power listings. The listing's position in
// the ordered source list is the number of days until the outage.
func (c *Checker) CheckPower(ctx context.Context) error {
	users := c.roster.Snapshot()
	for daysUntil, url := range c.sources.Power {
		rows, err := c.fetch.TableRows(ctx, url)
		if err != nil {
			return fmt.Errorf("power listing %s: %w", url, err)
		}
		for _, row := range rows {
			if len(row) < 3 {
				continue
			}
			municipality, streets := row[0], row[2]
			for _, u := range users {
				fragment, ok := MatchTabular(municipality, streets, u)
				if !ok {
					continue
				}
				text := fmt.Sprintf(powerOutageFmt, daysUntil, u.Municipality, fragment)
				c.disp.Notify(ctx, notify.PowerOutage, u.ChatID, text)
			}
		}
	}
	return nil
}

// CheckPlannedWater walks the planned-works prose blocks.
func (c *Checker) CheckPlannedWater(ctx context.Context) error {
	users := c.roster.Snapshot()
	for _, url := range c.sources.PlannedWater {
		blocks, err := c.fetch.Blocks(ctx, url)
		if err != nil {
			return fmt.Errorf("planned water listing %s: %w", url, err)
		}
		for _, block := range blocks {
			for _, u := range users {
				if !MatchDeclension(block, u) {
					continue
				}
				text := fmt.Sprintf(plannedWaterOutageFmt, u.Municipality, u.Street, block)
				c.disp.Notify(ctx, notify.PlannedWaterOutage, u.ChatID, text)
			}
		}
	}
	return nil
}

// CheckUnplannedWater walks the failure-list items.
func (c *Checker) CheckUnplannedWater(ctx context.Context) error {
	users := c.roster.Snapshot()
	for _, url := range c.sources.UnplannedWater {
		items, err := c.fetch.ListItems(ctx, url)
		if err != nil {
			return fmt.Errorf("unplanned water listing %s: %w", url, err)
		}
		for _, item := range items {
			for _, u := range users {
				if !MatchStrict(item, u) {
					continue
				}
				text := fmt.Sprintf(unplannedWaterOutageFmt, u.Municipality, u.Street, item)
				c.disp.Notify(ctx, notify.UnplannedWaterOutage, u.ChatID, text)
			}
		}
	}
	return nil
}
