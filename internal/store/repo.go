package store

import (
	"context"
	"fmt"

	"github.com/ak800i/power-outage-notifier/internal/domain"
)

// Repo persists the full user roster. Both operations work on the whole
// set: LoadAll returns every record in insertion order, SaveAll replaces
// the stored set wholesale.
type Repo interface {
	LoadAll(ctx context.Context) ([]domain.User, error)
	SaveAll(ctx context.Context, users []domain.User) error
	Close() error
}

// Open selects a Repo implementation by driver name.
func Open(ctx context.Context, driver, path string) (Repo, error) {
	switch driver {
	case "csv":
		return OpenCSV(path)
	case "sqlite":
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
