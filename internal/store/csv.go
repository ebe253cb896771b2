package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ak800i/power-outage-notifier/internal/domain"
)

var csvHeader = []string{"Friendly Name", "Chat ID", "Municipality Name", "Street Name"}

// CSVRepo stores the roster as a flat CSV file with a fixed header.
// Every save is a full overwrite.
type CSVRepo struct{ path string }

// OpenCSV prepares a CSV-backed repository at the given path. The file
// itself is created lazily, on first load.
func OpenCSV(path string) (*CSVRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &CSVRepo{path: path}, nil
}

// LoadAll reads every stored record. A missing file is created with just
// the header and yields an empty roster.
func (r *CSVRepo) LoadAll(_ context.Context) ([]domain.User, error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		if err := r.writeAll(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	users := make([]domain.User, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		if len(row) != 4 {
			return nil, fmt.Errorf("%s: row %d has %d fields, want 4", r.path, i+2, len(row))
		}
		chatID, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad chat id %q", r.path, i+2, row[1])
		}
		users = append(users, domain.User{
			FriendlyName: row[0],
			ChatID:       chatID,
			Municipality: row[2],
			Street:       row[3],
		})
	}
	return users, nil
}

// SaveAll overwrites the file with the given roster.
func (r *CSVRepo) SaveAll(_ context.Context, users []domain.User) error {
	return r.writeAll(users)
}

func (r *CSVRepo) writeAll(users []domain.User) error {
	// Write to a temp file and rename so a crash mid-write cannot lose
	// the previous roster.
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return err
	}
	for _, u := range users {
		row := []string{u.FriendlyName, strconv.FormatInt(u.ChatID, 10), u.Municipality, u.Street}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *CSVRepo) Close() error { return nil }
