package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
)

var ErrViewNotFound = errors.New("view not found")

// Store is the client's local persistence: the session token and saved
// filter views.
type Store struct {
	DB *sql.DB
}

// Setting is a stored value together with its change counter. Version 0
// means the key was never written.
type Setting struct {
	Value   string
	Version int64
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetSetting(ctx context.Context, key string) (Setting, error) {
	var setting Setting
	err := s.DB.QueryRowContext(ctx, "SELECT value, version FROM settings WHERE key = ?", key).Scan(&setting.Value, &setting.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Setting{}, nil
	}
	if err != nil {
		return Setting{}, fmt.Errorf("get setting %s: %w", key, err)
	}
	return setting, nil
}

// PutSetting writes value and bumps the version so other processes notice.
func (s *Store) PutSetting(ctx context.Context, key, value string) (Setting, error) {
	var setting Setting
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO settings (key, value, version, updated_at) VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = settings.version + 1, updated_at = CURRENT_TIMESTAMP
RETURNING value, version`, key, value).Scan(&setting.Value, &setting.Version)
	if err != nil {
		return Setting{}, fmt.Errorf("put setting %s: %w", key, err)
	}
	return setting, nil
}

// ClearSetting empties the value but keeps the row so the version keeps
// increasing.
func (s *Store) ClearSetting(ctx context.Context, key string) (Setting, error) {
	return s.PutSetting(ctx, key, "")
}

func (s *Store) SaveView(ctx context.Context, view model.View) (model.View, error) {
	name := strings.TrimSpace(view.Name)
	if name == "" {
		return model.View{}, fmt.Errorf("view name is required")
	}

	payload, err := json.Marshal(view.Filter)
	if err != nil {
		return model.View{}, err
	}

	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO views (name, filter_json) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET filter_json = excluded.filter_json, updated_at = CURRENT_TIMESTAMP`, name, string(payload)); err != nil {
		return model.View{}, fmt.Errorf("save view %s: %w", name, err)
	}
	return s.GetViewByName(ctx, name)
}

func (s *Store) ListViews(ctx context.Context) ([]model.View, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, name, filter_json, created_at, updated_at FROM views ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func (s *Store) GetViewByName(ctx context.Context, name string) (model.View, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, name, filter_json, created_at, updated_at FROM views WHERE name = ?", strings.TrimSpace(name))
	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.View{}, ErrViewNotFound
	}
	return view, err
}

func (s *Store) DeleteView(ctx context.Context, viewID int64) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM views WHERE id = ?", viewID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrViewNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanView(row rowScanner) (model.View, error) {
	var (
		view       model.View
		filterJSON string
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&view.ID, &view.Name, &filterJSON, &createdAt, &updatedAt); err != nil {
		return model.View{}, err
	}
	filter := model.DefaultFilter()
	if err := json.Unmarshal([]byte(filterJSON), &filter); err != nil {
		return model.View{}, fmt.Errorf("decode view %s: %w", view.Name, err)
	}
	view.Filter = filter
	view.CreatedAt = createdAt
	view.UpdatedAt = updatedAt
	return view, nil
}
