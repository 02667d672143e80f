package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/kv"
)

// LocalStore keeps the mirror collections and UI preferences in a kv.Store,
// one JSON value per key.
type LocalStore struct {
	kv kv.Store
}

func NewLocalStore(s kv.Store) *LocalStore {
	return &LocalStore{kv: s}
}

// Load decodes collection c into a slice. found is false when the key has
// never been written.
func Load[T any](ctx context.Context, l *LocalStore, c models.Collection) (items []T, found bool, err error) {
	raw, err := l.kv.Get(ctx, string(c))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("local: load %s: %w", c, err)
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, true, fmt.Errorf("local: decode %s: %w", c, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// Save encodes items as collection c. A nil slice is stored as [].
func Save[T any](ctx context.Context, l *LocalStore, c models.Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("local: encode %s: %w", c, err)
	}
	if err := l.kv.Set(ctx, string(c), string(data)); err != nil {
		return fmt.Errorf("local: save %s: %w", c, err)
	}
	return nil
}

// Preferences reads the UI flags. Missing keys read as false.
func (l *LocalStore) Preferences(ctx context.Context) (models.Preferences, error) {
	dark, err := l.flag(ctx, models.PrefDarkTheme)
	if err != nil {
		return models.Preferences{}, err
	}
	auth, err := l.flag(ctx, models.PrefIsAuthenticated)
	if err != nil {
		return models.Preferences{}, err
	}
	return models.Preferences{DarkTheme: dark, IsAuthenticated: auth}, nil
}

// SavePreferences writes both UI flags.
func (l *LocalStore) SavePreferences(ctx context.Context, p models.Preferences) error {
	if err := l.kv.Set(ctx, models.PrefDarkTheme, strconv.FormatBool(p.DarkTheme)); err != nil {
		return fmt.Errorf("local: save %s: %w", models.PrefDarkTheme, err)
	}
	if err := l.kv.Set(ctx, models.PrefIsAuthenticated, strconv.FormatBool(p.IsAuthenticated)); err != nil {
		return fmt.Errorf("local: save %s: %w", models.PrefIsAuthenticated, err)
	}
	return nil
}

func (l *LocalStore) flag(ctx context.Context, key string) (bool, error) {
	raw, err := l.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local: load %s: %w", key, err)
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return b, nil
}
