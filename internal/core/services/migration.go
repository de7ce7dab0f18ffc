package services

import (
	"fmt"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Migrate rewrites legacy configuration in place. Plain-string identifiers
// become {text, color} tables with the default marker colour, and a missing
// viewer colour is backfilled with the default. Running it again on a
// migrated store changes nothing. It reports whether anything was written.
func Migrate(store driven.ConfigStore) (bool, error) {
	if store == nil {
		return false, domain.ErrStoreUnavailable
	}

	record, err := store.Get(map[string]any{
		domain.KeyViewerColor: nil,
		domain.KeyWatchlist:   nil,
	})
	if err != nil {
		return false, fmt.Errorf("reading config for migration: %w", err)
	}

	updates := make(map[string]any)

	if c, _ := record[domain.KeyViewerColor].(string); c == "" {
		updates[domain.KeyViewerColor] = domain.DefaultViewerColor
	}

	if list, ok := legacyWatchlist(record[domain.KeyWatchlist]); ok {
		updates[domain.KeyWatchlist] = list
	}

	if len(updates) == 0 {
		return false, nil
	}

	logger.Info("Migrating %d legacy config key(s) in %s", len(updates), store.Path())
	if err := store.Set(updates); err != nil {
		return false, fmt.Errorf("writing migrated config: %w", err)
	}
	return true, nil
}

// legacyWatchlist converts a watchlist holding plain strings. It reports
// false when the list is already in canonical form.
func legacyWatchlist(raw any) ([]any, bool) {
	var items []any
	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		return nil, false
	}

	changed := false
	out := make([]any, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, map[string]any{"text": s, "color": domain.DefaultMarkerColor})
			changed = true
			continue
		}
		out = append(out, item)
	}
	return out, changed
}
