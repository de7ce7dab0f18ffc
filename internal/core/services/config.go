package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/highlight/internal/colour"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
)

// LoadConfiguration reads the identifier keys from store and decodes them.
func LoadConfiguration(store driven.ConfigStore) (domain.Configuration, error) {
	if store == nil {
		return domain.Configuration{}, domain.ErrStoreUnavailable
	}
	record, err := store.Get(domain.DefaultRecord())
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return DecodeConfiguration(record)
}

// DecodeConfiguration converts a store record into a Configuration.
//
// Colours are normalised, falling back to the defaults. Identifier texts
// are trimmed, blanks dropped and case-insensitive duplicates removed
// (first wins). Legacy plain-string identifiers are accepted. When the
// record has an unexpected shape the usable part is still returned
// together with an error wrapping domain.ErrMalformedConfig.
func DecodeConfiguration(record map[string]any) (domain.Configuration, error) {
	var cfg domain.Configuration
	var problems []string

	switch v := record[domain.KeyViewer].(type) {
	case nil:
	case string:
		cfg.Viewer.Text = strings.TrimSpace(v)
	default:
		problems = append(problems, fmt.Sprintf("%s has type %T", domain.KeyViewer, v))
	}

	viewerColor, _ := record[domain.KeyViewerColor].(string)
	cfg.Viewer.Color = colour.Normalise(viewerColor, domain.DefaultViewerColor)

	items, err := watchlistItems(record[domain.KeyWatchlist])
	if err != nil {
		problems = append(problems, err.Error())
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		key := strings.ToLower(text)
		if text == "" || seen[key] {
			continue
		}
		seen[key] = true
		cfg.Watchlist = append(cfg.Watchlist, domain.Identifier{
			Text:  text,
			Color: colour.Normalise(item.Color, domain.DefaultMarkerColor),
		})
	}

	if len(problems) > 0 {
		return cfg, fmt.Errorf("%w: %s", domain.ErrMalformedConfig, strings.Join(problems, "; "))
	}
	return cfg, nil
}

// EncodeWatchlist converts identifiers to the stored array-of-tables shape.
func EncodeWatchlist(list []domain.Identifier) []any {
	out := make([]any, 0, len(list))
	for _, id := range list {
		out = append(out, map[string]any{"text": id.Text, "color": id.Color})
	}
	return out
}

func watchlistItems(raw any) ([]domain.Identifier, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []domain.Identifier:
		return v, nil
	case []string:
		out := make([]domain.Identifier, 0, len(v))
		for _, s := range v {
			out = append(out, domain.Identifier{Text: s})
		}
		return out, nil
	case []map[string]any:
		out := make([]domain.Identifier, 0, len(v))
		for _, m := range v {
			out = append(out, identifierFromMap(m))
		}
		return out, nil
	case []any:
		out := make([]domain.Identifier, 0, len(v))
		var bad int
		for _, item := range v {
			switch it := item.(type) {
			case string:
				out = append(out, domain.Identifier{Text: it})
			case map[string]any:
				out = append(out, identifierFromMap(it))
			case domain.Identifier:
				out = append(out, it)
			default:
				bad++
			}
		}
		if bad > 0 {
			return out, fmt.Errorf("%s has %d unreadable entries", domain.KeyWatchlist, bad)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s has type %T", domain.KeyWatchlist, raw)
	}
}

func identifierFromMap(m map[string]any) domain.Identifier {
	text, _ := m["text"].(string)
	color, _ := m["color"].(string)
	return domain.Identifier{Text: text, Color: color}
}
