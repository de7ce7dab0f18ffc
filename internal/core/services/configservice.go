package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/highlight/internal/colour"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/core/ports/driving"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// ConfigService manages the viewer and the watchlist in a ConfigStore.
type ConfigService struct {
	store driven.ConfigStore
}

// NewConfigService creates a new config service.
func NewConfigService(store driven.ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// Get returns the current configuration. A malformed record is logged and
// its usable part returned.
func (s *ConfigService) Get() (domain.Configuration, error) {
	cfg, err := LoadConfiguration(s.store)
	if errors.Is(err, domain.ErrMalformedConfig) {
		logger.Warn("%v", err)
		return cfg, nil
	}
	return cfg, err
}

// SetViewer sets the viewer's name, and its colour when color is not empty.
// An empty text clears the viewer.
func (s *ConfigService) SetViewer(text, color string) error {
	values := map[string]any{domain.KeyViewer: strings.TrimSpace(text)}
	if color != "" {
		c, err := parseColour(color)
		if err != nil {
			return err
		}
		values[domain.KeyViewerColor] = c
	}
	return s.store.Set(values)
}

// AddIdentifier appends a watched identifier. An empty color uses the
// default marker colour.
func (s *ConfigService) AddIdentifier(text, color string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: identifier text is empty", domain.ErrInvalidInput)
	}

	c := domain.DefaultMarkerColor
	if color != "" {
		var err error
		if c, err = parseColour(color); err != nil {
			return err
		}
	}

	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if existing, ok := cfg.Find(text); ok {
		return fmt.Errorf("%w: identifier %q", domain.ErrAlreadyExists, existing.Text)
	}

	cfg.Watchlist = append(cfg.Watchlist, domain.Identifier{Text: text, Color: c})
	return s.store.Set(map[string]any{domain.KeyWatchlist: EncodeWatchlist(cfg.Watchlist)})
}

// RemoveIdentifier deletes the watched identifier matching text.
func (s *ConfigService) RemoveIdentifier(text string) error {
	cfg, err := s.Get()
	if err != nil {
		return err
	}

	idx := indexOf(cfg.Watchlist, text)
	if idx < 0 {
		return fmt.Errorf("%w: identifier %q", domain.ErrNotFound, text)
	}

	list := append(cfg.Watchlist[:idx:idx], cfg.Watchlist[idx+1:]...)
	return s.store.Set(map[string]any{domain.KeyWatchlist: EncodeWatchlist(list)})
}

// SetIdentifierColor changes the colour of the watched identifier matching text.
func (s *ConfigService) SetIdentifierColor(text, color string) error {
	c, err := parseColour(color)
	if err != nil {
		return err
	}

	cfg, err := s.Get()
	if err != nil {
		return err
	}

	idx := indexOf(cfg.Watchlist, text)
	if idx < 0 {
		return fmt.Errorf("%w: identifier %q", domain.ErrNotFound, text)
	}

	cfg.Watchlist[idx].Color = c
	return s.store.Set(map[string]any{domain.KeyWatchlist: EncodeWatchlist(cfg.Watchlist)})
}

// Migrate converts legacy stored formats.
func (s *ConfigService) Migrate() (bool, error) {
	return Migrate(s.store)
}

func parseColour(color string) (string, error) {
	if !colour.IsValid(color) {
		return "", fmt.Errorf("%w: colour %q", domain.ErrInvalidInput, color)
	}
	return colour.Normalise(color, ""), nil
}

func indexOf(list []domain.Identifier, text string) int {
	text = strings.TrimSpace(text)
	for i, id := range list {
		if strings.EqualFold(id.Text, text) {
			return i
		}
	}
	return -1
}
