package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aouyang1/autoslides/store"
)

// Store applies the settings lifecycle on top of a document's properties.
type Store struct {
	props    store.Properties
	defaults Settings
}

// NewStore binds props to the given defaults. The initialized marker is always
// part of the defaults written.
func NewStore(props store.Properties, defaults Settings) *Store {
	d := defaults.Clone()
	if d == nil {
		d = Defaults()
	}
	d[KeyInitialized] = True
	return &Store{props: props, defaults: d}
}

// Defaults returns a copy of the defaults this store writes.
func (s *Store) Defaults() Settings {
	return s.defaults.Clone()
}

// InitializeIfAbsent writes the defaults, replacing everything else, and marks the
// document unpublished. It does nothing once the initialized marker is set.
func (s *Store) InitializeIfAbsent(ctx context.Context) (bool, error) {
	marker, _, err := s.props.GetProperty(ctx, KeyInitialized)
	if err != nil {
		return false, fmt.Errorf("read initialized marker: %w", err)
	}
	if marker == True {
		return false, nil
	}

	if err := s.props.SetProperties(ctx, s.defaults, true); err != nil {
		return false, fmt.Errorf("write default settings: %w", err)
	}
	if err := s.props.SetProperty(ctx, KeyPublish, False); err != nil {
		return false, fmt.Errorf("reset publish flag: %w", err)
	}

	slog.Info("initialized default settings")
	return true, nil
}

// ResetToDefaults merges the defaults into the current settings. Keys outside the
// defaults, such as publish and shortUrl, are kept.
func (s *Store) ResetToDefaults(ctx context.Context) (Settings, error) {
	if err := s.props.SetProperties(ctx, s.defaults, false); err != nil {
		return nil, fmt.Errorf("reset settings to defaults: %w", err)
	}
	return s.Defaults(), nil
}

// ApplyForm overwrites the nine form keys. Unchecked boxes are removed so they
// read as false. The whole mapping is written back in one call.
func (s *Store) ApplyForm(ctx context.Context, f Form) error {
	current, err := s.props.GetProperties(ctx)
	if err != nil {
		return fmt.Errorf("read settings before applying form: %w", err)
	}

	next := Settings(current).Clone()
	if next == nil {
		next = Settings{}
	}
	set, cleared := f.Values()
	for k, v := range set {
		next[k] = v
	}
	for _, key := range cleared {
		delete(next, key)
	}

	if err := s.props.SetProperties(ctx, next, true); err != nil {
		return fmt.Errorf("apply settings form: %w", err)
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context) (Settings, error) {
	props, err := s.props.GetProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return Settings(props), nil
}

func (s *Store) SetPublished(ctx context.Context, published bool) error {
	value := False
	if published {
		value = True
	}
	if err := s.props.SetProperty(ctx, KeyPublish, value); err != nil {
		return fmt.Errorf("set publish flag: %w", err)
	}
	return nil
}

// ShortURL returns the cached short URL, if any.
func (s *Store) ShortURL(ctx context.Context) (string, bool, error) {
	v, ok, err := s.props.GetProperty(ctx, KeyShortURL)
	if err != nil {
		return "", false, fmt.Errorf("get short url: %w", err)
	}
	return v, ok, nil
}

func (s *Store) SetShortURL(ctx context.Context, shortURL string) error {
	if err := s.props.SetProperty(ctx, KeyShortURL, shortURL); err != nil {
		return fmt.Errorf("set short url: %w", err)
	}
	return nil
}
