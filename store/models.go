package store

import (
	"context"
	"errors"
	"maps"
)

var ErrEmptyDocumentID = errors.New("document id is required")

// Properties is a string key/value store scoped to a single document.
type Properties interface {
	// GetProperty returns the value of key and whether it is set.
	GetProperty(ctx context.Context, key string) (string, bool, error)
	GetProperties(ctx context.Context) (map[string]string, error)
	SetProperty(ctx context.Context, key, value string) error
	// SetProperties writes all props. When deleteAllOthers is true every key not in
	// props is removed, otherwise existing keys are kept.
	SetProperties(ctx context.Context, props map[string]string, deleteAllOthers bool) error
	DeleteProperty(ctx context.Context, key string) error
}

// Backend hands out per-document property stores.
type Backend interface {
	Properties(documentID string) Properties
	Close() error
}

// mergeProperties applies props to current the same way every backend does.
func mergeProperties(current, props map[string]string, deleteAllOthers bool) map[string]string {
	if deleteAllOthers || current == nil {
		current = make(map[string]string, len(props))
	}
	maps.Copy(current, props)
	return current
}
