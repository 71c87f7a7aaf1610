package store

import (
	"context"
	"maps"
	"sync"
)

// Memory keeps properties in process. Nothing survives a restart.
type Memory struct {
	mu   sync.Mutex
	docs map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]string)}
}

func (m *Memory) Properties(documentID string) Properties {
	return &memoryProperties{m: m, documentID: documentID}
}

func (m *Memory) Close() error {
	return nil
}

type memoryProperties struct {
	m          *Memory
	documentID string
}

func (p *memoryProperties) GetProperty(_ context.Context, key string) (string, bool, error) {
	if p.documentID == "" {
		return "", false, ErrEmptyDocumentID
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	value, ok := p.m.docs[p.documentID][key]
	return value, ok, nil
}

func (p *memoryProperties) GetProperties(_ context.Context) (map[string]string, error) {
	if p.documentID == "" {
		return nil, ErrEmptyDocumentID
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	props := make(map[string]string, len(p.m.docs[p.documentID]))
	maps.Copy(props, p.m.docs[p.documentID])
	return props, nil
}

func (p *memoryProperties) SetProperty(ctx context.Context, key, value string) error {
	return p.SetProperties(ctx, map[string]string{key: value}, false)
}

func (p *memoryProperties) SetProperties(_ context.Context, props map[string]string, deleteAllOthers bool) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	p.m.docs[p.documentID] = mergeProperties(p.m.docs[p.documentID], props, deleteAllOthers)
	return nil
}

func (p *memoryProperties) DeleteProperty(_ context.Context, key string) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	delete(p.m.docs[p.documentID], key)
	return nil
}
