package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// Memory keeps encoded drafts in process. It is the default when no external
// store is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) SaveDraft(ctx context.Context, input *SaveDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	b, err := json.Marshal(input.State)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	m.put(DraftKey(input.Code), b)
	return nil
}

func (m *Memory) GetDraft(ctx context.Context, input *GetDraftInput) (*engine.State, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}
	b, ok := m.get(DraftKey(input.Code))
	if !ok {
		return nil, ErrNotFound
	}
	return decodeDraft(b)
}

func (m *Memory) SaveRoster(ctx context.Context, input *SaveRosterInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	b, err := json.Marshal(input.Roster)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	m.put(RosterKey(input.Code), b)
	return nil
}

func (m *Memory) GetRoster(ctx context.Context, input *GetRosterInput) ([]engine.Participant, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}
	b, ok := m.get(RosterKey(input.Code))
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRoster(b)
}

func (m *Memory) ListDrafts(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var codes []string
	for k := range m.data {
		if code, ok := strings.CutPrefix(k, draftKeyPrefix); ok {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes, nil
}

func (m *Memory) DeleteDraft(ctx context.Context, input *DeleteDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[DraftKey(input.Code)]; !ok {
		return ErrNotFound
	}
	delete(m.data, DraftKey(input.Code))
	delete(m.data, RosterKey(input.Code))
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) put(key string, b []byte) {
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
}

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	return b, ok
}
