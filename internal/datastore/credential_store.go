package datastore

import (
	"context"
	"strings"
	"sync"

	"github.com/aleister1102/motosearch/internal/common"
)

// FirecrawlAPIKeySlot is the credential slot holding the fetch service key
const FirecrawlAPIKeySlot = "firecrawl_api_key"

// CredentialStore persists the fetch service API key.
// GetAPIKey returns an error wrapping common.ErrNotFound when the slot is empty.
type CredentialStore interface {
	GetAPIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, key string) error
}

func validateAPIKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", common.NewValidationError("api_key", "", "API key must not be empty")
	}
	return trimmed, nil
}

// MemoryCredentialStore keeps the key in process memory
type MemoryCredentialStore struct {
	mutex sync.RWMutex
	key   string
}

// NewMemoryCredentialStore creates a store, optionally pre-filled with key
func NewMemoryCredentialStore(key string) *MemoryCredentialStore {
	return &MemoryCredentialStore{key: strings.TrimSpace(key)}
}

// GetAPIKey implements CredentialStore
func (m *MemoryCredentialStore) GetAPIKey(ctx context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.key == "" {
		return "", common.WrapError(common.ErrNotFound, "credential "+FirecrawlAPIKeySlot)
	}
	return m.key, nil
}

// SaveAPIKey implements CredentialStore
func (m *MemoryCredentialStore) SaveAPIKey(ctx context.Context, key string) error {
	trimmed, err := validateAPIKey(key)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.key = trimmed
	return nil
}
