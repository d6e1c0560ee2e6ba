// Package memory provides in-memory implementations of store interfaces.
// The IdlStore implementation uses a map keyed by program ID with
// sync.RWMutex for thread-safe access. It is suitable for examples, tests,
// and clients that resolve a handful of programs per process.
package memory

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	anchorgo "github.com/anchorgo/sdk-go"
)

// IdlStore is an in-memory implementation of anchorgo.IdlStore.
type IdlStore struct {
	idls map[solana.PublicKey][]byte
	mu   sync.RWMutex
}

// NewIdlStore creates a new in-memory IDL store.
func NewIdlStore() *IdlStore {
	return &IdlStore{
		idls: make(map[solana.PublicKey][]byte),
	}
}

// Save persists the raw IDL JSON for a program, replacing any previous
// version. The bytes are copied so callers may reuse their buffer.
func (s *IdlStore) Save(ctx context.Context, programID solana.PublicKey, idlJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(idlJSON))
	copy(cp, idlJSON)
	s.idls[programID] = cp
	return nil
}

// Get retrieves the raw IDL JSON for a program. Returns (nil, nil) when no
// IDL is stored.
func (s *IdlStore) Get(ctx context.Context, programID solana.PublicKey) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.idls[programID]
	if !exists {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the stored IDL for a program.
func (s *IdlStore) Delete(ctx context.Context, programID solana.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.idls, programID)
	return nil
}

// Verify that IdlStore implements anchorgo.IdlStore
var _ anchorgo.IdlStore = (*IdlStore)(nil)
