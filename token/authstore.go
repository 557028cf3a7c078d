package token

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// AuthorizationStore tracks, per (authorizer, nonce), whether that nonce has
// been consumed. An absent entry reads as unused; MarkUsed is terminal and is
// never reverted.
type AuthorizationStore interface {
	State(authorizer common.Address, nonce [32]byte) bool
	MarkUsed(authorizer common.Address, nonce [32]byte)
}

type authKey struct {
	authorizer common.Address
	nonce      [32]byte
}

// MemoryAuthorizationStore is a mutex-guarded in-memory authorization ledger.
type MemoryAuthorizationStore struct {
	mu   sync.RWMutex
	used map[authKey]struct{}
}

// NewMemoryAuthorizationStore creates an empty authorization ledger.
func NewMemoryAuthorizationStore() *MemoryAuthorizationStore {
	return &MemoryAuthorizationStore{
		used: make(map[authKey]struct{}),
	}
}

// State reports whether (authorizer, nonce) has been consumed.
func (s *MemoryAuthorizationStore) State(authorizer common.Address, nonce [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, used := s.used[authKey{authorizer, nonce}]
	return used
}

// MarkUsed consumes (authorizer, nonce).
func (s *MemoryAuthorizationStore) MarkUsed(authorizer common.Address, nonce [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used[authKey{authorizer, nonce}] = struct{}{}
}
