// Package demoauth is an in-memory credential store for the cmd/smtpd
// and cmd/pop3d demo binaries. It stands in for the host-supplied
// authentication database spec.md places out of scope for the core
// (§1): passwords are bcrypt-hashed at rest and checked in constant
// time via bcrypt's own comparison, the way a real AuthProvider would
// check against a persisted hash rather than a plaintext column.
package demoauth

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Store is a concurrency-safe username/password-hash table.
type Store struct {
	mu     sync.RWMutex
	hashes map[string][]byte
}

// NewStore builds a Store seeded with the given plaintext credentials,
// hashing each password with bcrypt before it is retained.
func NewStore(seed map[string]string) (*Store, error) {
	s := &Store{hashes: make(map[string][]byte, len(seed))}
	for user, pass := range seed {
		if err := s.Add(user, pass); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add hashes password and stores it under user, overwriting any
// existing credential.
func (s *Store) Add(user, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[strings.ToLower(user)] = hash
	return nil
}

// Check reports whether password matches the hash stored for user.
// An unknown user always fails, spending the same bcrypt comparison
// work as a known one so the two cases aren't distinguishable by
// timing.
func (s *Store) Check(user, password string) bool {
	s.mu.RLock()
	hash, ok := s.hashes[strings.ToLower(user)]
	s.mu.RUnlock()
	if !ok {
		hash = unknownUserHash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	return ok && err == nil
}

// unknownUserHash is compared against for unknown users so Check's
// bcrypt cost is paid identically on both branches.
var unknownUserHash = mustHash("not-a-real-password")

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
