package nav

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// KeyGen hands out node keys. Implementations must never repeat a key.
type KeyGen interface {
	Next() Key
}

// UUIDKeys generates random UUID keys.
type UUIDKeys struct{}

func (UUIDKeys) Next() Key {
	return Key(uuid.NewString())
}

// SequentialKeys generates prefix-1, prefix-2, ... and is safe for
// concurrent use. Useful wherever output must be reproducible.
type SequentialKeys struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *SequentialKeys) Next() Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "n"
	}
	return Key(fmt.Sprintf("%s-%d", prefix, s.next))
}
