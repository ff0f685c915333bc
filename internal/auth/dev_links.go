package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DevLinkStore keeps the most recent magic link per email so local development
// can sign in without an email provider. Reads consume the entry.
type DevLinkStore struct {
	mu    sync.Mutex
	links *expirable.LRU[string, string]
}

func NewDevLinkStore(size int, ttl time.Duration) *DevLinkStore {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DevLinkStore{links: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *DevLinkStore) SetDevMagicLink(email, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links.Add(normalizeEmail(email), url)
}

// GetDevMagicLink returns and forgets the link stored for email.
func (s *DevLinkStore) GetDevMagicLink(email string) (string, bool) {
	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.links.Get(key)
	if ok {
		s.links.Remove(key)
	}
	return url, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
