package analysis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relieflab/assessdash/internal/service"
)

// maxStored bounds the in-memory history. The oldest result is
// evicted once the window is full.
const maxStored = 20

// cacheTTL is how long results live in redis when a cache is wired.
const cacheTTL = 24 * time.Hour

// OpenRedis connects to redis at addr. An empty addr means no cache
// is configured and callers get nil, which Store treats as
// memory-only operation.
func OpenRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// Store keeps the most recent analysis results in memory, optionally
// mirrored into redis so results survive a restart.
type Store struct {
	mu      sync.RWMutex
	order   []string
	results map[string]*Result

	cache *redis.Client
}

// NewStore creates a store. cache may be nil.
func NewStore(cache *redis.Client) *Store {
	return &Store{
		results: make(map[string]*Result),
		cache:   cache,
	}
}

// Put records a result under its analysis ID, evicting the oldest
// entry when the window is full. Results without an ID are ignored.
func (s *Store) Put(ctx context.Context, r *Result) {
	if r == nil || r.AnalysisID == "" {
		return
	}

	s.mu.Lock()
	if _, exists := s.results[r.AnalysisID]; !exists {
		s.order = append(s.order, r.AnalysisID)
		if len(s.order) > maxStored {
			evicted := s.order[0]
			s.order = s.order[1:]
			delete(s.results, evicted)
		}
	}
	s.results[r.AnalysisID] = r
	s.mu.Unlock()

	service.DefaultBus.Publish(service.Event{Resource: "analysis", Action: "completed", ID: r.AnalysisID})

	if s.cache != nil {
		payload, err := json.Marshal(r)
		if err != nil {
			return
		}
		if err := s.cache.Set(ctx, cacheKey(r.AnalysisID), payload, cacheTTL).Err(); err != nil {
			log.Printf("analysis cache write failed: %v", err)
		}
	}
}

// Get returns a stored result by ID, falling back to the redis cache
// for results that aged out of the memory window.
func (s *Store) Get(ctx context.Context, id string) (*Result, bool) {
	s.mu.RLock()
	r, ok := s.results[id]
	s.mu.RUnlock()
	if ok {
		return r, true
	}

	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var cached Result
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

// Latest returns the most recently stored result.
func (s *Store) Latest() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, false
	}
	r := s.results[s.order[len(s.order)-1]]
	return r, true
}

// Len reports how many results are held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func cacheKey(id string) string {
	return "analysis:" + id
}
