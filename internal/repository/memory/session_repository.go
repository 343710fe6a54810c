package memory

import (
	"sort"
	"sync"

	"edubridge-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-memory session store. Sessions live for the
// process lifetime; the engine owns deletion, so entries never expire.
type SessionRepository struct {
	cache *cache.Cache

	mu        sync.Mutex
	seq       int64
	activeId  uuid.UUID
	hasActive bool
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *entity.ChatSession) {
	r.mu.Lock()
	if session.Seq == 0 {
		r.seq++
		session.Seq = r.seq
	}
	r.mu.Unlock()
	r.cache.Set(session.Id.String(), session, cache.NoExpiration)
}

func (r *SessionRepository) Get(id uuid.UUID) (*entity.ChatSession, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.ChatSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(id uuid.UUID) {
	r.cache.Delete(id.String())

	r.mu.Lock()
	if r.hasActive && r.activeId == id {
		r.hasActive = false
	}
	r.mu.Unlock()
}

// All returns every session ordered by insertion (Seq ascending).
func (r *SessionRepository) All() []*entity.ChatSession {
	items := r.cache.Items()
	sessions := make([]*entity.ChatSession, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*entity.ChatSession))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Seq < sessions[j].Seq
	})
	return sessions
}

func (r *SessionRepository) Len() int {
	return r.cache.ItemCount()
}

// SetActive points the store at a session. The caller guarantees the id
// refers to a live session.
func (r *SessionRepository) SetActive(id uuid.UUID) {
	r.mu.Lock()
	r.activeId = id
	r.hasActive = true
	r.mu.Unlock()
}

func (r *SessionRepository) Active() (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeId, r.hasActive
}
