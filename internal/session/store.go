// Package session owns the live sessions of one game variant, keyed by
// invite code.
package session

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"gameroom/internal/game"
)

// Invite codes are six base-10 digits.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// maxCodeAttempts bounds allocation retries. With 900k codes this only
// trips when the registry is nearly full.
const maxCodeAttempts = 1000

// Store is the session registry for a single variant. Codes are unique
// within one store; independent stores draw from the same keyspace.
type Store struct {
	mu       sync.RWMutex
	variant  game.Variant
	sessions map[int]*game.Session
	byPlayer map[int64]int
}

// NewStore creates an empty registry for the given variant.
func NewStore(v game.Variant) *Store {
	return &Store{
		variant:  v,
		sessions: make(map[int]*game.Session),
		byPlayer: make(map[int64]int),
	}
}

// Variant returns the store's rule-set.
func (st *Store) Variant() game.Variant { return st.variant }

func (st *Store) allocateCodeLocked() (int, error) {
	for range maxCodeAttempts {
		code := codeMin + rand.IntN(codeSpan)
		if _, taken := st.sessions[code]; !taken {
			return code, nil
		}
	}
	return 0, game.Conflict(game.CodeCodeSpaceExhausted, "no free invite codes")
}

// Create allocates a fresh invite code and opens a waiting session with
// the host as sole participant.
func (st *Store) Create(host int64) (*game.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	code, err := st.allocateCodeLocked()
	if err != nil {
		return nil, err
	}
	s := game.NewSession(code, st.variant, host)
	st.sessions[code] = s
	st.byPlayer[host] = code
	return s, nil
}

// Join appends a participant to the session behind code. A participant
// already in a different live session of this store is rejected. Once the
// variant's minimum is met the session auto-starts.
func (st *Store) Join(user int64, code int) (*game.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[code]
	if !ok {
		return nil, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code)
	}
	if prev, member := st.byPlayer[user]; member && prev != code {
		if ps, live := st.sessions[prev]; live && ps.Snapshot().Status != game.StatusFinished {
			return nil, game.Conflict(game.CodeAlreadyInSession, "user %d is already in session %d", user, prev)
		}
	}

	s.Lock()
	defer s.Unlock()
	if err := s.AddPlayerLocked(user); err != nil {
		return nil, err
	}
	st.byPlayer[user] = code
	if s.Status == game.StatusWaiting && len(s.Players) >= st.variant.Info().MinPlayers {
		if err := s.StartLocked(); err != nil {
			// unreachable: the session was waiting and has enough players
			log.Printf("session %d: auto-start: %v", code, err)
		}
	}
	return s, nil
}

// Start explicitly transitions a waiting session to playing.
func (st *Store) Start(user int64, code int) (*game.Session, error) {
	s, ok := st.Get(code)
	if !ok {
		return nil, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code)
	}
	s.Lock()
	defer s.Unlock()
	if s.SlotOfLocked(user) == 0 {
		return nil, game.Forbidden(game.CodeNotParticipant, "user %d is not in session %d", user, code)
	}
	if err := s.StartLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Finish forces a session to finished, resolving the winner through the
// variant if one is not already set.
func (st *Store) Finish(user int64, code int) (*game.Session, error) {
	s, ok := st.Get(code)
	if !ok {
		return nil, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code)
	}
	s.Lock()
	defer s.Unlock()
	if s.SlotOfLocked(user) == 0 {
		return nil, game.Forbidden(game.CodeNotParticipant, "user %d is not in session %d", user, code)
	}
	s.FinishLocked()
	return s, nil
}

// Get returns a session by invite code.
func (st *Store) Get(code int) (*game.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[code]
	return s, ok
}

// ByParticipant returns the session a participant most recently joined.
func (st *Store) ByParticipant(user int64) (*game.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	code, ok := st.byPlayer[user]
	if !ok {
		return nil, false
	}
	s, ok := st.sessions[code]
	return s, ok
}

// List returns snapshots of all live sessions.
func (st *Store) List() []game.Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]game.Snapshot, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// CleanupLoop drops finished sessions past maxAge, freeing their codes.
func (st *Store) CleanupLoop(interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		st.cleanup(maxAge)
	}
}

func (st *Store) cleanup(maxAge time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	for code, s := range st.sessions {
		snap := s.Snapshot()
		if snap.Status != game.StatusFinished || now.Sub(s.CreatedAt) <= maxAge {
			continue
		}
		log.Printf("cleaning up session %d", code)
		delete(st.sessions, code)
		for _, id := range snap.Players {
			if st.byPlayer[id] == code {
				delete(st.byPlayer, id)
			}
		}
	}
}
