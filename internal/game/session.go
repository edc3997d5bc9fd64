package game

import (
	"slices"
	"sync"
	"time"
)

// Status represents the session lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Session is one game instance identified by an invite code. Participants
// are ordered; the first one is the host. All mutations of a session go
// through its lock, so concurrent actions against the same code never
// interleave.
type Session struct {
	mu       sync.Mutex
	variant  Variant
	watchers map[chan []byte]struct{}

	Code        int
	Players     []int64
	Status      Status
	CurrentTurn int // 1-based slot, 0 until the session starts
	Winner      *int64
	State       State
	CreatedAt   time.Time
}

// NewSession creates a waiting session with the host as sole participant.
func NewSession(code int, v Variant, host int64) *Session {
	return &Session{
		variant:   v,
		watchers:  make(map[chan []byte]struct{}),
		Code:      code,
		Players:   []int64{host},
		Status:    StatusWaiting,
		CreatedAt: time.Now(),
	}
}

// Variant returns the session's rule-set.
func (s *Session) Variant() Variant { return s.variant }

// Lock/Unlock expose the session mutex. Compound operations (check turn,
// mutate state, maybe finish) run under a single acquisition; the Locked
// method variants assume the caller holds it.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddPlayerLocked appends a participant. Joining stays open until the
// session is full or finished; a late joiner enters at the end of the
// turn order with fresh variant state.
func (s *Session) AddPlayerLocked(user int64) error {
	if s.Status == StatusFinished {
		return Conflict(CodeWrongStatus, "session %d is finished", s.Code)
	}
	if slices.Contains(s.Players, user) {
		return Conflict(CodeAlreadyJoined, "user %d is already in session %d", user, s.Code)
	}
	if len(s.Players) >= s.variant.Info().MaxPlayers {
		return Conflict(CodeSessionFull, "session %d is full", s.Code)
	}
	s.Players = append(s.Players, user)
	if s.State != nil {
		s.State.AddPlayer(user)
	}
	return nil
}

// StartLocked transitions waiting→playing, builds the variant state and
// hands the first turn to slot 1.
func (s *Session) StartLocked() error {
	if s.Status != StatusWaiting {
		return Conflict(CodeWrongStatus, "session %d already %s", s.Code, s.Status)
	}
	min := s.variant.Info().MinPlayers
	if len(s.Players) < min {
		return Validation(CodeNotEnoughPlayers, "need at least %d players, have %d", min, len(s.Players))
	}
	s.State = s.variant.NewState(slices.Clone(s.Players))
	s.Status = StatusPlaying
	s.CurrentTurn = 1
	return nil
}

// SlotOfLocked returns the 1-based slot of a participant, or 0.
func (s *Session) SlotOfLocked(user int64) int {
	for i, id := range s.Players {
		if id == user {
			return i + 1
		}
	}
	return 0
}

// EnsurePlayingLocked verifies the actor is a participant of a playing
// session. Membership is checked first so outsiders get Forbidden rather
// than a status hint.
func (s *Session) EnsurePlayingLocked(user int64) error {
	if s.SlotOfLocked(user) == 0 {
		return Forbidden(CodeNotParticipant, "user %d is not in session %d", user, s.Code)
	}
	if s.Status != StatusPlaying {
		return Conflict(CodeWrongStatus, "session %d is %s, not playing", s.Code, s.Status)
	}
	return nil
}

// EnsureTurnLocked additionally verifies the actor occupies the current
// turn slot.
func (s *Session) EnsureTurnLocked(user int64) error {
	if err := s.EnsurePlayingLocked(user); err != nil {
		return err
	}
	if s.SlotOfLocked(user) != s.CurrentTurn {
		return Conflict(CodeNotYourTurn, "it is slot %d's turn", s.CurrentTurn)
	}
	return nil
}

// AdvanceTurnLocked moves the turn to the next slot.
func (s *Session) AdvanceTurnLocked() {
	s.CurrentTurn = (s.CurrentTurn % len(s.Players)) + 1
}

// FinishWithLocked ends the session with a known winner. No-op once
// finished.
func (s *Session) FinishWithLocked(winner int64) {
	if s.Status == StatusFinished {
		return
	}
	s.Winner = &winner
	s.Status = StatusFinished
}

// FinishLocked ends the session, resolving the winner through the variant
// state if one is not already set. A draw leaves Winner nil.
func (s *Session) FinishLocked() {
	if s.Status == StatusFinished {
		return
	}
	if s.Winner == nil && s.State != nil {
		if w, ok := s.State.FinishWinner(slices.Clone(s.Players)); ok {
			s.Winner = &w
		}
	}
	s.Status = StatusFinished
}

// Snapshot is the external view of a session.
type Snapshot struct {
	Code        int     `json:"code"`
	Variant     string  `json:"variant"`
	Status      Status  `json:"status"`
	Players     []int64 `json:"players"`
	Host        int64   `json:"host"`
	CurrentTurn int     `json:"currentTurn,omitempty"`
	Winner      *int64  `json:"winner,omitempty"`
	State       any     `json:"state,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SnapshotLocked()
}

func (s *Session) SnapshotLocked() Snapshot {
	snap := Snapshot{
		Code:        s.Code,
		Variant:     s.variant.Info().Name,
		Status:      s.Status,
		Players:     slices.Clone(s.Players),
		Host:        s.Players[0],
		CurrentTurn: s.CurrentTurn,
		Winner:      s.Winner,
	}
	if s.State != nil {
		snap.State = s.State.Snapshot()
	}
	return snap
}

// Watch registers a channel that receives state pushes until Unwatch.
func (s *Session) Watch(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers[ch] = struct{}{}
}

func (s *Session) Unwatch(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers, ch)
}

// Broadcast pushes a message to all watchers, dropping it for any watcher
// whose buffer is full.
func (s *Session) Broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- msg:
		default:
		}
	}
}
