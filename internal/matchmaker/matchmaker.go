// Package matchmaker is the coarse cross-variant registry: it groups
// users under an invite code before a variant service takes over. Its
// code keyspace is independent of the per-variant stores.
package matchmaker

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"gameroom/internal/game"
)

const (
	codeMin  = 100000
	codeSpan = 900000

	maxCodeAttempts = 1000
)

// Game is one matchmaking group. The first user is the host.
type Game struct {
	Code      int
	Variant   string
	Users     []int64
	Started   bool
	CreatedAt time.Time
}

// Snapshot is the external view of a matchmaking group.
type Snapshot struct {
	Code    int     `json:"code"`
	Variant string  `json:"variant"`
	Host    int64   `json:"host"`
	Users   []int64 `json:"users"`
	Started bool    `json:"started"`
}

func (g *Game) snapshot() Snapshot {
	return Snapshot{
		Code:    g.Code,
		Variant: g.Variant,
		Host:    g.Users[0],
		Users:   slices.Clone(g.Users),
		Started: g.Started,
	}
}

// Registry holds all matchmaking groups. A single lock guards it; groups
// are short-lived and mutations are cheap.
type Registry struct {
	mu       sync.Mutex
	variants *game.Registry
	games    map[int]*Game
	byUser   map[int64]int
}

// NewRegistry creates an empty matchmaker over the given variants.
func NewRegistry(variants *game.Registry) *Registry {
	return &Registry{
		variants: variants,
		games:    make(map[int]*Game),
		byUser:   make(map[int64]int),
	}
}

// Create opens a matchmaking group for a variant with user as host.
func (r *Registry) Create(user int64, variant string) (Snapshot, error) {
	if _, ok := r.variants.Get(variant); !ok {
		return Snapshot{}, game.Validation(game.CodeUnknownVariant, "unknown variant %q", variant)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, in := r.byUser[user]; in {
		return Snapshot{}, game.Conflict(game.CodeAlreadyInSession, "user %d is already in game %d", user, prev)
	}
	code, err := r.allocateCodeLocked()
	if err != nil {
		return Snapshot{}, err
	}
	g := &Game{Code: code, Variant: variant, Users: []int64{user}, CreatedAt: time.Now()}
	r.games[code] = g
	r.byUser[user] = code
	return g.snapshot(), nil
}

func (r *Registry) allocateCodeLocked() (int, error) {
	for range maxCodeAttempts {
		code := codeMin + rand.IntN(codeSpan)
		if _, taken := r.games[code]; !taken {
			return code, nil
		}
	}
	return 0, game.Conflict(game.CodeCodeSpaceExhausted, "no free invite codes")
}

// Join adds a user to the group behind code.
func (r *Registry) Join(user int64, code int) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[code]
	if !ok {
		return Snapshot{}, game.NotFound(game.CodeSessionNotFound, "no game with code %d", code)
	}
	if prev, in := r.byUser[user]; in {
		if prev == code {
			return Snapshot{}, game.Conflict(game.CodeAlreadyJoined, "user %d is already in game %d", user, code)
		}
		return Snapshot{}, game.Conflict(game.CodeAlreadyInSession, "user %d is already in game %d", user, prev)
	}
	if g.Started {
		return Snapshot{}, game.Conflict(game.CodeWrongStatus, "game %d has already started", code)
	}
	v, _ := r.variants.Get(g.Variant)
	if len(g.Users) >= v.Info().MaxPlayers {
		return Snapshot{}, game.Conflict(game.CodeSessionFull, "game %d is full", code)
	}
	g.Users = append(g.Users, user)
	r.byUser[user] = code
	return g.snapshot(), nil
}

// Leave removes a user from their group. When the host leaves the whole
// group disbands.
func (r *Registry) Leave(user int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, in := r.byUser[user]
	if !in {
		return game.NotFound(game.CodeSessionNotFound, "user %d is not in any game", user)
	}
	g := r.games[code]
	if g.Users[0] == user {
		for _, id := range g.Users {
			delete(r.byUser, id)
		}
		delete(r.games, code)
		return nil
	}
	g.Users = slices.DeleteFunc(g.Users, func(id int64) bool { return id == user })
	delete(r.byUser, user)
	return nil
}

// Start marks the host's group as started.
func (r *Registry) Start(user int64) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, in := r.byUser[user]
	if !in {
		return Snapshot{}, game.NotFound(game.CodeSessionNotFound, "user %d is not in any game", user)
	}
	g := r.games[code]
	if g.Users[0] != user {
		return Snapshot{}, game.Forbidden(game.CodeNotHost, "only the host can start game %d", code)
	}
	if g.Started {
		return Snapshot{}, game.Conflict(game.CodeWrongStatus, "game %d has already started", code)
	}
	v, _ := r.variants.Get(g.Variant)
	if len(g.Users) < v.Info().MinPlayers {
		return Snapshot{}, game.Validation(game.CodeNotEnoughPlayers, "need at least %d players, have %d", v.Info().MinPlayers, len(g.Users))
	}
	g.Started = true
	return g.snapshot(), nil
}

// ByUser returns the group a user belongs to.
func (r *Registry) ByUser(user int64) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, in := r.byUser[user]
	if !in {
		return Snapshot{}, false
	}
	return r.games[code].snapshot(), true
}

// ByCode returns the group behind an invite code.
func (r *Registry) ByCode(code int) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[code]
	if !ok {
		return Snapshot{}, false
	}
	return g.snapshot(), true
}
