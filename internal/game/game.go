package game

// Info describes a game variant for matchmaking.
type Info struct {
	Name       string `json:"name"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
}

// Variant describes a game rule-set (duel, raceboard, economy).
type Variant interface {
	Info() Info
	// NewState builds the variant payload for a starting session.
	// players is the ordered participant list; the first entry is the host.
	NewState(players []int64) State
}

// State is the variant-specific payload of a playing session.
type State interface {
	// Snapshot returns a JSON-marshalable view of the payload.
	Snapshot() any
	// AddPlayer initializes per-player state for a participant joining
	// after the session started.
	AddPlayer(user int64)
	// FinishWinner picks a winner for an explicit finish. players is the
	// ordered participant list; ok is false when the result is a draw.
	FinishWinner(players []int64) (winner int64, ok bool)
}
