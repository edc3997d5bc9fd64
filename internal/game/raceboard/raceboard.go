// Package raceboard implements the dice-and-board race variant: roll,
// move, climb ladders, slide down chutes, first to the end wins.
package raceboard

import (
	"maps"

	"gameroom/internal/game"
)

// BoardSize is the terminal position. Reaching it ends the game.
const BoardSize = 100

// Jumps maps board positions to alternate destinations. Destinations
// above the source are ladders, below are chutes. Applied exactly once
// per move, never chained.
var Jumps = map[int]int{
	3:  22,
	5:  8,
	11: 26,
	20: 29,
	17: 4,
	19: 7,
	21: 9,
	27: 1,
	35: 28,
	39: 32,
	51: 67,
	54: 34,
	62: 19,
	64: 60,
	71: 91,
	87: 24,
	93: 73,
	95: 75,
	99: 80,
}

// RaceBoard implements game.Variant.
type RaceBoard struct{}

func (RaceBoard) Info() game.Info {
	return game.Info{Name: "raceboard", MinPlayers: 2, MaxPlayers: 3}
}

func (RaceBoard) NewState(players []int64) game.State {
	st := &State{
		Positions: make(map[int64]int, len(players)),
		BoardSize: BoardSize,
	}
	for _, id := range players {
		st.Positions[id] = 0
	}
	return st
}

// State holds per-player positions and the outstanding roll of the
// player whose turn it is.
type State struct {
	Positions map[int64]int `json:"positions"`
	BoardSize int           `json:"boardSize"`
	LastRoll  *int          `json:"lastRoll,omitempty"`
}

// AddPlayer starts a late joiner at the first square.
func (st *State) AddPlayer(user int64) {
	st.Positions[user] = 0
}

func (st *State) Snapshot() any {
	out := *st
	out.Positions = maps.Clone(st.Positions)
	return out
}

// FinishWinner picks the highest position. Ties go to the earliest slot.
func (st *State) FinishWinner(players []int64) (int64, bool) {
	var winner int64
	best := -1
	for _, id := range players {
		if pos := st.Positions[id]; pos > best {
			winner, best = id, pos
		}
	}
	return winner, true
}

// Roll stores an outstanding roll for the acting player's turn. The
// caller supplies the die value so tests can pin it.
func Roll(s *game.Session, user int64, roll int) error {
	s.Lock()
	defer s.Unlock()
	if err := s.EnsureTurnLocked(user); err != nil {
		return err
	}
	st := s.State.(*State)
	if st.LastRoll != nil {
		return game.Conflict(game.CodeAlreadyActed, "already rolled a %d, move first", *st.LastRoll)
	}
	st.LastRoll = &roll
	return nil
}

// MoveResult reports where a move ended up.
type MoveResult struct {
	From        int  `json:"from"`
	Landed      int  `json:"landed"` // position before the jump table
	Final       int  `json:"final"`
	JumpApplied bool `json:"jumpApplied"`
	JumpDelta   int  `json:"jumpDelta,omitempty"`
	Won         bool `json:"won"`
}

// Move consumes the outstanding roll: advance capped at the board size,
// apply the jump table once, finish immediately on reaching the end,
// otherwise hand the turn over.
func Move(s *game.Session, user int64) (MoveResult, error) {
	s.Lock()
	defer s.Unlock()
	if err := s.EnsureTurnLocked(user); err != nil {
		return MoveResult{}, err
	}
	st := s.State.(*State)
	if st.LastRoll == nil {
		return MoveResult{}, game.Validation(game.CodeMissingRoll, "roll the dice first")
	}

	from := st.Positions[user]
	landed := min(from+*st.LastRoll, st.BoardSize)
	res := MoveResult{From: from, Landed: landed, Final: landed}
	if dest, ok := Jumps[landed]; ok {
		res.Final = dest
		res.JumpApplied = true
		res.JumpDelta = dest - landed
	}
	st.Positions[user] = res.Final
	st.LastRoll = nil

	if res.Final >= st.BoardSize {
		res.Won = true
		s.FinishWithLocked(user)
		return res, nil
	}
	s.AdvanceTurnLocked()
	return res, nil
}
