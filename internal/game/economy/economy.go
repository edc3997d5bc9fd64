// Package economy implements the property-trading variant: a wrapping
// board of priced squares, rent transfers, optional purchases and
// bankruptcy as the loss condition.
package economy

import (
	"maps"

	"gameroom/internal/game"
)

const (
	// BoardSize is the number of squares; positions wrap modulo it.
	BoardSize = 20
	// StartCash is each player's starting balance.
	StartCash = 1500
	// PassStartBonus is credited once per roll that crosses the wrap.
	PassStartBonus = 200
)

// Property is a purchasable square.
type Property struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Rent  int    `json:"rent"`
}

// Catalog maps board positions to properties. Unlisted positions are
// plain squares.
var Catalog = map[int]Property{
	1:  {Name: "Old Kent Road", Price: 60, Rent: 2},
	3:  {Name: "Whitechapel Road", Price: 60, Rent: 4},
	5:  {Name: "King's Cross Station", Price: 200, Rent: 25},
	6:  {Name: "The Angel, Islington", Price: 100, Rent: 6},
	8:  {Name: "Euston Road", Price: 100, Rent: 6},
	9:  {Name: "Pentonville Road", Price: 120, Rent: 8},
	11: {Name: "Pall Mall", Price: 140, Rent: 10},
	13: {Name: "Whitehall", Price: 140, Rent: 10},
	14: {Name: "Northumberland Avenue", Price: 160, Rent: 12},
	16: {Name: "Bow Street", Price: 180, Rent: 14},
	18: {Name: "Marlborough Street", Price: 180, Rent: 14},
	19: {Name: "Vine Street", Price: 200, Rent: 16},
}

// Economy implements game.Variant.
type Economy struct{}

func (Economy) Info() game.Info {
	return game.Info{Name: "economy", MinPlayers: 2, MaxPlayers: 3}
}

func (Economy) NewState(players []int64) game.State {
	st := &State{
		Positions: make(map[int64]int, len(players)),
		Cash:      make(map[int64]int, len(players)),
		Owners:    make(map[int]int64, len(Catalog)),
	}
	for _, id := range players {
		st.Positions[id] = 0
		st.Cash[id] = StartCash
	}
	return st
}

// State holds positions, balances and property ownership.
type State struct {
	Positions map[int64]int `json:"positions"`
	Cash      map[int64]int `json:"cash"`
	Owners    map[int]int64 `json:"owners"`
	LastRoll  *int          `json:"lastRoll,omitempty"`
}

// AddPlayer starts a late joiner at the first square with full cash.
func (st *State) AddPlayer(user int64) {
	st.Positions[user] = 0
	st.Cash[user] = StartCash
}

func (st *State) Snapshot() any {
	out := *st
	out.Positions = maps.Clone(st.Positions)
	out.Cash = maps.Clone(st.Cash)
	out.Owners = maps.Clone(st.Owners)
	return out
}

// FinishWinner picks the highest cash balance. Ties go to the earliest
// slot.
func (st *State) FinishWinner(players []int64) (int64, bool) {
	var winner int64
	best := -1
	for _, id := range players {
		if cash := st.Cash[id]; cash > best {
			winner, best = id, cash
		}
	}
	return winner, true
}

// RollResult reports the side effects of a roll.
type RollResult struct {
	Roll         int    `json:"roll"`
	NewPosition  int    `json:"newPosition"`
	PassedStart  bool   `json:"passedStart"`
	RentPaid     int    `json:"rentPaid,omitempty"`
	RentTo       *int64 `json:"rentTo,omitempty"`
	CanBuy       bool   `json:"canBuy"`
	PropertyCost int    `json:"propertyCost,omitempty"`
	Bankrupt     bool   `json:"bankrupt"`
}

// Roll advances the acting player atomically: wrap around the board,
// credit the pass-start bonus at most once, transfer rent on an owned
// square. Rent dropping the mover to zero or below finishes the game in
// the owner's favor. Buying stays a separate, optional action.
func Roll(s *game.Session, user int64, roll int) (RollResult, error) {
	s.Lock()
	defer s.Unlock()
	if err := s.EnsureTurnLocked(user); err != nil {
		return RollResult{}, err
	}
	st := s.State.(*State)
	if st.LastRoll != nil {
		return RollResult{}, game.Conflict(game.CodeAlreadyActed, "already rolled this turn")
	}
	st.LastRoll = &roll

	from := st.Positions[user]
	res := RollResult{Roll: roll, NewPosition: (from + roll) % BoardSize}
	if from+roll >= BoardSize {
		res.PassedStart = true
		st.Cash[user] += PassStartBonus
	}
	st.Positions[user] = res.NewPosition

	prop, isProperty := Catalog[res.NewPosition]
	if !isProperty {
		return res, nil
	}
	owner, owned := st.Owners[res.NewPosition]
	switch {
	case owned && owner != user:
		st.Cash[user] -= prop.Rent
		st.Cash[owner] += prop.Rent
		res.RentPaid = prop.Rent
		res.RentTo = &owner
		if st.Cash[user] <= 0 {
			res.Bankrupt = true
			s.FinishWithLocked(owner)
		}
	case !owned:
		res.PropertyCost = prop.Price
		res.CanBuy = st.Cash[user] >= prop.Price
	}
	return res, nil
}

// Buy purchases the square the acting player stands on.
func Buy(s *game.Session, user int64) (Property, error) {
	s.Lock()
	defer s.Unlock()
	if err := s.EnsureTurnLocked(user); err != nil {
		return Property{}, err
	}
	st := s.State.(*State)
	if st.LastRoll == nil {
		return Property{}, game.Validation(game.CodeMissingRoll, "roll before buying")
	}
	pos := st.Positions[user]
	prop, isProperty := Catalog[pos]
	if !isProperty {
		return Property{}, game.Validation(game.CodeNotForSale, "position %d is not a property", pos)
	}
	if _, owned := st.Owners[pos]; owned {
		return Property{}, game.Conflict(game.CodeNotForSale, "%s is already owned", prop.Name)
	}
	if st.Cash[user] < prop.Price {
		return Property{}, game.Validation(game.CodeInsufficientFunds, "%s costs %d, you have %d", prop.Name, prop.Price, st.Cash[user])
	}
	st.Cash[user] -= prop.Price
	st.Owners[pos] = user
	return prop, nil
}

// EndTurn clears the outstanding roll and hands the turn over. A pending
// buy decision never blocks it.
func EndTurn(s *game.Session, user int64) error {
	s.Lock()
	defer s.Unlock()
	if err := s.EnsureTurnLocked(user); err != nil {
		return err
	}
	st := s.State.(*State)
	if st.LastRoll == nil {
		return game.Validation(game.CodeMissingRoll, "roll before ending your turn")
	}
	st.LastRoll = nil
	s.AdvanceTurnLocked()
	return nil
}
