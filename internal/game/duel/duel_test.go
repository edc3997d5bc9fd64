package duel

import (
	"testing"

	"gameroom/internal/game"
)

func playingSession(t *testing.T, players ...int64) *game.Session {
	t.Helper()
	s := game.NewSession(111111, Duel{}, players[0])
	s.Lock()
	defer s.Unlock()
	for _, p := range players[1:] {
		if err := s.AddPlayerLocked(p); err != nil {
			t.Fatalf("add %d: %v", p, err)
		}
	}
	if err := s.StartLocked(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestBeatsRelation(t *testing.T) {
	cases := []struct {
		first, second Choice
		winner        int // 1, 2, or 0 for tie
	}{
		{Rock, Scissors, 1},
		{Paper, Rock, 1},
		{Scissors, Paper, 1},
		{Scissors, Rock, 2},
		{Rock, Paper, 2},
		{Paper, Scissors, 2},
		{Rock, Rock, 0},
		{Paper, Paper, 0},
		{Scissors, Scissors, 0},
	}
	for _, tc := range cases {
		s := playingSession(t, 1, 2)
		if _, err := Submit(s, 1, tc.first); err != nil {
			t.Fatalf("%v vs %v: submit 1: %v", tc.first, tc.second, err)
		}
		res, err := Submit(s, 2, tc.second)
		if err != nil {
			t.Fatalf("%v vs %v: submit 2: %v", tc.first, tc.second, err)
		}
		if !res.Resolved {
			t.Fatalf("%v vs %v: round did not resolve", tc.first, tc.second)
		}
		switch tc.winner {
		case 0:
			if res.RoundWinner != nil {
				t.Fatalf("%v vs %v: winner = %d, want tie", tc.first, tc.second, *res.RoundWinner)
			}
		default:
			if res.RoundWinner == nil || *res.RoundWinner != int64(tc.winner) {
				t.Fatalf("%v vs %v: winner = %v, want %d", tc.first, tc.second, res.RoundWinner, tc.winner)
			}
		}
	}
}

func TestRoundResolution(t *testing.T) {
	s := playingSession(t, 1, 2)

	res, err := Submit(s, 1, Rock)
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if res.Resolved {
		t.Fatal("round resolved with one choice in")
	}

	res, err = Submit(s, 2, Scissors)
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if !res.Resolved || res.Round != 1 {
		t.Fatalf("result = %+v, want resolved round 1", res)
	}

	st := s.State.(*State)
	if st.Scores[1] != 1 || st.Scores[2] != 0 {
		t.Fatalf("scores = %v", st.Scores)
	}
	if st.Round != 1 {
		t.Fatalf("round = %d, want 1", st.Round)
	}
	if len(st.Choices) != 0 {
		t.Fatalf("pending choices not cleared: %v", st.Choices)
	}

	// scores persist into the next round
	Submit(s, 1, Paper)
	Submit(s, 2, Scissors)
	if st.Scores[1] != 1 || st.Scores[2] != 1 {
		t.Fatalf("scores after round 2 = %v", st.Scores)
	}
}

func TestTieKeepsScores(t *testing.T) {
	s := playingSession(t, 1, 2)
	Submit(s, 1, Rock)
	res, _ := Submit(s, 2, Rock)
	if res.RoundWinner != nil {
		t.Fatalf("winner = %d, want tie", *res.RoundWinner)
	}
	st := s.State.(*State)
	if st.Scores[1] != 0 || st.Scores[2] != 0 {
		t.Fatalf("scores changed on tie: %v", st.Scores)
	}
	if st.Round != 1 {
		t.Fatalf("round = %d, want 1", st.Round)
	}
}

func TestSecondChoiceRejected(t *testing.T) {
	s := playingSession(t, 1, 2)
	if _, err := Submit(s, 1, Rock); err != nil {
		t.Fatalf("first choice: %v", err)
	}
	_, err := Submit(s, 1, Paper)
	if game.CodeOf(err) != game.CodeAlreadyActed {
		t.Fatalf("expected ALREADY_ACTED, got %v", err)
	}
	// the pending choice is unchanged, not queued
	if st := s.State.(*State); st.Choices[1] != Rock {
		t.Fatalf("pending choice = %v, want rock", st.Choices[1])
	}
}

func TestSubmitErrors(t *testing.T) {
	s := playingSession(t, 1, 2)

	if _, err := Submit(s, 3, Rock); game.KindOf(err) != game.KindForbidden {
		t.Fatalf("outsider: expected forbidden, got %v", err)
	}
	if _, err := Submit(s, 1, "lizard"); game.CodeOf(err) != game.CodeInvalidChoice {
		t.Fatalf("expected INVALID_CHOICE, got %v", err)
	}

	s.Lock()
	s.FinishLocked()
	s.Unlock()
	if _, err := Submit(s, 1, Rock); game.KindOf(err) != game.KindConflict {
		t.Fatalf("finished session: expected conflict, got %v", err)
	}
}

func TestFinishWinner(t *testing.T) {
	s := playingSession(t, 1, 2)
	st := s.State.(*State)
	st.Scores[1] = 2
	st.Scores[2] = 5

	w, ok := st.FinishWinner(s.Players)
	if !ok || w != 2 {
		t.Fatalf("winner = %d (%v), want 2", w, ok)
	}

	st.Scores[1] = 5
	if _, ok := st.FinishWinner(s.Players); ok {
		t.Fatal("equal scores should be a draw")
	}
}
