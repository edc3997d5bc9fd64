package session

import (
	"testing"
	"time"

	"gameroom/internal/game"
	"gameroom/internal/game/duel"
	"gameroom/internal/game/raceboard"
)

func TestCreateAllocatesSixDigitCode(t *testing.T) {
	st := NewStore(duel.Duel{})
	seen := make(map[int]bool)
	for range 50 {
		s, err := st.Create(int64(len(seen) + 1))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if s.Code < 100000 || s.Code > 999999 {
			t.Fatalf("code %d out of range", s.Code)
		}
		if seen[s.Code] {
			t.Fatalf("duplicate code %d", s.Code)
		}
		seen[s.Code] = true
	}
}

func TestJoinAutoStarts(t *testing.T) {
	st := NewStore(duel.Duel{})
	created, _ := st.Create(10)

	s, err := st.Join(11, created.Code)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != game.StatusPlaying {
		t.Fatalf("status = %s, want playing", snap.Status)
	}
	if snap.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", snap.CurrentTurn)
	}
}

func TestJoinAutoStartsOnceAtMinimum(t *testing.T) {
	// raceboard allows 3 players; the third join must not restart the
	// session or move the turn
	st := NewStore(raceboard.RaceBoard{})
	created, _ := st.Create(10)

	if _, err := st.Join(11, created.Code); err != nil {
		t.Fatalf("join 11: %v", err)
	}
	s, err := st.Join(12, created.Code)
	if err != nil {
		t.Fatalf("join 12: %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != game.StatusPlaying || snap.CurrentTurn != 1 {
		t.Fatalf("snapshot after third join: %+v", snap)
	}
	if len(snap.Players) != 3 {
		t.Fatalf("players = %v", snap.Players)
	}

	_, err = st.Join(13, created.Code)
	if game.CodeOf(err) != game.CodeSessionFull {
		t.Fatalf("expected SESSION_FULL, got %v", err)
	}
}

func TestJoinErrors(t *testing.T) {
	st := NewStore(raceboard.RaceBoard{})
	created, _ := st.Create(10)

	if _, err := st.Join(11, 999999); game.KindOf(err) != game.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.Join(10, created.Code); game.CodeOf(err) != game.CodeAlreadyJoined {
		t.Fatalf("expected ALREADY_JOINED, got %v", err)
	}

	other, _ := st.Create(20)
	if _, err := st.Join(10, other.Code); game.CodeOf(err) != game.CodeAlreadyInSession {
		t.Fatalf("expected ALREADY_IN_SESSION, got %v", err)
	}
}

func TestJoinAfterFinishedSession(t *testing.T) {
	st := NewStore(duel.Duel{})
	first, _ := st.Create(10)
	st.Join(11, first.Code)
	if _, err := st.Finish(10, first.Code); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// membership in a finished session does not block a new join
	second, _ := st.Create(20)
	if _, err := st.Join(10, second.Code); err != nil {
		t.Fatalf("join after finish: %v", err)
	}
}

func TestExplicitStart(t *testing.T) {
	st := NewStore(raceboard.RaceBoard{})
	created, _ := st.Create(10)

	if _, err := st.Start(99, created.Code); game.KindOf(err) != game.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := st.Start(10, created.Code); game.KindOf(err) != game.KindValidation {
		t.Fatalf("expected validation with one player, got %v", err)
	}
	if _, err := st.Start(10, 131313); game.KindOf(err) != game.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	st := NewStore(duel.Duel{})
	created, _ := st.Create(10)
	st.Join(11, created.Code)

	if _, ok := st.Get(created.Code); !ok {
		t.Fatal("get by code failed")
	}
	if _, ok := st.Get(100001); ok {
		t.Fatal("unexpected session for unknown code")
	}
	s, ok := st.ByParticipant(11)
	if !ok || s.Code != created.Code {
		t.Fatalf("by participant: %v, %v", s, ok)
	}
	if _, ok := st.ByParticipant(99); ok {
		t.Fatal("unexpected session for outsider")
	}
}

func TestFinishResolvesWinner(t *testing.T) {
	st := NewStore(duel.Duel{})
	created, _ := st.Create(10)
	st.Join(11, created.Code)

	s, _ := st.Get(created.Code)
	s.Lock()
	s.State.(*duel.State).Scores[11] = 3
	s.Unlock()

	done, err := st.Finish(10, created.Code)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	snap := done.Snapshot()
	if snap.Status != game.StatusFinished {
		t.Fatalf("status = %s", snap.Status)
	}
	if snap.Winner == nil || *snap.Winner != 11 {
		t.Fatalf("winner = %v, want 11", snap.Winner)
	}

	if _, err := st.Finish(99, created.Code); game.KindOf(err) != game.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCleanupFreesFinishedSessions(t *testing.T) {
	st := NewStore(duel.Duel{})
	created, _ := st.Create(10)
	st.Join(11, created.Code)
	st.Finish(10, created.Code)

	st.cleanup(0)
	if _, ok := st.Get(created.Code); ok {
		t.Fatal("finished session survived cleanup")
	}
	if _, ok := st.ByParticipant(10); ok {
		t.Fatal("participant index survived cleanup")
	}

	// live sessions stay
	live, _ := st.Create(30)
	st.cleanup(time.Hour)
	if _, ok := st.Get(live.Code); !ok {
		t.Fatal("live session removed by cleanup")
	}
}

func TestListSnapshots(t *testing.T) {
	st := NewStore(duel.Duel{})
	st.Create(10)
	st.Create(20)
	if got := len(st.List()); got != 2 {
		t.Fatalf("list = %d sessions, want 2", got)
	}
}
