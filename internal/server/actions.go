package server

import (
	"net/http"

	"gameroom/internal/game"
	"gameroom/internal/game/duel"
	"gameroom/internal/game/economy"
	"gameroom/internal/game/raceboard"
	"gameroom/internal/session"
)

func getSession(w http.ResponseWriter, store *session.Store, code int) (*game.Session, bool) {
	sess, ok := store.Get(code)
	if !ok {
		writeError(w, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code))
		return nil, false
	}
	return sess, true
}

type choiceRequest struct {
	Participant int64  `json:"participant"`
	Code        int    `json:"code"`
	Choice      string `json:"choice"`
}

type choiceResponse struct {
	Result  duel.Result   `json:"result"`
	Session game.Snapshot `json:"session"`
}

func (s *Server) handleDuelChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.duel, req.Code)
	if !ok {
		return
	}
	res, err := duel.Submit(sess, req.Participant, duel.Choice(req.Choice))
	if err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("duel", req.Code, req.Participant, "choice", map[string]any{
		"resolved": res.Resolved,
	})
	broadcast(sess)
	writeJSON(w, http.StatusOK, choiceResponse{Result: res, Session: sess.Snapshot()})
}

type rollResponse struct {
	Roll    int           `json:"roll"`
	Session game.Snapshot `json:"session"`
}

func (s *Server) handleRaceRoll(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.race, req.Code)
	if !ok {
		return
	}
	roll := s.dice()
	if err := raceboard.Roll(sess, req.Participant, roll); err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("raceboard", req.Code, req.Participant, "roll", map[string]any{"roll": roll})
	broadcast(sess)
	writeJSON(w, http.StatusOK, rollResponse{Roll: roll, Session: sess.Snapshot()})
}

type moveResponse struct {
	Result  raceboard.MoveResult `json:"result"`
	Session game.Snapshot        `json:"session"`
}

func (s *Server) handleRaceMove(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.race, req.Code)
	if !ok {
		return
	}
	res, err := raceboard.Move(sess, req.Participant)
	if err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("raceboard", req.Code, req.Participant, "move", map[string]any{
		"from": res.From, "final": res.Final, "jump": res.JumpApplied,
	})
	if res.Won {
		s.rec.GameFinished("raceboard", req.Code, req.Participant, &req.Participant)
	}
	broadcast(sess)
	writeJSON(w, http.StatusOK, moveResponse{Result: res, Session: sess.Snapshot()})
}

type economyRollResponse struct {
	economy.RollResult
	Session game.Snapshot `json:"session"`
}

func (s *Server) handleEconomyRoll(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.economy, req.Code)
	if !ok {
		return
	}
	roll := s.dice()
	res, err := economy.Roll(sess, req.Participant, roll)
	if err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("economy", req.Code, req.Participant, "roll", map[string]any{
		"roll": res.Roll, "position": res.NewPosition, "rent": res.RentPaid,
	})
	if res.Bankrupt {
		s.rec.GameFinished("economy", req.Code, req.Participant, res.RentTo)
	}
	broadcast(sess)
	writeJSON(w, http.StatusOK, economyRollResponse{RollResult: res, Session: sess.Snapshot()})
}

type buyResponse struct {
	Property economy.Property `json:"property"`
	Session  game.Snapshot    `json:"session"`
}

func (s *Server) handleEconomyBuy(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.economy, req.Code)
	if !ok {
		return
	}
	prop, err := economy.Buy(sess, req.Participant)
	if err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("economy", req.Code, req.Participant, "buy", map[string]any{
		"property": prop.Name, "price": prop.Price,
	})
	broadcast(sess)
	writeJSON(w, http.StatusOK, buyResponse{Property: prop, Session: sess.Snapshot()})
}

func (s *Server) handleEconomyEndTurn(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := getSession(w, s.economy, req.Code)
	if !ok {
		return
	}
	if err := economy.EndTurn(sess, req.Participant); err != nil {
		writeError(w, err)
		return
	}
	s.rec.Action("economy", req.Code, req.Participant, "end_turn", nil)
	broadcast(sess)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
