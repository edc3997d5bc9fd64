package server

import (
	"net/http"
	"strconv"

	"gameroom/internal/game"
)

type mmCreateRequest struct {
	Participant int64  `json:"participant"`
	Variant     string `json:"variant"`
}

func (s *Server) handleMMCreate(w http.ResponseWriter, r *http.Request) {
	var req mmCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Participant == 0 {
		writeError(w, game.Validation(game.CodeInvalidRequest, "participant required"))
		return
	}
	snap, err := s.mm.Create(req.Participant, req.Variant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleMMJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.mm.Join(req.Participant, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMMLeave(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.mm.Leave(req.Participant); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleMMStart(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.mm.Start(req.Participant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMMByUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, game.Validation(game.CodeInvalidRequest, "invalid user id %q", r.PathValue("id")))
		return
	}
	snap, ok := s.mm.ByUser(id)
	if !ok {
		writeError(w, game.NotFound(game.CodeSessionNotFound, "user %d is not in any game", id))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMMByCode(w http.ResponseWriter, r *http.Request) {
	code, err := pathInt(r, "code")
	if err != nil {
		writeError(w, err)
		return
	}
	snap, ok := s.mm.ByCode(code)
	if !ok {
		writeError(w, game.NotFound(game.CodeSessionNotFound, "no game with code %d", code))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
