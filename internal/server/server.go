package server

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strconv"

	"gameroom/internal/eventlog"
	"gameroom/internal/game"
	"gameroom/internal/matchmaker"
	"gameroom/internal/session"
)

// Server is the HTTP server. It mounts the matchmaker routes plus one
// route group per variant, all sharing the same lifecycle endpoints.
type Server struct {
	mux     *http.ServeMux
	mm      *matchmaker.Registry
	duel    *session.Store
	race    *session.Store
	economy *session.Store
	rec     *eventlog.Recorder
	events  *eventlog.Store
	dice    func() int
}

// New creates a server with all routes. events may be nil when the sink
// has no queryable store behind it.
func New(mm *matchmaker.Registry, duel, race, economy *session.Store, rec *eventlog.Recorder, events *eventlog.Store) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		mm:      mm,
		duel:    duel,
		race:    race,
		economy: economy,
		rec:     rec,
		events:  events,
		dice:    func() int { return rand.IntN(6) + 1 },
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mountSessionRoutes("/api/duel", s.duel)
	s.mountSessionRoutes("/api/race", s.race)
	s.mountSessionRoutes("/api/economy", s.economy)

	s.mux.HandleFunc("POST /api/duel/action", s.handleDuelChoice)
	s.mux.HandleFunc("POST /api/race/roll", s.handleRaceRoll)
	s.mux.HandleFunc("POST /api/race/move", s.handleRaceMove)
	s.mux.HandleFunc("POST /api/economy/roll", s.handleEconomyRoll)
	s.mux.HandleFunc("POST /api/economy/buy_property", s.handleEconomyBuy)
	s.mux.HandleFunc("POST /api/economy/end_turn", s.handleEconomyEndTurn)

	s.mux.HandleFunc("POST /api/v1/create", s.handleMMCreate)
	s.mux.HandleFunc("POST /api/v1/join", s.handleMMJoin)
	s.mux.HandleFunc("POST /api/v1/leave", s.handleMMLeave)
	s.mux.HandleFunc("POST /api/v1/start", s.handleMMStart)
	s.mux.HandleFunc("GET /api/v1/user/{id}/game", s.handleMMByUser)
	s.mux.HandleFunc("GET /api/v1/{code}", s.handleMMByCode)
}

// mountSessionRoutes wires the lifecycle endpoints shared by every
// variant group.
func (s *Server) mountSessionRoutes(prefix string, store *session.Store) {
	s.mux.HandleFunc("POST "+prefix+"/create", s.handleCreate(store))
	s.mux.HandleFunc("POST "+prefix+"/join", s.handleJoin(store))
	s.mux.HandleFunc("POST "+prefix+"/start", s.handleStart(store))
	s.mux.HandleFunc("POST "+prefix+"/finish", s.handleFinish(store))
	s.mux.HandleFunc("GET "+prefix+"/participant/{id}/session", s.handleByParticipant(store))
	s.mux.HandleFunc("GET "+prefix+"/{code}/state", s.handleState(store))
	s.mux.HandleFunc("GET "+prefix+"/{code}/status", s.handleStatus(store))
	s.mux.HandleFunc("GET "+prefix+"/{code}/events", s.handleEvents)
	s.mux.HandleFunc("GET "+prefix+"/{code}/watch", s.handleWatch(store))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string    `json:"error"`
	Code  game.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch game.KindOf(err) {
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindForbidden:
		status = http.StatusForbidden
	case game.KindConflict, game.KindValidation:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: game.CodeOf(err)})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, game.Validation(game.CodeInvalidRequest, "invalid request body"))
		return false
	}
	return true
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, game.Validation(game.CodeInvalidRequest, "invalid %s %q", name, r.PathValue(name))
	}
	return n, nil
}

// broadcast pushes the current snapshot to the session's watchers.
func broadcast(sess *game.Session) {
	msg, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return
	}
	sess.Broadcast(msg)
}

type createRequest struct {
	Participant int64 `json:"participant"`
}

type joinRequest struct {
	Participant int64 `json:"participant"`
	Code        int   `json:"code"`
}

func (s *Server) handleCreate(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Participant == 0 {
			writeError(w, game.Validation(game.CodeInvalidRequest, "participant required"))
			return
		}
		sess, err := store.Create(req.Participant)
		if err != nil {
			writeError(w, err)
			return
		}
		s.rec.GameCreated(store.Variant().Info().Name, sess.Code, req.Participant)
		writeJSON(w, http.StatusCreated, sess.Snapshot())
	}
}

func (s *Server) handleJoin(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if !decode(w, r, &req) {
			return
		}
		sess, err := store.Join(req.Participant, req.Code)
		if err != nil {
			writeError(w, err)
			return
		}
		s.rec.GameJoined(store.Variant().Info().Name, req.Code, req.Participant)
		broadcast(sess)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

func (s *Server) handleStart(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if !decode(w, r, &req) {
			return
		}
		sess, err := store.Start(req.Participant, req.Code)
		if err != nil {
			writeError(w, err)
			return
		}
		s.rec.Action(store.Variant().Info().Name, req.Code, req.Participant, "start", nil)
		broadcast(sess)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

func (s *Server) handleFinish(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if !decode(w, r, &req) {
			return
		}
		sess, err := store.Finish(req.Participant, req.Code)
		if err != nil {
			writeError(w, err)
			return
		}
		snap := sess.Snapshot()
		s.rec.GameFinished(store.Variant().Info().Name, req.Code, req.Participant, snap.Winner)
		broadcast(sess)
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleState(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := pathInt(r, "code")
		if err != nil {
			writeError(w, err)
			return
		}
		sess, ok := store.Get(code)
		if !ok {
			writeError(w, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code))
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// statusSummary is the compact status view.
type statusSummary struct {
	Code        int         `json:"code"`
	Variant     string      `json:"variant"`
	Status      game.Status `json:"status"`
	Players     []int64     `json:"players"`
	CurrentTurn int         `json:"currentTurn,omitempty"`
	Winner      *int64      `json:"winner,omitempty"`
}

func (s *Server) handleStatus(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := pathInt(r, "code")
		if err != nil {
			writeError(w, err)
			return
		}
		sess, ok := store.Get(code)
		if !ok {
			writeError(w, game.NotFound(game.CodeSessionNotFound, "no session with code %d", code))
			return
		}
		snap := sess.Snapshot()
		writeJSON(w, http.StatusOK, statusSummary{
			Code:        snap.Code,
			Variant:     snap.Variant,
			Status:      snap.Status,
			Players:     snap.Players,
			CurrentTurn: snap.CurrentTurn,
			Winner:      snap.Winner,
		})
	}
}

func (s *Server) handleByParticipant(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, game.Validation(game.CodeInvalidRequest, "invalid participant id %q", r.PathValue("id")))
			return
		}
		sess, ok := store.ByParticipant(id)
		if !ok {
			writeError(w, game.NotFound(game.CodeSessionNotFound, "user %d is not in any session", id))
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

type eventView struct {
	ID     string         `json:"id"`
	UserID int64          `json:"user"`
	Type   string         `json:"type"`
	Action string         `json:"action,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	code, err := pathInt(r, "code")
	if err != nil {
		writeError(w, err)
		return
	}
	if s.events == nil {
		writeJSON(w, http.StatusOK, []eventView{})
		return
	}
	events, err := s.events.Recent(code, 100)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, eventView{ID: e.ID, UserID: e.UserID, Type: e.Type, Action: e.Action, Data: e.Data})
	}
	writeJSON(w, http.StatusOK, out)
}
