package server

import (
	"encoding/json"
	"log"
	"net/http"

	"nhooyr.io/websocket"

	"gameroom/internal/session"
)

// handleWatch serves a read-only websocket feed of session snapshots.
// All mutations arrive over HTTP; watchers only observe. A watcher that
// cannot keep up misses intermediate states, never blocks the game.
func (s *Server) handleWatch(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := pathInt(r, "code")
		if err != nil {
			writeError(w, err)
			return
		}
		sess, ok := store.Get(code)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // allow any origin for dev
		})
		if err != nil {
			log.Printf("websocket accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()

		ch := make(chan []byte, 16)
		sess.Watch(ch)
		defer sess.Unwatch(ch)

		// current state first, updates after
		initial, err := json.Marshal(sess.Snapshot())
		if err != nil {
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, initial); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
					return
				}
			}
		}
	}
}
