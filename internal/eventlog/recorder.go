package eventlog

import (
	"log"
	"sync"
	"time"
)

// Recorder is the fire-and-forget front of the event log. Enqueueing
// never blocks: events are dropped when the buffer is full, and write
// errors are logged and swallowed.
type Recorder struct {
	store *Store
	ch    chan Event
	wg    sync.WaitGroup
}

// NewRecorder starts the writer goroutine. A nil store makes every
// record a no-op, which keeps tests and the sink-less deployments cheap.
func NewRecorder(store *Store, buffer int) *Recorder {
	r := &Recorder{store: store, ch: make(chan Event, buffer)}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for e := range r.ch {
		if r.store == nil {
			continue
		}
		if err := r.store.Insert(e); err != nil {
			log.Printf("eventlog: insert %s for game %d: %v", e.Type, e.GameID, err)
		}
	}
}

// Close drains pending events and stops the writer.
func (r *Recorder) Close() {
	close(r.ch)
	r.wg.Wait()
}

func (r *Recorder) record(e Event) {
	e.ID = NewID()
	e.CreatedAt = time.Now()
	select {
	case r.ch <- e:
	default:
		// sink is behind, drop rather than stall a request
	}
}

// GameCreated records a session creation.
func (r *Recorder) GameCreated(variant string, code int, host int64) {
	r.record(Event{GameID: code, Variant: variant, UserID: host, Type: TypeCreated})
}

// GameJoined records a participant joining.
func (r *Recorder) GameJoined(variant string, code int, user int64) {
	r.record(Event{GameID: code, Variant: variant, UserID: user, Type: TypeJoined})
}

// Action records a turn action with its variant-specific details.
func (r *Recorder) Action(variant string, code int, user int64, action string, data map[string]any) {
	r.record(Event{GameID: code, Variant: variant, UserID: user, Type: TypeAction, Action: action, Data: data})
}

// GameFinished records a terminal transition.
func (r *Recorder) GameFinished(variant string, code int, user int64, winner *int64) {
	data := map[string]any{}
	if winner != nil {
		data["winner"] = *winner
	}
	r.record(Event{GameID: code, Variant: variant, UserID: user, Type: TypeFinished, Data: data})
}
