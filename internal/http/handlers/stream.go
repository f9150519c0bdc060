package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shrusti-bit/project-shelter/internal/event"
)

const (
	streamWriteWait = 10 * time.Second
	streamPingEvery = 30 * time.Second
)

// streamEvent is the envelope pushed to browsers. Clients refetch the item or
// donation list on receipt; the envelope carries no entity body.
type streamEvent struct {
	Topic  string    `json:"topic"`
	Type   string    `json:"type"`
	ItemID string    `json:"itemId,omitempty"`
	At     time.Time `json:"at"`
}

func (a *App) upgrader() websocket.Upgrader {
	allowed := map[string]bool{}
	for _, o := range a.Cfg.AllowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		},
	}
}

// Stream upgrades to a websocket and forwards committed item and donation
// mutations until the client disconnects.
func (a *App) Stream(w http.ResponseWriter, r *http.Request) {
	up := a.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	items := a.Bus.Subscribe(event.TopicItems)
	defer items.Cancel()
	donations := a.Bus.Subscribe(event.TopicDonations)
	defer donations.Cancel()

	// Reader only consumes control frames and signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	write := func(ev event.Event) error {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		return conn.WriteJSON(streamEvent{Topic: string(ev.Topic), Type: ev.Type, ItemID: ev.ItemID, At: at})
	}

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-items.C:
			if !ok {
				return
			}
			if err := write(ev); err != nil {
				return
			}
		case ev, ok := <-donations.C:
			if !ok {
				return
			}
			if err := write(ev); err != nil {
				return
			}
		}
	}
}
