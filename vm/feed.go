// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/ledgervm/ledger"
)

const (
	subscriberBuffer = 256
	writeWait        = 10 * time.Second
	pingPeriod       = 30 * time.Second
)

// feed streams committed events to websocket subscribers as JSON. A
// subscriber that falls behind by more than its buffer is disconnected.
type feed struct {
	upgrader websocket.Upgrader

	lock        sync.Mutex
	subscribers map[chan *ledger.Event]struct{}
}

func newFeed() *feed {
	return &feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subscribers: make(map[chan *ledger.Event]struct{}),
	}
}

func (f *feed) publish(ev *ledger.Event) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for sub := range f.subscribers {
		select {
		case sub <- ev:
		default:
			delete(f.subscribers, sub)
			close(sub)
		}
	}
}

func (f *feed) subscribe() chan *ledger.Event {
	f.lock.Lock()
	defer f.lock.Unlock()

	sub := make(chan *ledger.Event, subscriberBuffer)
	f.subscribers[sub] = struct{}{}
	return sub
}

func (f *feed) unsubscribe(sub chan *ledger.Event) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.subscribers[sub]; ok {
		delete(f.subscribers, sub)
		close(sub)
	}
}

func (f *feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// subscribe before the handshake completes so that no event committed
	// after the client connected is missed
	sub := f.subscribe()
	defer f.unsubscribe(sub)

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("failed to upgrade event feed connection", "err", err)
		return
	}
	defer conn.Close()

	// the read loop only notices the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-sub:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription ended"),
				)
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("failed to write event", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (f *feed) close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for sub := range f.subscribers {
		delete(f.subscribers, sub)
		close(sub)
	}
}
