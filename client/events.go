// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/vm"
)

// EventStream receives committed events from a node as they are accepted.
type EventStream struct {
	conn *websocket.Conn
}

// SubscribeEvents opens an event stream against the VM API rooted at [uri].
func SubscribeEvents(ctx context.Context, uri string) (*EventStream, error) {
	wsURI := strings.TrimSuffix(uri, "/") + vm.EventsEndpoint
	switch {
	case strings.HasPrefix(wsURI, "https://"):
		wsURI = "wss://" + strings.TrimPrefix(wsURI, "https://")
	case strings.HasPrefix(wsURI, "http://"):
		wsURI = "ws://" + strings.TrimPrefix(wsURI, "http://")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURI, nil)
	if err != nil {
		return nil, err
	}
	return &EventStream{conn: conn}, nil
}

// Next blocks until the next event arrives. It returns an error once the node
// closes the stream.
func (s *EventStream) Next() (*ledger.Event, error) {
	ev := &ledger.Event{}
	if err := s.conn.ReadJSON(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventStream) Close() error {
	_ = s.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	return s.conn.Close()
}
