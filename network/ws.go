package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/sirupsen/logrus"

	"github.com/feralbyte/nightswarm-mp/shared/protocol"
)

// The necs router is process-global, so a process runs at most one WebSocket
// transport at a time (host or client). Close resets the router. Local and
// test sessions use the loopback transport instead, which has no such limit.

// WsHostTransport is the host side of the wire: it accepts client
// connections and fans typed messages into per-kind handlers. Router
// callbacks run on necs goroutines; all shared fields are protected by mu.
type WsHostTransport struct {
	mu sync.RWMutex

	peers    map[PeerID]*router.NetworkClient
	handlers map[protocol.Kind]Handler
	connCb   func(ConnEvent)

	transport *transports.WsServerTransport
	log       *logrus.Entry
}

// NewWsHostTransport builds the host transport and registers its router
// callbacks. Call Listen to start accepting connections.
func NewWsHostTransport(log *logrus.Entry) *WsHostTransport {
	t := &WsHostTransport{
		peers:    make(map[PeerID]*router.NetworkClient),
		handlers: make(map[protocol.Kind]Handler),
		log:      log,
	}

	router.OnConnect(func(client *router.NetworkClient) {
		id := PeerID(client.Id())
		t.mu.Lock()
		t.peers[id] = client
		cb := t.connCb
		t.mu.Unlock()

		t.log.WithField("peer", id).Info("peer connected")
		if cb != nil {
			cb(ConnEvent{Kind: PeerJoined, Peer: id})
		}
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		id := PeerID(client.Id())
		t.mu.Lock()
		delete(t.peers, id)
		cb := t.connCb
		t.mu.Unlock()

		t.log.WithField("peer", id).WithError(err).Info("peer disconnected")
		if cb != nil {
			cb(ConnEvent{Kind: PeerLeft, Peer: id})
		}
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		t.log.WithError(err).Warn("transport error")
	})

	// One router registration per kind the host can receive. A kind the
	// host never handles is simply not registered for this role.
	registerHostKinds(t)

	return t
}

// Listen starts the WebSocket server on the given port. Blocks until the
// listener stops.
func (t *WsHostTransport) Listen(port uint) error {
	t.mu.Lock()
	t.transport = transports.NewWsServerTransport(port, "", nil)
	tr := t.transport
	t.mu.Unlock()
	return tr.Start()
}

func (t *WsHostTransport) Broadcast(msg any) error {
	t.mu.RLock()
	peers := make([]*router.NetworkClient, 0, len(t.peers))
	for _, c := range t.peers {
		peers = append(peers, c)
	}
	t.mu.RUnlock()

	for _, c := range peers {
		// Best-effort: a failed send to one peer must not starve the rest.
		if err := c.SendMessage(msg); err != nil {
			t.log.WithError(err).Debug("broadcast send failed")
		}
	}
	return nil
}

func (t *WsHostTransport) SendToHost(any) error { return ErrClientOnly }

func (t *WsHostTransport) SendToPeer(peer PeerID, msg any) error {
	t.mu.RLock()
	c, ok := t.peers[peer]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, peer)
	}
	return c.SendMessage(msg)
}

func (t *WsHostTransport) OnMessage(kind protocol.Kind, h Handler) {
	t.mu.Lock()
	t.handlers[kind] = h
	t.mu.Unlock()
}

func (t *WsHostTransport) OnConnectionChange(fn func(ConnEvent)) {
	t.mu.Lock()
	t.connCb = fn
	t.mu.Unlock()
}

func (t *WsHostTransport) Close() error {
	router.ResetRouter()
	return nil
}

func (t *WsHostTransport) dispatch(from PeerID, msg any) {
	kind, ok := protocol.KindOf(msg)
	if !ok {
		return
	}
	t.mu.RLock()
	h := t.handlers[kind]
	t.mu.RUnlock()
	if h != nil {
		h(from, msg)
	}
}

// WsClientTransport is the client side of the wire: one connection to the
// host, typed messages in both directions.
type WsClientTransport struct {
	mu sync.RWMutex

	conn     *websocket.Conn
	handlers map[protocol.Kind]Handler
	connCb   func(ConnEvent)
	closed   bool

	log *logrus.Entry
}

// NewWsClientTransport builds the client transport and registers its router
// callbacks. Call Connect to dial the host.
func NewWsClientTransport(log *logrus.Entry) *WsClientTransport {
	t := &WsClientTransport{
		handlers: make(map[protocol.Kind]Handler),
		log:      log,
	}

	router.OnConnect(func(_ *router.NetworkClient) {
		t.mu.RLock()
		cb := t.connCb
		t.mu.RUnlock()

		t.log.Info("connected to host")
		if cb != nil {
			cb(ConnEvent{Kind: PeerJoined, Peer: HostPeerID})
		}
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		t.mu.Lock()
		t.conn = nil
		closed := t.closed
		cb := t.connCb
		t.mu.Unlock()

		if closed {
			return
		}
		t.log.WithError(err).Warn("lost connection to host")
		if cb != nil {
			cb(ConnEvent{Kind: HostLost, Peer: HostPeerID})
		}
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		t.log.WithError(err).Warn("transport error")
	})

	registerClientKinds(t)

	return t
}

// Connect dials the host in a background goroutine, as the connection
// lifetime is tied to the transport goroutine.
func (t *WsClientTransport) Connect(address string) {
	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			t.mu.Lock()
			t.conn = conn
			t.mu.Unlock()
		})
		if err != nil {
			t.mu.RLock()
			cb := t.connCb
			closed := t.closed
			t.mu.RUnlock()

			if closed {
				return
			}
			t.log.WithError(err).Warn("connection failed")
			if cb != nil {
				cb(ConnEvent{Kind: HostLost, Peer: HostPeerID})
			}
		}
	}()
}

func (t *WsClientTransport) Broadcast(any) error { return ErrHostOnly }

func (t *WsClientTransport) SendToHost(msg any) error {
	t.mu.RLock()
	conn := t.conn
	t.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (t *WsClientTransport) SendToPeer(PeerID, any) error { return ErrHostOnly }

func (t *WsClientTransport) OnMessage(kind protocol.Kind, h Handler) {
	t.mu.Lock()
	t.handlers[kind] = h
	t.mu.Unlock()
}

func (t *WsClientTransport) OnConnectionChange(fn func(ConnEvent)) {
	t.mu.Lock()
	t.connCb = fn
	t.mu.Unlock()
}

func (t *WsClientTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.closed = true
	t.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}
	router.ResetRouter()
	return nil
}

func (t *WsClientTransport) dispatch(msg any) {
	kind, ok := protocol.KindOf(msg)
	if !ok {
		return
	}
	t.mu.RLock()
	h := t.handlers[kind]
	t.mu.RUnlock()
	if h != nil {
		h(HostPeerID, msg)
	}
}
