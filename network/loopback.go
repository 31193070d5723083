package network

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/feralbyte/nightswarm-mp/shared/protocol"
)

// LoopbackNet wires a host transport and any number of client transports
// together in memory. Every message still crosses a real msgpack round-trip,
// so anything that would not survive the wire does not survive loopback
// either. Delivery is synchronous and in sender order. Used for local
// (non-networked) play and throughout the sync tests.
type LoopbackNet struct {
	mu      sync.Mutex
	host    *loopbackPeer
	clients map[PeerID]*loopbackPeer
}

func NewLoopbackNet() *LoopbackNet {
	return &LoopbackNet{clients: make(map[PeerID]*loopbackPeer)}
}

// Host creates the host-side transport. Call once.
func (n *LoopbackNet) Host() Transport {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.host = &loopbackPeer{net: n, id: HostPeerID, isHost: true,
		handlers: make(map[protocol.Kind]Handler)}
	return n.host
}

// Connect creates a client-side transport and announces it to the host.
func (n *LoopbackNet) Connect(id PeerID) Transport {
	n.mu.Lock()
	peer := &loopbackPeer{net: n, id: id,
		handlers: make(map[protocol.Kind]Handler)}
	n.clients[id] = peer
	host := n.host
	n.mu.Unlock()

	if host != nil {
		host.connectionChange(ConnEvent{Kind: PeerJoined, Peer: id})
	}
	return peer
}

// Drop simulates an abrupt client disconnect: the host sees PeerLeft, the
// dropped client sees nothing.
func (n *LoopbackNet) Drop(id PeerID) {
	n.mu.Lock()
	peer := n.clients[id]
	delete(n.clients, id)
	host := n.host
	n.mu.Unlock()

	if peer != nil {
		peer.setClosed()
	}
	if host != nil {
		host.connectionChange(ConnEvent{Kind: PeerLeft, Peer: id})
	}
}

// DropHost simulates the host going away: every client sees HostLost.
func (n *LoopbackNet) DropHost() {
	n.mu.Lock()
	host := n.host
	n.host = nil
	clients := make([]*loopbackPeer, 0, len(n.clients))
	for _, c := range n.clients {
		clients = append(clients, c)
	}
	n.mu.Unlock()

	if host != nil {
		host.setClosed()
	}
	for _, c := range clients {
		c.connectionChange(ConnEvent{Kind: HostLost, Peer: HostPeerID})
	}
}

type loopbackPeer struct {
	mu       sync.Mutex
	net      *LoopbackNet
	id       PeerID
	isHost   bool
	closed   bool
	handlers map[protocol.Kind]Handler
	connCb   func(ConnEvent)
}

func (p *loopbackPeer) Broadcast(msg any) error {
	if !p.isHost {
		return ErrHostOnly
	}
	p.net.mu.Lock()
	targets := make([]*loopbackPeer, 0, len(p.net.clients))
	for _, c := range p.net.clients {
		targets = append(targets, c)
	}
	p.net.mu.Unlock()

	for _, c := range targets {
		if err := c.deliver(p.id, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *loopbackPeer) SendToHost(msg any) error {
	if p.isHost {
		return ErrClientOnly
	}
	p.net.mu.Lock()
	host := p.net.host
	p.net.mu.Unlock()
	if host == nil {
		return ErrNotConnected
	}
	return host.deliver(p.id, msg)
}

func (p *loopbackPeer) SendToPeer(peer PeerID, msg any) error {
	if !p.isHost {
		return ErrHostOnly
	}
	p.net.mu.Lock()
	target, ok := p.net.clients[peer]
	p.net.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, peer)
	}
	return target.deliver(p.id, msg)
}

func (p *loopbackPeer) OnMessage(kind protocol.Kind, h Handler) {
	p.mu.Lock()
	p.handlers[kind] = h
	p.mu.Unlock()
}

func (p *loopbackPeer) OnConnectionChange(fn func(ConnEvent)) {
	p.mu.Lock()
	p.connCb = fn
	closed := p.closed
	p.mu.Unlock()

	// A client transport is already connected by the time Connect returns,
	// so deliver the connected event the wire transport would have fired
	// during its dial.
	if p.isHost || closed {
		return
	}
	p.net.mu.Lock()
	host := p.net.host
	p.net.mu.Unlock()
	if host != nil {
		fn(ConnEvent{Kind: PeerJoined, Peer: HostPeerID})
	}
}

func (p *loopbackPeer) Close() error {
	if p.isHost {
		p.net.DropHost()
	} else {
		p.net.Drop(p.id)
	}
	return nil
}

func (p *loopbackPeer) setClosed() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *loopbackPeer) connectionChange(ev ConnEvent) {
	p.mu.Lock()
	cb := p.connCb
	closed := p.closed
	p.mu.Unlock()
	if cb != nil && !closed {
		cb(ev)
	}
}

// deliver routes msg through a full encode/decode cycle and invokes the
// registered handler, if any. Unhandled kinds are dropped silently, matching
// the wire transport.
func (p *loopbackPeer) deliver(from PeerID, msg any) error {
	kind, ok := protocol.KindOf(msg)
	if !ok {
		return fmt.Errorf("loopback: %T is not a wire message", msg)
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	out := protocol.New(kind)
	if err := protocol.Decode(data, out); err != nil {
		return err
	}

	p.mu.Lock()
	h := p.handlers[kind]
	closed := p.closed
	p.mu.Unlock()

	if h == nil || closed {
		return nil
	}
	h(from, reflect.ValueOf(out).Elem().Interface())
	return nil
}
