// Package network provides the message transport the sync core runs on. The
// core depends only on the Transport interface; the WebSocket implementation
// and the in-memory loopback are interchangeable behind it.
package network

import (
	"errors"

	"github.com/feralbyte/nightswarm-mp/shared/protocol"
)

// PeerID identifies one connected peer for the lifetime of its connection.
type PeerID string

// HostPeerID is the well-known ID of the host role.
const HostPeerID PeerID = "host"

// ConnEventKind classifies a connection change.
type ConnEventKind int

const (
	PeerJoined ConnEventKind = iota
	PeerLeft
	HostLost
)

func (k ConnEventKind) String() string {
	switch k {
	case PeerJoined:
		return "peer_joined"
	case PeerLeft:
		return "peer_left"
	case HostLost:
		return "host_lost"
	}
	return "unknown"
}

// ConnEvent reports a peer joining, a peer dropping, or the host going away.
type ConnEvent struct {
	Kind ConnEventKind
	Peer PeerID
}

// Handler receives one decoded wire message. msg is always the value form of
// the kind's struct (never a pointer), carrying plain data only.
type Handler func(from PeerID, msg any)

var (
	// ErrHostOnly is returned when a client calls a host-side send.
	ErrHostOnly = errors.New("network: operation requires the host role")

	// ErrClientOnly is returned when the host calls a client-side send.
	ErrClientOnly = errors.New("network: operation requires the client role")

	// ErrNotConnected is returned when sending without a live connection.
	ErrNotConnected = errors.New("network: not connected")

	// ErrUnknownPeer is returned by SendToPeer for an ID with no connection.
	ErrUnknownPeer = errors.New("network: unknown peer")
)

// Transport is the capability contract the sync core consumes. Sends are
// best-effort and never block on delivery; messages of the same kind from the
// same sender arrive in the order sent, and nothing more is guaranteed.
type Transport interface {
	// Broadcast sends to every connected peer. Host role only.
	Broadcast(msg any) error

	// SendToHost sends to the host. Client role only.
	SendToHost(msg any) error

	// SendToPeer sends to one specific peer. Host role only.
	SendToPeer(peer PeerID, msg any) error

	// OnMessage registers the handler for one message kind. Registering
	// the same kind again replaces the previous handler, so repeated
	// registration can never cause duplicate handling.
	OnMessage(kind protocol.Kind, h Handler)

	// OnConnectionChange registers the connection event callback.
	// Re-registering replaces the previous callback.
	OnConnectionChange(fn func(ConnEvent))

	// Close tears the transport down. Safe to call more than once.
	Close() error
}
