package network

import (
	"github.com/leap-fish/necs/router"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
)

// Per-role wire registration. Each role registers exactly the kinds it can
// receive; an unregistered kind is dropped by necs before it reaches us.

func onHost[T any](t *WsHostTransport) {
	router.On(func(c *router.NetworkClient, msg T) {
		t.dispatch(PeerID(c.Id()), msg)
	})
}

func registerHostKinds(t *WsHostTransport) {
	onHost[messages.JoinRequest](t)
	onHost[messages.CharacterSelect](t)
	onHost[messages.ReadyState](t)
	onHost[messages.PlayerInput](t)
	onHost[messages.PauseRequest](t)
	onHost[messages.PlayerDeath](t)
	onHost[messages.ResyncRequest](t)
}

func onClient[T any](t *WsClientTransport) {
	router.On(func(_ *router.NetworkClient, msg T) {
		t.dispatch(msg)
	})
}

func registerClientKinds(t *WsClientTransport) {
	onClient[messages.JoinAccepted](t)
	onClient[messages.JoinRejected](t)
	onClient[messages.SlotTable](t)
	onClient[messages.PeerDisconnected](t)
	onClient[messages.GameSeed](t)
	onClient[messages.GameSnapshot](t)
	onClient[messages.SpawnEntity](t)
	onClient[messages.SpawnProjectile](t)
	onClient[messages.DamageDealt](t)
	onClient[messages.EntityDestroyed](t)
	onClient[messages.PauseState](t)
	onClient[messages.PlayerDeath](t)
	onClient[messages.PlayersRevived](t)
	onClient[messages.XPGain](t)
}
