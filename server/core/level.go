package core

import (
	"github.com/solarlune/resolv"

	"github.com/feralbyte/nightswarm-mp/shared/gen"
)

// Collision tags.
const (
	tagWall   = "wall"
	tagPlayer = "player"
	tagEnemy  = "enemy"
)

// Level holds the collision space and spawn data for the current room. The
// room itself is derived entirely from the session seed, so every peer that
// generates the same room coordinates sees identical geometry.
type Level struct {
	Space *resolv.Space
	Room  gen.Room
	Floor int
	Pos   gen.GridPos
}

// NewLevel builds a resolv space from a generated room's wall rectangles.
func NewLevel(sessionSeed uint32, floor int, pos gen.GridPos) *Level {
	room := gen.BuildRoom(sessionSeed, floor, pos.X, pos.Y)
	space := resolv.NewSpace(gen.RoomWidth, gen.RoomHeight, 16, 16)

	for _, r := range room.Walls {
		obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tagWall)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		space.Add(obj)
	}

	return &Level{
		Space: space,
		Room:  room,
		Floor: floor,
		Pos:   pos,
	}
}

// Center returns the room midpoint, where players are placed on room entry.
func (l *Level) Center() (float64, float64) {
	return gen.RoomWidth / 2, gen.RoomHeight / 2
}
