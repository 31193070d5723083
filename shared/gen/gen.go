// Package gen produces floor layouts, room contents and upgrade drafts from
// the session seed hierarchy. Every function is a pure function of its seed
// inputs, so peers that share a session seed generate identical content
// without ever exchanging it.
package gen

import (
	"github.com/feralbyte/nightswarm-mp/shared/seedrand"
)

// Rect is an axis-aligned wall rectangle in room-local pixels.
type Rect struct {
	X, Y, W, H float64
}

// Point is a spawn location in room-local pixels.
type Point struct {
	X, Y float64
}

// RoomSize is the fixed pixel extent of every room.
const (
	RoomWidth  = 960
	RoomHeight = 640
	wallThick  = 32
)

// templates are the authored room shapes a seed selects between. Interior
// obstacle rects are room-local; the outer boundary is added to every room.
var templates = []RoomTemplate{
	{ID: "open"},
	{ID: "pillars", Obstacles: []Rect{
		{X: 288, Y: 192, W: 64, H: 64},
		{X: 608, Y: 192, W: 64, H: 64},
		{X: 288, Y: 384, W: 64, H: 64},
		{X: 608, Y: 384, W: 64, H: 64},
	}},
	{ID: "cross", Obstacles: []Rect{
		{X: 416, Y: 160, W: 128, H: 32},
		{X: 416, Y: 448, W: 128, H: 32},
		{X: 160, Y: 304, W: 32, H: 128},
		{X: 768, Y: 304, W: 32, H: 128},
	}},
	{ID: "corridor", Obstacles: []Rect{
		{X: 0, Y: 224, W: 384, H: 32},
		{X: 576, Y: 384, W: 384, H: 32},
	}},
	{ID: "nest", Obstacles: []Rect{
		{X: 384, Y: 256, W: 192, H: 32},
		{X: 384, Y: 352, W: 32, H: 96},
		{X: 544, Y: 352, W: 32, H: 96},
	}},
}

// RoomTemplate is one authored room shape.
type RoomTemplate struct {
	ID        string
	Obstacles []Rect
}

// Room is the fully generated content of one room.
type Room struct {
	Template    RoomTemplate
	Walls       []Rect // boundary plus template obstacles
	EnemySpawns []Point
	PickupSpawn Point
}

// FloorPlan is the room grid for one floor: a set of occupied grid cells
// produced by a seeded drunkard's walk starting at the origin.
type FloorPlan struct {
	Floor int
	Rooms []GridPos
}

// GridPos addresses one room on the floor grid.
type GridPos struct {
	X, Y int
}

// BuildFloorPlan lays out the rooms of a floor. Deeper floors grow larger.
func BuildFloorPlan(sessionSeed uint32, floor int) FloorPlan {
	rng := seedrand.New(seedrand.FloorSeed(sessionSeed, floor))

	count := 5 + floor*2
	occupied := map[GridPos]bool{{0, 0}: true}
	rooms := []GridPos{{0, 0}}
	cur := GridPos{0, 0}

	dirs := []GridPos{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for len(rooms) < count {
		d := seedrand.Choose(rng, dirs)
		cur = GridPos{cur.X + d.X, cur.Y + d.Y}
		if !occupied[cur] {
			occupied[cur] = true
			rooms = append(rooms, cur)
		}
	}

	return FloorPlan{Floor: floor, Rooms: rooms}
}

// BuildRoom generates the content of one room from its room seed.
func BuildRoom(sessionSeed uint32, floor, roomX, roomY int) Room {
	rng := seedrand.New(seedrand.RoomSeed(sessionSeed, floor, roomX, roomY))

	tpl := seedrand.Choose(rng, templates)

	walls := []Rect{
		{X: 0, Y: 0, W: RoomWidth, H: wallThick},
		{X: 0, Y: RoomHeight - wallThick, W: RoomWidth, H: wallThick},
		{X: 0, Y: 0, W: wallThick, H: RoomHeight},
		{X: RoomWidth - wallThick, Y: 0, W: wallThick, H: RoomHeight},
	}
	walls = append(walls, tpl.Obstacles...)

	spawnCount := rng.Range(3, 7) + floor
	spawns := make([]Point, 0, spawnCount)
	for i := 0; i < spawnCount; i++ {
		spawns = append(spawns, Point{
			X: rng.Float(wallThick*2, RoomWidth-wallThick*2),
			Y: rng.Float(wallThick*2, RoomHeight-wallThick*2),
		})
	}

	return Room{
		Template:    tpl,
		Walls:       walls,
		EnemySpawns: spawns,
		PickupSpawn: Point{
			X: rng.Float(wallThick*2, RoomWidth-wallThick*2),
			Y: rng.Float(wallThick*2, RoomHeight-wallThick*2),
		},
	}
}

// EnemyTypeFor rolls the enemy type for spawn index i of a room. Tougher
// variants show up on deeper floors.
func EnemyTypeFor(sessionSeed uint32, floor, roomX, roomY, i int) string {
	rng := seedrand.New(seedrand.CreateSeed(
		seedrand.RoomSeed(sessionSeed, floor, roomX, roomY), uint32(i)))

	pool := []string{"husk", "husk", "crawler"}
	if floor >= 2 {
		pool = append(pool, "brute")
	}
	if floor >= 4 {
		pool = append(pool, "warden")
	}
	return seedrand.Choose(rng, pool)
}
