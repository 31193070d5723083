package seedrand

// CreateSeed mixes any number of integer parts into a single sub-seed. The
// mix is order-sensitive: CreateSeed(a, b) != CreateSeed(b, a) in general.
// All arithmetic is 32-bit so the result matches on every platform.
func CreateSeed(parts ...uint32) uint32 {
	seed := uint32(0x9E3779B9)
	for _, p := range parts {
		seed ^= p * 2654435761
		seed = (seed ^ (seed >> 16)) * 0x85EBCA6B
		seed = (seed ^ (seed >> 13)) * 0xC2B2AE35
		seed ^= seed >> 16
	}
	return seed
}

// SeedFromString hashes a string into a seed (FNV-1a over the raw bytes).
func SeedFromString(s string) uint32 {
	seed := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		seed ^= uint32(s[i])
		seed *= 16777619
	}
	return seed
}

// FloorSeed derives the generation seed for one floor of a session.
func FloorSeed(sessionSeed uint32, floor int) uint32 {
	return CreateSeed(sessionSeed, uint32(floor))
}

// RoomSeed derives the generation seed for one room of a floor. Room
// coordinates are offset so negative grid positions stay distinct.
func RoomSeed(sessionSeed uint32, floor, roomX, roomY int) uint32 {
	return CreateSeed(sessionSeed, uint32(floor), uint32(roomX+0x8000), uint32(roomY+0x8000))
}

// UpgradeSeed derives the seed for one player's upgrade draft at a given
// level, so every peer rolls the same draft without exchanging it.
func UpgradeSeed(sessionSeed uint32, playerIndex, playerLevel int) uint32 {
	return CreateSeed(sessionSeed, uint32(playerIndex), uint32(playerLevel))
}
