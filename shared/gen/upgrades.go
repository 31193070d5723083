package gen

import "github.com/feralbyte/nightswarm-mp/shared/seedrand"

// upgradePool is the full set of draftable upgrades. Order matters: the draft
// shuffle walks this slice, so reordering it changes every draft.
var upgradePool = []string{
	"damage_up",
	"move_speed",
	"max_hp",
	"pickup_radius",
	"attack_speed",
	"projectile_count",
	"pierce",
	"crit_chance",
	"regen",
	"xp_gain",
}

// DraftSize is how many choices an upgrade draft offers.
const DraftSize = 3

// UpgradeDraft rolls the upgrade choices offered to one player on reaching a
// level. Peers roll the same draft from the same session seed, so the draft
// UI never has to be transmitted.
func UpgradeDraft(sessionSeed uint32, playerIndex, playerLevel int) []string {
	rng := seedrand.New(seedrand.UpgradeSeed(sessionSeed, playerIndex, playerLevel))
	shuffled := seedrand.Shuffle(rng, upgradePool)
	return shuffled[:DraftSize]
}
