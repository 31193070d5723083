package core

import (
	"github.com/feralbyte/nightswarm-mp/shared/gen"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// xpPerLevel is how much shared experience one level takes. Levels derive
// from total XP, so peers agree on them without extra messages.
const xpPerLevel = 25

const regenPerStack = 1.5

// stepProgression levels up players whose shared XP crossed a threshold and
// applies the first choice of the upgrade draft for each new level. Drafts
// derive from the session seed, so a replay with the same seed hands out the
// same upgrades.
func (s *Server) stepProgression() {
	seed := s.sess.SessionSeed()
	s.sess.EachPlayer(func(slot int, p *sim.PlayerState) {
		target := 1 + int(p.XP)/xpPerLevel
		for p.Level < target {
			p.Level++
			pick := gen.UpgradeDraft(seed, slot, p.Level)[0]
			s.applyUpgrade(p, pick)
			s.log.WithField("slot", slot).
				WithField("level", p.Level).
				WithField("upgrade", pick).
				Info("level up")
		}
	})
}

// applyUpgrade stacks an upgrade on a player and applies any immediate stat
// effect. Upgrades without a base stat (pierce, crit_chance, regen,
// projectile_count, xp_gain) are read from the stack counts where they act.
func (s *Server) applyUpgrade(p *sim.PlayerState, id string) {
	stacked := false
	for i := range p.Upgrades {
		if p.Upgrades[i].ID == id {
			p.Upgrades[i].Stacks++
			stacked = true
			break
		}
	}
	if !stacked {
		p.Upgrades = append(p.Upgrades, sim.UpgradeState{ID: id, Stacks: 1})
	}

	switch id {
	case "damage_up":
		p.Damage += 2
	case "move_speed":
		p.MoveSpeed += 15
	case "max_hp":
		p.MaxHP += 10
		p.HP += 10
	case "pickup_radius":
		p.PickupRadius += 8
	case "attack_speed":
		for i := range p.Weapons {
			p.Weapons[i].Level++
		}
	}
}

func upgradeStacks(p *sim.PlayerState, id string) int {
	for _, u := range p.Upgrades {
		if u.ID == id {
			return u.Stacks
		}
	}
	return 0
}

// partyXPBonus sums every player's xp_gain stacks. The XP pool is shared, so
// one player's pick boosts the whole party.
func (s *Server) partyXPBonus() float64 {
	stacks := 0
	s.sess.EachPlayer(func(_ int, p *sim.PlayerState) {
		stacks += upgradeStacks(p, "xp_gain")
	})
	return 1 + 0.1*float64(stacks)
}
