package battle

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/character"
)

// Reward is what a resolved battle granted or took from the player.
type Reward struct {
	Experience int
	// Gold is negative when gold was lost.
	Gold      int
	Respawned bool
}

// RewardPolicy applies the side effects of a won or lost battle.
type RewardPolicy interface {
	Victory(player character.Combatant, enemies []*character.NPC) Reward
	Defeat(player character.Combatant) Reward
}

// StandardRewards grants the defeated enemies' experience and gold on
// victory. On defeat the player respawns at full resources and loses
// DefeatGoldPenalty of their gold, rounded down.
type StandardRewards struct {
	DefeatGoldPenalty float64
}

// Victory implements RewardPolicy.
func (s StandardRewards) Victory(player character.Combatant, enemies []*character.NPC) Reward {
	var r Reward
	for _, e := range enemies {
		r.Experience += e.Experience
		r.Gold += e.Gold
	}
	if p, ok := player.(*character.Player); ok {
		p.Update(func(st *character.PlayerState) {
			st.Experience += r.Experience
			st.Gold += r.Gold
		})
	}
	return r
}

// Defeat implements RewardPolicy.
//
// Postcondition: every pool of player is full.
func (s StandardRewards) Defeat(player character.Combatant) Reward {
	player.Attributes().Restore()
	r := Reward{Respawned: true}
	if p, ok := player.(*character.Player); ok {
		p.Update(func(st *character.PlayerState) {
			loss := int(math.Floor(float64(st.Gold) * s.DefeatGoldPenalty))
			loss = min(max(loss, 0), st.Gold)
			st.Gold -= loss
			r.Gold = -loss
		})
	}
	return r
}
