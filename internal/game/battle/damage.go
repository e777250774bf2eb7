package battle

import "math"

// enduranceFactor scales how much defender endurance blunts raw damage.
const enduranceFactor = 0.334

// Hit is the resolved effect of one move against one defender.
type Hit struct {
	Attacker string
	Defender string
	Move     Move
	Outcome  Outcome
	// Damage is what the defender takes. Zero for Immune, Reflect, Absorb.
	Damage int
	// Reflected is what bounces back onto the attacker under Reflect.
	Reflected int
	// Healed is what the defender regains under Absorb.
	Healed int
}

// ResolveHit computes the effect of attacker using move against defender.
// Physical moves scale off Strength, every other element off Magic. The raw
// figure is severity-scaled, then shaped by the defender's resistance. Any
// ordinary hit deals at least 1 damage.
func ResolveHit(attacker, defender *Demon, move Move) Hit {
	attack := attacker.Stats.Magic
	if move.Element == Physical {
		attack = attacker.Stats.Strength
	}
	raw := float64(attack) - float64(defender.Stats.Endurance)*enduranceFactor
	if raw < 0 {
		raw = 0
	}
	raw *= move.Severity.Multiplier()

	hit := Hit{
		Attacker: attacker.Name,
		Defender: defender.Name,
		Move:     move,
		Outcome:  defender.ResistanceTo(move.Element),
	}
	switch hit.Outcome {
	case Immune:
		// Nothing lands.
	case Reflect:
		hit.Reflected = int(math.Floor(raw * 0.5))
	case Absorb:
		hit.Healed = int(math.Floor(raw * 0.5))
	case Resist:
		hit.Damage = atLeastOne(math.Floor(raw * 0.5))
	case Weak:
		hit.Damage = atLeastOne(math.Floor(raw * 2))
	default:
		hit.Damage = atLeastOne(math.Floor(raw))
	}
	return hit
}

// Apply lands the hit on the defender and any reflected portion on the
// attacker.
func (h Hit) Apply(attacker, defender *Demon) {
	defender.TakeDamage(h.Damage)
	defender.Heal(h.Healed)
	attacker.TakeDamage(h.Reflected)
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
