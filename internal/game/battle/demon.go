// Package battle runs turn-based fights between two demons whose owners are
// prompted for moves independently, plus a simplified duel variant. The
// engine owns the synchronization; callers provide the prompting transport.
package battle

// Element is a move's damage type.
type Element int

const (
	Physical Element = iota
	Fire
	Ice
	Electric
	Wind
	Psychic
	Nuclear
	Bless
	Curse
)

// Elements lists every element, for building full resistance tables.
var Elements = []Element{Physical, Fire, Ice, Electric, Wind, Psychic, Nuclear, Bless, Curse}

func (e Element) String() string {
	switch e {
	case Physical:
		return "physical"
	case Fire:
		return "fire"
	case Ice:
		return "ice"
	case Electric:
		return "electric"
	case Wind:
		return "wind"
	case Psychic:
		return "psychic"
	case Nuclear:
		return "nuclear"
	case Bless:
		return "bless"
	case Curse:
		return "curse"
	default:
		return "unknown"
	}
}

// Severity scales a move's base damage.
type Severity int

const (
	Miniscule Severity = iota
	Light
	Medium
	Heavy
	Severe
	Colossal
)

// Multiplier returns the damage factor for the severity.
func (s Severity) Multiplier() float64 {
	switch s {
	case Miniscule:
		return 0.5
	case Light:
		return 0.75
	case Medium:
		return 1.0
	case Heavy:
		return 1.5
	case Severe:
		return 3.0
	case Colossal:
		return 5.0
	default:
		return 1.0
	}
}

func (s Severity) String() string {
	switch s {
	case Miniscule:
		return "miniscule"
	case Light:
		return "light"
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	case Severe:
		return "severe"
	case Colossal:
		return "colossal"
	default:
		return "unknown"
	}
}

// Outcome is a defender's response to an element.
type Outcome int

const (
	Normal Outcome = iota
	Resist
	Weak
	Immune
	Reflect
	Absorb
)

func (o Outcome) String() string {
	switch o {
	case Normal:
		return "normal"
	case Resist:
		return "resist"
	case Weak:
		return "weak"
	case Immune:
		return "immune"
	case Reflect:
		return "reflect"
	case Absorb:
		return "absorb"
	default:
		return "unknown"
	}
}

// Stats are a demon's combat attributes.
type Stats struct {
	Strength  int
	Magic     int
	Endurance int
	Agility   int
	Luck      int
}

// Move is a named attack with an element and a severity.
type Move struct {
	Name     string
	Element  Element
	Severity Severity
}

// Demon is one combatant. OwnerID is the external user prompted for its
// moves.
type Demon struct {
	Name        string
	OwnerID     int64
	HP          int
	MaxHP       int
	Stats       Stats
	Moves       []Move
	Resistances map[Element]Outcome
}

// ResistanceTo returns the demon's outcome for an element, Normal when the
// table has no entry.
func (d *Demon) ResistanceTo(e Element) Outcome {
	if d.Resistances == nil {
		return Normal
	}
	return d.Resistances[e]
}

// TakeDamage reduces HP, never below zero.
func (d *Demon) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	d.HP -= n
	if d.HP < 0 {
		d.HP = 0
	}
}

// Heal restores HP, never above MaxHP.
func (d *Demon) Heal(n int) {
	if n <= 0 {
		return
	}
	d.HP += n
	if d.HP > d.MaxHP {
		d.HP = d.MaxHP
	}
}

// Fainted reports whether the demon is out of the fight.
func (d *Demon) Fainted() bool { return d.HP <= 0 }

// MoveNames returns the move names in declaration order, for prompting.
func (d *Demon) MoveNames() []string {
	names := make([]string, len(d.Moves))
	for i, m := range d.Moves {
		names[i] = m.Name
	}
	return names
}
