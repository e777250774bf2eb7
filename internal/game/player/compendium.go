package player

// DefaultCompendiumSize is the compendium capacity in bytes; each byte
// tracks eight enemy IDs.
const DefaultCompendiumSize = 32

// Compendium is a fixed-length bit vector recording which enemies a player
// has captured, indexed by enemy ID.
type Compendium []byte

// NewCompendium creates an empty compendium of the given byte length.
//
// Precondition: size must be >= 1.
func NewCompendium(size int) Compendium {
	return make(Compendium, size)
}

// CompendiumFromBytes restores a compendium from persisted bytes, padding
// short payloads to DefaultCompendiumSize so older rows stay readable.
func CompendiumFromBytes(data []byte) Compendium {
	if len(data) >= DefaultCompendiumSize {
		c := make(Compendium, len(data))
		copy(c, data)
		return c
	}
	c := NewCompendium(DefaultCompendiumSize)
	copy(c, data)
	return c
}

// Record marks the enemy with the given ID as captured. IDs beyond the
// compendium's capacity are ignored.
//
// Postcondition: Captured(enemyID) returns true for in-range IDs.
func (c Compendium) Record(enemyID int) {
	if enemyID < 0 || enemyID >= len(c)*8 {
		return
	}
	c[enemyID/8] |= 1 << (enemyID % 8)
}

// Captured reports whether the enemy with the given ID has been captured.
func (c Compendium) Captured(enemyID int) bool {
	if enemyID < 0 || enemyID >= len(c)*8 {
		return false
	}
	return c[enemyID/8]&(1<<(enemyID%8)) != 0
}

// Count returns the number of captured enemies.
func (c Compendium) Count() int {
	total := 0
	for _, b := range c {
		for b != 0 {
			total += int(b & 1)
			b >>= 1
		}
	}
	return total
}

// Bytes returns the raw bit vector for persistence.
func (c Compendium) Bytes() []byte { return c }
