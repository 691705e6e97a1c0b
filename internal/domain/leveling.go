package domain

import "math"

// MaxRodLevel caps the fishing-rod leveling curve. XP required beyond the cap
// is treated as unreachable.
const MaxRodLevel = 50

// RodXPForLevel returns the total experience required to reach the given
// level: 50*L^2 + 150*L. Level 0 requires no XP; levels past MaxRodLevel are
// unreachable.
func RodXPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	if level > MaxRodLevel {
		return math.MaxInt
	}
	return 50*level*level + 150*level
}

// RodLevelForXP returns the level reached with the given total experience.
// The result is deterministic and may jump several levels for a single large
// XP award.
func RodLevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	level := 0
	for level < MaxRodLevel && xp >= RodXPForLevel(level+1) {
		level++
	}
	return level
}
