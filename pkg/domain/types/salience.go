package types

import (
	"fmt"
	"strings"
)

// SalienceTier is a coarse importance class for a memory write. Each tier maps
// to a fixed salience value sent to the memory engine.
type SalienceTier string

const (
	SalienceHigh   SalienceTier = "high"
	SalienceMedium SalienceTier = "medium"
	SalienceLow    SalienceTier = "low"
)

// AllSalienceTiers returns all tiers from most to least important
func AllSalienceTiers() []SalienceTier {
	return []SalienceTier{
		SalienceHigh,
		SalienceMedium,
		SalienceLow,
	}
}

// IsValid checks if the tier is valid
func (t SalienceTier) IsValid() bool {
	switch t {
	case SalienceHigh,
		SalienceMedium,
		SalienceLow:
		return true
	default:
		return false
	}
}

// Value returns the salience weight in [0,1] for the tier
func (t SalienceTier) Value() float64 {
	switch t {
	case SalienceHigh:
		return 0.9
	case SalienceMedium:
		return 0.7
	default:
		return 0.3
	}
}

// String returns the string representation of the tier
func (t SalienceTier) String() string {
	return string(t)
}

// ParseSalienceTier parses a case-insensitive tier name
func ParseSalienceTier(s string) (SalienceTier, error) {
	tier := SalienceTier(strings.ToLower(strings.TrimSpace(s)))
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid salience tier: %s", s)
	}
	return tier, nil
}

// Sector is the cognitive category hint attached to a memory. The memory
// engine does its own classification; this is advisory only.
type Sector string

const (
	SectorSemantic   Sector = "semantic"
	SectorEpisodic   Sector = "episodic"
	SectorProcedural Sector = "procedural"
	SectorEmotional  Sector = "emotional"
	SectorReflective Sector = "reflective"
)

// String returns the string representation of the sector
func (s Sector) String() string {
	return string(s)
}
