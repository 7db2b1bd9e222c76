package types

import "fmt"

// Stage identifies which webhook of a call lifecycle a request belongs to
type Stage string

const (
	StageInitiation Stage = "initiation"
	StageSearch     Stage = "search"
	StageCompletion Stage = "completion"
)

// AllStages returns all call stages in lifecycle order
func AllStages() []Stage {
	return []Stage{
		StageInitiation,
		StageSearch,
		StageCompletion,
	}
}

// IsValid checks if the stage is valid
func (s Stage) IsValid() bool {
	switch s {
	case StageInitiation,
		StageSearch,
		StageCompletion:
		return true
	default:
		return false
	}
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// ParseStage parses a string into a Stage
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid call stage: %s", s)
	}
	return stage, nil
}
