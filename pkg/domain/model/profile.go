package model

// MemoryProfile is a read-only view of what the memory engine knows about a
// caller, assembled per call-start request
type MemoryProfile struct {
	Caller          CallerID
	DisplayName     string
	Summary         string
	LastCallSummary string
	MemoryCount     int
	ActivityLevel   string
	// NextGreeting is a first message prepared for this caller by the agent
	// that handled the previous call
	NextGreeting string
}

// NewNeutralProfile returns the profile used for unknown callers and whenever
// the memory engine cannot be reached
func NewNeutralProfile(caller CallerID) *MemoryProfile {
	return &MemoryProfile{
		Caller:        caller,
		ActivityLevel: "none",
	}
}

// IsNew reports whether nothing personal is known about the caller
func (p *MemoryProfile) IsNew() bool {
	return p.DisplayName == "" && p.Summary == "" && p.LastCallSummary == "" && p.NextGreeting == "" && p.MemoryCount == 0
}
