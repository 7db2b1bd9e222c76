package usecase

// IsConversationalFiller is exported for testing
var IsConversationalFiller = isConversationalFiller

// ExtractDisplayName is exported for testing
var ExtractDisplayName = extractDisplayName

// FormatField is exported for testing
var FormatField = formatField

// FormatFieldValue is exported for testing
var FormatFieldValue = formatFieldValue

// ParseSummary returns the parsed parts of an engine summary line
func ParseSummary(summary string) (count int, activity string, top string) {
	p := parseSummary(summary)
	return p.memoryCount, p.activityLevel, p.topContent
}
