package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/config"
)

// Phrases that mark transcript noise, session meta notes, agent speech or
// name-only facts. None of them make a useful greeting topic.
var fillerPatterns = []string{
	"you know", "um", "uh", "okay", "ok", "great", "yeah", "yep",
	"right", "sure", "well", "so", "like", "actually",
	"session quality", "surface-level", "moderate", "rich",
	"chapters discussed", "stories shared", "emotional moments",
	"session date", "participant details",
	"can you tell me", "tell me about", "what do you",
	"how did you", "that's wonderful", "thank you for sharing",
	"yes", "no", "maybe", "i see", "i understand",
	"user name is", "user's name is", "name is",
}

var questionStarters = []string{
	"can you", "could you", "would you", "do you", "what", "how", "why", "where", "when",
}

// isConversationalFiller reports whether content is too noisy to quote back
// to the caller. Patterns match on word boundaries.
func isConversationalFiller(content string) bool {
	content = strings.TrimSpace(content)
	if len(content) < 10 {
		return true
	}
	lower := strings.ToLower(content)

	for _, p := range fillerPatterns {
		if lower == p || hasWordPrefix(lower, p) {
			return true
		}
	}

	var count int
	for _, p := range fillerPatterns {
		if containsWord(lower, p) {
			count++
		}
	}
	if count >= 2 && len(content) < 50 {
		return true
	}

	if strings.Contains(content, "?") {
		for _, q := range questionStarters {
			if hasWordPrefix(lower, q) {
				return true
			}
		}
	}

	return false
}

func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || !isWordRune(rune(s[len(prefix)]))
}

func containsWord(s, word string) bool {
	for i := 0; i+len(word) <= len(s); {
		idx := strings.Index(s[i:], word)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(word)
		before := start == 0 || !isWordRune(rune(s[start-1]))
		after := end == len(s) || !isWordRune(rune(s[end]))
		if before && after {
			return true
		}
		i = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

var (
	summaryCountPattern    = regexp.MustCompile(`^(\d+)\s+memories?`)
	summaryActivityPattern = regexp.MustCompile(`\|\s*(low|medium|high)\s*\|`)
	summaryTopPattern      = regexp.MustCompile(`top:.*?:\s*"([^"]+)"`)
)

const participantDetailsPrefix = "participant details:"

type parsedSummary struct {
	memoryCount   int
	activityLevel string
	topContent    string
}

// parseSummary reads the engine's one-line user summary, e.g.
// `3 memories, 2 patterns | low | avg_sal=0.77 | top: semantic(2, sal=0.80): "..."`
func parseSummary(summary string) parsedSummary {
	result := parsedSummary{activityLevel: "none"}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return result
	}

	if m := summaryCountPattern.FindStringSubmatch(summary); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.memoryCount = n
		}
	}

	if m := summaryActivityPattern.FindStringSubmatch(summary); m != nil {
		result.activityLevel = m[1]
	}

	if m := summaryTopPattern.FindStringSubmatch(summary); m != nil {
		top := strings.TrimSpace(m[1])
		if strings.HasPrefix(strings.ToLower(top), participantDetailsPrefix) {
			top = strings.TrimSpace(top[len(participantDetailsPrefix):])
		}
		if top != "" && !isConversationalFiller(top) {
			result.topContent = top
		}
	}

	return result
}

var nameKeywords = []string{"my name is", "name is", "i'm", "i am"}

// extractDisplayName finds the caller's name in profile hits, preferring
// structured name fields over phrases in free text
func extractDisplayName(hits []*model.MemoryHit) string {
	for _, hit := range hits {
		switch config.NormalizeFieldKey(hit.MetaString(model.MetaField)) {
		case "first_name", "name":
			if v := strings.TrimSpace(hit.MetaString(model.MetaValue)); v != "" {
				return v
			}
		}
	}

	for _, hit := range hits {
		switch hit.MetaString(model.MetaKind) {
		case model.TagCallSummary, model.TagNextGreeting:
			continue
		}
		if name := nameFromPhrase(hit.Content); name != "" {
			return name
		}
	}

	for _, hit := range hits {
		for _, key := range []string{"name", "first_name"} {
			if v := strings.TrimSpace(hit.MetaString(key)); v != "" {
				return v
			}
		}
	}

	return ""
}

func nameFromPhrase(content string) string {
	lower := strings.ToLower(content)
	for _, keyword := range nameKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		words := strings.Fields(lower[idx+len(keyword):])
		if len(words) == 0 {
			continue
		}
		word := strings.Trim(words[0], ".,!?;:\"")
		if len(word) <= 1 || !isAlphaName(word) {
			continue
		}
		return capitalize(word)
	}
	return ""
}

func isAlphaName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// titleCase turns a normalized field key into "Title Case Key"
func titleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
