package types

import "fmt"

// GuideWord is a HAZOP deviation keyword applied to each item function to
// enumerate malfunctioning behaviors.
type GuideWord string

const (
	GuideWordNo        GuideWord = "NO"
	GuideWordMore      GuideWord = "MORE"
	GuideWordLess      GuideWord = "LESS"
	GuideWordAsWellAs  GuideWord = "AS WELL AS"
	GuideWordPartOf    GuideWord = "PART OF"
	GuideWordReverse   GuideWord = "REVERSE"
	GuideWordOtherThan GuideWord = "OTHER THAN"
	GuideWordEarly     GuideWord = "EARLY"
	GuideWordLate      GuideWord = "LATE"
	GuideWordBefore    GuideWord = "BEFORE"
	GuideWordAfter     GuideWord = "AFTER"
)

// AllGuideWords returns the standard HAZOP guide word set
func AllGuideWords() []GuideWord {
	return []GuideWord{
		GuideWordNo,
		GuideWordMore,
		GuideWordLess,
		GuideWordAsWellAs,
		GuideWordPartOf,
		GuideWordReverse,
		GuideWordOtherThan,
		GuideWordEarly,
		GuideWordLate,
		GuideWordBefore,
		GuideWordAfter,
	}
}

// IsValid checks if the guide word is valid
func (g GuideWord) IsValid() bool {
	switch g {
	case GuideWordNo,
		GuideWordMore,
		GuideWordLess,
		GuideWordAsWellAs,
		GuideWordPartOf,
		GuideWordReverse,
		GuideWordOtherThan,
		GuideWordEarly,
		GuideWordLate,
		GuideWordBefore,
		GuideWordAfter:
		return true
	default:
		return false
	}
}

// Meaning returns the deviation interpretation used when prompting for
// malfunctioning behaviors.
func (g GuideWord) Meaning() string {
	switch g {
	case GuideWordNo:
		return "function is not provided when required"
	case GuideWordMore:
		return "function is provided more than intended"
	case GuideWordLess:
		return "function is provided less than intended"
	case GuideWordAsWellAs:
		return "function occurs together with an unintended additional effect"
	case GuideWordPartOf:
		return "only part of the function is provided"
	case GuideWordReverse:
		return "function acts in the opposite direction of the intent"
	case GuideWordOtherThan:
		return "something other than the intended function is provided"
	case GuideWordEarly:
		return "function is provided earlier than intended"
	case GuideWordLate:
		return "function is provided later than intended"
	case GuideWordBefore:
		return "function occurs before the intended step in a sequence"
	case GuideWordAfter:
		return "function occurs after the intended step in a sequence"
	default:
		return ""
	}
}

// String returns the string representation of the guide word
func (g GuideWord) String() string {
	return string(g)
}

// ParseGuideWord parses a string into a GuideWord
func ParseGuideWord(s string) (GuideWord, error) {
	g := GuideWord(s)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid HAZOP guide word: %s", s)
	}
	return g, nil
}
