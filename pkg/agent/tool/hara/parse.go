package hara

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

// Assessment text patterns. The labeled "Severity (S): S3" form wins; a bare
// S3/E2/C3 symbol anywhere in the text is the fallback.
var (
	severityLabeled        = regexp.MustCompile(`(?i)Severity \(S\):\s*S([0-3])`)
	severityBare           = regexp.MustCompile(`\bS([0-3])\b`)
	exposureLabeled        = regexp.MustCompile(`(?i)Exposure \(E\):\s*E([0-4])`)
	exposureBare           = regexp.MustCompile(`\bE([0-4])\b`)
	controllabilityLabeled = regexp.MustCompile(`(?i)Controllability \(C\):\s*C([0-3])`)
	controllabilityBare    = regexp.MustCompile(`\bC([0-3])\b`)
)

// ParseRatings extracts the three risk ratings from free assessment text.
// Exposure is returned as written; classification normalizes E4 itself. A
// missing axis fails with that axis's invalid-rating sentinel.
func ParseRatings(text string) (types.Severity, types.Exposure, types.Controllability, error) {
	s := firstMatch(text, severityLabeled, severityBare)
	if s == "" {
		return "", "", "", goerr.Wrap(types.ErrInvalidSeverity, "no severity rating in assessment text")
	}
	e := firstMatch(text, exposureLabeled, exposureBare)
	if e == "" {
		return "", "", "", goerr.Wrap(types.ErrInvalidExposure, "no exposure rating in assessment text")
	}
	c := firstMatch(text, controllabilityLabeled, controllabilityBare)
	if c == "" {
		return "", "", "", goerr.Wrap(types.ErrInvalidControllability, "no controllability rating in assessment text")
	}
	return types.Severity("S" + s), types.Exposure("E" + e), types.Controllability("C" + c), nil
}

func firstMatch(text string, labeled, bare *regexp.Regexp) string {
	if m := labeled.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bare.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var functionLine = regexp.MustCompile(`^\s*(\d+)[.)]\s*(.+)$`)

// ParseFunctionList parses a numbered function list in the
// "1. Name: description" form. Unnumbered lines are ignored and numbering is
// reassigned sequentially so the result is always dense.
func ParseFunctionList(text string) []model.ItemFunction {
	var out []model.ItemFunction
	for _, line := range strings.Split(text, "\n") {
		m := functionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, desc, _ := strings.Cut(m[2], ":")
		name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "*"))
		if name == "" {
			continue
		}
		out = append(out, model.ItemFunction{
			Number:      len(out) + 1,
			Name:        name,
			Description: strings.TrimSpace(desc),
		})
	}
	return out
}
