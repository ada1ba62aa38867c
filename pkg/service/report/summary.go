package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

var asilColors = map[types.ASIL]*color.Color{
	types.ASILQM: color.New(color.FgGreen),
	types.ASILA:  color.New(color.FgCyan),
	types.ASILB:  color.New(color.FgYellow),
	types.ASILC:  color.New(color.FgRed),
	types.ASILD:  color.New(color.FgRed, color.Bold),
}

// ColorASIL returns the ASIL label colored for terminal output. Unknown
// values render uncolored.
func ColorASIL(a types.ASIL) string {
	c, ok := asilColors[a]
	if !ok {
		return a.Label()
	}
	return c.Sprint(a.Label())
}

// Summary writes a short terminal summary of the session's risk profile.
func Summary(w io.Writer, sess *model.Session) {
	fmt.Fprintf(w, "%s\n", sess.ItemName)
	fmt.Fprintf(w, "  Stage:   %s\n", sess.Stage)
	fmt.Fprintf(w, "  Hazards: %d\n", len(sess.Hazards))

	dist := sess.ASILDistribution()
	if len(dist) > 0 {
		fmt.Fprint(w, "  ")
		for _, a := range types.AllASILs() {
			if n, ok := dist[a]; ok {
				fmt.Fprintf(w, "%s: %d  ", ColorASIL(a), n)
			}
		}
		fmt.Fprintln(w)
	}

	switch {
	case len(sess.SafetyGoals) > 0:
		fmt.Fprintf(w, "  Safety goals: %d\n", len(sess.SafetyGoals))
	case sess.NoGoalsRequired:
		fmt.Fprintln(w, "  No safety goals required")
	}
}
