package report

import (
	"fmt"
	"strings"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

// tableColumns is the fixed column contract of the HARA table. Every row
// carries all twelve columns.
var tableColumns = []string{
	"Hazard ID",
	"Function",
	"Malfunctioning Behavior",
	"Hazardous Event",
	"Operational Situation",
	"Severity (S)",
	"Exposure (E)",
	"Controllability (C)",
	"ASIL",
	"Safety Goal",
	"Safe State",
	"FTTI",
}

// Table renders the session's hazards as the 12-column HARA table in
// markdown. Hazards appear in identification order; fields not yet assessed
// render as empty cells.
func Table(sess *model.Session) string {
	var sb strings.Builder

	sb.WriteString("| " + strings.Join(tableColumns, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(tableColumns)) + "\n")

	for _, h := range sess.Hazards {
		row := []string{
			h.ID.String(),
			h.Function,
			h.Malfunction,
			h.Event,
			h.SituationSummary(),
			ratingCell(h.Severity.String(), h.Severity.IsValid()),
			ratingCell(h.Exposure.String(), h.Exposure.IsValid()),
			ratingCell(h.Controllability.String(), h.Controllability.IsValid()),
			ratingCell(h.ASIL.Label(), h.ASIL.IsValid()),
			h.SafetyGoal,
			h.SafeState,
			h.FTTI,
		}
		for i, c := range row {
			row[i] = cell(c)
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return sb.String()
}

// Distribution renders the count of hazards per risk class, one line per
// class present, in ascending rigor order.
func Distribution(sess *model.Session) string {
	dist := sess.ASILDistribution()
	var sb strings.Builder
	for _, a := range types.AllASILs() {
		n, ok := dist[a]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %d hazard(s)\n", a.Label(), n)
	}
	return sb.String()
}

// Goals renders the structured safety goals as a markdown document. When no
// goal is required because every hazard stayed at QM, the document says so.
func Goals(sess *model.Session) string {
	if len(sess.SafetyGoals) == 0 {
		if sess.NoGoalsRequired {
			return "All hazards are classified as QM. No safety goals are required per ISO 26262-3:2018.\n"
		}
		return ""
	}

	var sb strings.Builder
	for i, g := range sess.SafetyGoals {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		h := sess.Hazard(g.HazardID)

		fmt.Fprintf(&sb, "## %s", g.HazardID)
		if h != nil && h.Event != "" {
			fmt.Fprintf(&sb, ": %s", h.Event)
		}
		sb.WriteString("\n\n")

		fmt.Fprintf(&sb, "**ASIL Level:** %s\n", g.ASIL)
		if h != nil {
			fmt.Fprintf(&sb, "**Severity:** %s | **Exposure:** %s | **Controllability:** %s\n",
				h.Severity, h.Exposure, h.Controllability)
			if s := h.SituationSummary(); s != "" {
				fmt.Fprintf(&sb, "\n**Operational Situation:**\n%s\n", s)
			}
		}
		fmt.Fprintf(&sb, "\n**Safety Goal:**\n%s\n", g.Statement)
		if g.SafeState != "" {
			fmt.Fprintf(&sb, "\n**Safe State:**\n%s\n", g.SafeState)
		}
		if g.FTTI != "" {
			fmt.Fprintf(&sb, "\n**Fault-Tolerant Time Interval (FTTI):**\n%s\n", g.FTTI)
		}
	}
	return sb.String()
}

// Render builds the complete HARA report for a session: item header,
// function inventory, the 12-column table, the risk distribution and the
// safety goals. The stored table and goals document from the workflow are
// preferred; both fall back to rendering from the structured hazards.
func Render(sess *model.Session) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# HARA Report: %s\n\n", sess.ItemName)
	fmt.Fprintf(&sb, "- Session: %s\n", sess.ID)
	fmt.Fprintf(&sb, "- Stage: %s\n", sess.Stage)
	fmt.Fprintf(&sb, "- Hazards: %d\n", len(sess.Hazards))
	if !sess.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- Updated: %s\n", sess.UpdatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	sb.WriteString("\n")

	if len(sess.Functions) > 0 {
		sb.WriteString("## Item Functions\n\n")
		for _, f := range sess.Functions {
			fmt.Fprintf(&sb, "%d. %s", f.Number, f.Name)
			if f.Description != "" {
				fmt.Fprintf(&sb, " - %s", f.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(sess.Hazards) > 0 {
		sb.WriteString("## HARA Table\n\n")
		if sess.Table != "" {
			sb.WriteString(sess.Table)
			if !strings.HasSuffix(sess.Table, "\n") {
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString(Table(sess))
		}
		sb.WriteString("\n")

		if d := Distribution(sess); d != "" {
			sb.WriteString("## ASIL Distribution\n\n")
			sb.WriteString(d)
			sb.WriteString("\n")
		}
	}

	goals := sess.GoalsDocument
	if goals == "" {
		goals = Goals(sess)
	}
	if goals != "" {
		sb.WriteString("## Safety Goals\n\n")
		sb.WriteString(goals)
		if !strings.HasSuffix(goals, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ratingCell hides the zero value of unassessed ratings.
func ratingCell(s string, valid bool) string {
	if !valid {
		return ""
	}
	return s
}

// cell makes a value safe for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}
