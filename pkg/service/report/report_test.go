package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/report"
)

func classifiedSession() *model.Session {
	sess := model.NewSession("Battery Management System",
		"Monitors and balances the traction battery pack.")
	sess.Stage = types.StageSafetyGoalsDerived
	sess.UpdatedAt = time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	sess.Functions = []model.ItemFunction{
		{Number: 1, Name: "Monitor cell voltage", Description: "Per-cell voltage sensing"},
		{Number: 2, Name: "Control charging current"},
	}
	sess.Hazards = []*model.Hazard{
		{
			ID:          model.NewHazardID(1),
			Function:    "Monitor cell voltage",
			GuideWord:   types.GuideWordNo,
			Malfunction: "No voltage monitoring",
			Event:       "Battery overcharge leading to thermal runaway and fire",
			Situations: []model.SituationRef{
				{ID: "SPC-003", Name: "EV Fast Charging", Exposure: types.ExposureE2},
				{ID: "ENV-007", Name: "Extreme Heat", Exposure: types.ExposureE2},
			},
			Exposure:        types.ExposureE2,
			Severity:        types.SeverityS3,
			Controllability: types.ControllabilityC3,
			ASIL:            types.ASILD,
			SafetyGoal:      "Avoid battery overcharge leading to thermal runaway during fast charging",
			SafeState:       "Battery isolated from charger, thermal management active",
			FTTI:            "100ms",
		},
		{
			ID:          model.NewHazardID(2),
			Function:    "Control charging current",
			GuideWord:   types.GuideWordLess,
			Malfunction: "Charging current below request",
			Event:       "Extended charging time without hazardous effect",
			Situations: []model.SituationRef{
				{ID: "SPC-003", Name: "EV Fast Charging", Exposure: types.ExposureE2},
			},
			Exposure:        types.ExposureE2,
			Severity:        types.SeverityS0,
			Controllability: types.ControllabilityC1,
			ASIL:            types.ASILQM,
		},
	}
	sess.SafetyGoals = []model.SafetyGoal{
		{
			HazardID:  model.NewHazardID(1),
			ASIL:      types.ASILD,
			Statement: "Avoid battery overcharge leading to thermal runaway during fast charging. (ASIL D)",
			SafeState: "Battery isolated from charger, thermal management active",
			FTTI:      "100ms",
		},
	}
	return sess
}

func TestTable(t *testing.T) {
	sess := classifiedSession()
	table := report.Table(sess)

	lines := strings.Split(strings.TrimSpace(table), "\n")
	gt.Array(t, lines).Length(4)

	header := lines[0]
	for _, col := range []string{
		"Hazard ID", "Function", "Malfunctioning Behavior", "Hazardous Event",
		"Operational Situation", "Severity (S)", "Exposure (E)",
		"Controllability (C)", "ASIL", "Safety Goal", "Safe State", "FTTI",
	} {
		gt.String(t, header).Contains(col)
	}

	row := lines[2]
	gt.String(t, row).Contains("HAZ-001")
	gt.String(t, row).Contains("EV Fast Charging + Extreme Heat")
	gt.String(t, row).Contains("S3")
	gt.String(t, row).Contains("E2")
	gt.String(t, row).Contains("C3")
	gt.String(t, row).Contains("ASIL D")
	gt.String(t, row).Contains("100ms")

	gt.String(t, lines[3]).Contains("QM")
}

func TestTable_UnassessedFieldsRenderEmpty(t *testing.T) {
	sess := model.NewSession("Wiper Control", "def")
	sess.Hazards = []*model.Hazard{{
		ID:          model.NewHazardID(1),
		Function:    "Wipe windshield",
		GuideWord:   types.GuideWordNo,
		Malfunction: "No wiping",
		Event:       "Loss of visibility in rain",
	}}

	table := report.Table(sess)
	gt.String(t, table).Contains("HAZ-001")
	gt.Value(t, strings.Contains(table, "ASIL")).Equal(true)
	for _, line := range strings.Split(table, "\n") {
		if strings.Contains(line, "HAZ-001") {
			gt.Value(t, strings.Contains(line, "QM")).Equal(false)
		}
	}
}

func TestTable_EscapesCellContent(t *testing.T) {
	sess := model.NewSession("Gateway", "def")
	sess.Hazards = []*model.Hazard{{
		ID:          model.NewHazardID(1),
		Function:    "Route frames",
		Malfunction: "Drops CAN|LIN frames\nintermittently",
		Event:       "Silent signal loss",
	}}

	table := report.Table(sess)
	gt.String(t, table).Contains(`CAN\|LIN`)
	for _, line := range strings.Split(table, "\n") {
		if strings.Contains(line, "HAZ-001") {
			gt.String(t, line).Contains("intermittently")
		}
	}
}

func TestDistribution(t *testing.T) {
	sess := classifiedSession()
	dist := report.Distribution(sess)

	gt.String(t, dist).Contains("QM: 1 hazard(s)")
	gt.String(t, dist).Contains("ASIL D: 1 hazard(s)")

	qmAt := strings.Index(dist, "QM")
	dAt := strings.Index(dist, "ASIL D")
	gt.B(t, qmAt >= 0 && dAt > qmAt).True()
}

func TestGoals(t *testing.T) {
	sess := classifiedSession()
	doc := report.Goals(sess)

	gt.String(t, doc).Contains("## HAZ-001: Battery overcharge leading to thermal runaway and fire")
	gt.String(t, doc).Contains("**ASIL Level:** D")
	gt.String(t, doc).Contains("**Severity:** S3 | **Exposure:** E2 | **Controllability:** C3")
	gt.String(t, doc).Contains("EV Fast Charging + Extreme Heat")
	gt.String(t, doc).Contains("Avoid battery overcharge")
	gt.String(t, doc).Contains("**Safe State:**")
	gt.String(t, doc).Contains("100ms")
}

func TestGoals_NoneRequired(t *testing.T) {
	sess := model.NewSession("Cabin Light Control", "def")
	sess.NoGoalsRequired = true

	doc := report.Goals(sess)
	gt.String(t, doc).Contains("No safety goals are required")
}

func TestRender(t *testing.T) {
	sess := classifiedSession()
	doc := report.Render(sess)

	gt.String(t, doc).Contains("# HARA Report: Battery Management System")
	gt.String(t, doc).Contains("- Stage: safety_goals_derived")
	gt.String(t, doc).Contains("- Hazards: 2")
	gt.String(t, doc).Contains("## Item Functions")
	gt.String(t, doc).Contains("1. Monitor cell voltage - Per-cell voltage sensing")
	gt.String(t, doc).Contains("## HARA Table")
	gt.String(t, doc).Contains("## ASIL Distribution")
	gt.String(t, doc).Contains("## Safety Goals")
}

func TestRender_PrefersStoredArtifacts(t *testing.T) {
	sess := classifiedSession()
	sess.Table = "| stored table |"
	sess.GoalsDocument = "stored goals document"

	doc := report.Render(sess)
	gt.String(t, doc).Contains("| stored table |")
	gt.String(t, doc).Contains("stored goals document")
	gt.Value(t, strings.Contains(doc, "Malfunctioning Behavior")).Equal(false)
}

func TestColorASIL(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	gt.Value(t, report.ColorASIL(types.ASILD)).Equal("ASIL D")
	gt.Value(t, report.ColorASIL(types.ASILQM)).Equal("QM")
	gt.Value(t, report.ColorASIL(types.ASIL("X"))).Equal("ASIL X")
}

func TestSummary(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	report.Summary(&buf, classifiedSession())

	out := buf.String()
	gt.String(t, out).Contains("Battery Management System")
	gt.String(t, out).Contains("Hazards: 2")
	gt.String(t, out).Contains("QM: 1")
	gt.String(t, out).Contains("ASIL D: 1")
	gt.String(t, out).Contains("Safety goals: 1")
}
