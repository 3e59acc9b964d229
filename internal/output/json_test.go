package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Version: "dev",
		FunctionItems: []model.UnifiedDebtItem{
			{
				Location: model.Location{File: "src/app.go", Function: "parseEverything", Line: 42},
				DebtType: model.DebtType{Kind: model.DebtComplexityHotspot, ComplexityHotspot: model.ComplexityHotspotEvidence{Cyclomatic: 25, Cognitive: 40}},
				Score: model.UnifiedScore{
					ComplexityFactor: 9.5,
					DependencyFactor: 4.0,
					RoleMultiplier:   1.0,
					FinalScore:       78.2,
					BaseScore:        5.7,
					HasBaseScore:     true,
					PurityFactor:     1.0,
					HasPurityFactor:  true,
					RiskBoost:        1.0,
					HasRiskBoost:     true,
				},
				Role:           model.RolePureLogic,
				Recommendation: "refactor: cyclomatic 25 / cognitive 40 exceed thresholds",
				Coverage:       model.TransitiveCoverage{Direct: 0.4, HasDirect: true, Transitive: 0.6},
				UpstreamCount:  2,
				Cyclomatic:     25,
				Cognitive:      40,
				Length:         120,
				Tier:           model.TierCritical,
			},
			{
				Location: model.Location{File: "src/util.py", Function: "unused_helper", Line: 7},
				DebtType: model.DebtType{Kind: model.DebtDeadCode, DeadCode: model.DeadCodeEvidence{Visibility: model.VisPrivate}},
				Score:    model.UnifiedScore{FinalScore: 12.0, RoleMultiplier: 1.0},
				Tier:     model.TierLow,
			},
		},
		TotalDebtScore:   90.2,
		TotalLinesOfCode: 2000,
		FilterStats:      model.FilterStats{TotalBeforeFilter: 3, DroppedLowComplexity: 1, TotalAfterFilter: 2},
		Diagnostics: []model.Diagnostic{
			{File: "src/broken.py", Severity: model.SeverityError, Reason: "parse failed", Hint: "file skipped; analysis continues"},
		},
	}
}

func TestBuildJSONReportShape(t *testing.T) {
	report := BuildJSONReport(sampleResult())

	if report.Version == "" {
		t.Error("version field is required for comparator compatibility")
	}
	if len(report.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(report.Items))
	}
	if report.Items[0].Type != "function" {
		t.Errorf("item type = %q, want function", report.Items[0].Type)
	}
	if report.DebtDensity != 90.2/2000*1000 {
		t.Errorf("debt_density = %f, want total/LOC*1000", report.DebtDensity)
	}
	if report.OverallCoverage != nil {
		t.Error("overall_coverage should be omitted when absent")
	}
	if len(report.Diagnostics) != 1 {
		t.Errorf("diagnostics = %d, want 1", len(report.Diagnostics))
	}
}

func TestJSONOmitsAbsentTransparencyFields(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, BuildJSONReport(sampleResult())); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	text := buf.String()

	// The first item ran the pipeline: base_score present. No item ran the
	// orchestration adjustment, so its transparency field must not appear.
	if !strings.Contains(text, "base_score") {
		t.Error("populated transparency field missing from JSON")
	}
	if strings.Contains(text, "pre_adjustment_score") {
		t.Error("absent transparency field should be omitted entirely")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	report := BuildJSONReport(sampleResult())

	var buf bytes.Buffer
	if err := RenderJSON(&buf, report); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	parsed, err := ParseJSONReport(&buf)
	if err != nil {
		t.Fatalf("ParseJSONReport: %v", err)
	}

	a, _ := json.Marshal(report)
	b, _ := json.Marshal(parsed)
	if !bytes.Equal(a, b) {
		t.Errorf("round-trip changed the report:\nbefore: %s\nafter:  %s", a, b)
	}
}

func TestItemsFromReport(t *testing.T) {
	report := BuildJSONReport(sampleResult())
	items := ItemsFromReport(report)

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0]
	if first.Location.File != "src/app.go" || first.Location.Line != 42 {
		t.Errorf("location = %+v, want src/app.go:42", first.Location)
	}
	if first.Score.FinalScore != 78.2 {
		t.Errorf("final score = %f, want 78.2", first.Score.FinalScore)
	}
	if first.Coverage.Transitive != 0.6 || !first.Coverage.HasDirect {
		t.Errorf("coverage = %+v, want transitive 0.6 with direct data", first.Coverage)
	}
	if first.Tier != model.TierCritical {
		t.Errorf("tier = %s, want Critical (rederived from score)", first.Tier)
	}
}

func TestParseTargetLocation(t *testing.T) {
	loc, err := ParseTargetLocation("src/app.rs:func:42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.Location{File: "src/app.rs", Function: "func", Line: 42}
	if loc != want {
		t.Errorf("loc = %+v, want %+v", loc, want)
	}

	if _, err := ParseTargetLocation("no-colons"); err == nil {
		t.Error("expected error for malformed target")
	}
	if _, err := ParseTargetLocation("a:b:notanumber"); err == nil {
		t.Error("expected error for non-numeric line")
	}
}

func TestCompareReportsEndToEnd(t *testing.T) {
	// End-to-end scenario: one item dropping from 81.9 to 15.2 is an
	// Improved target and an Improving project.
	before := &JSONReport{
		Version: SchemaVersion,
		Items: []JSONItem{{
			Type: "function", File: "file.rs", Function: "func", Line: 42,
			Score: JSONScore{FinalScore: 81.9}, Cyclomatic: 12,
		}},
	}
	after := &JSONReport{
		Version: SchemaVersion,
		Items: []JSONItem{{
			Type: "function", File: "file.rs", Function: "func", Line: 42,
			Score: JSONScore{FinalScore: 15.2}, Cyclomatic: 5,
		}},
	}
	target := model.Location{File: "file.rs", Function: "func", Line: 42}

	cj := CompareReports(before, after, &target)
	if cj.Target == nil {
		t.Fatal("target section missing")
	}
	if cj.Target.Status != "Improved" {
		t.Errorf("status = %s, want Improved", cj.Target.Status)
	}
	if cj.Target.ScoreReductionPercent < 81 || cj.Target.ScoreReductionPercent > 82 {
		t.Errorf("score reduction = %.1f, want ~81.4", cj.Target.ScoreReductionPercent)
	}
	if cj.Health.Trend != "Improving" {
		t.Errorf("trend = %s, want Improving", cj.Health.Trend)
	}
}
