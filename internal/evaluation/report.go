package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Report aggregates diagnostics across every trained model into a
// single markdown document for the diagnostics endpoint.
type Report struct {
	GeneratedAt time.Time
	Diagnostics []Diagnostic
}

// Markdown renders the report. Models are listed position-first so the
// document reads in roster order regardless of training order.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Model Diagnostics\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	if len(r.Diagnostics) == 0 {
		b.WriteString("No trained models available.\n")
		return b.String()
	}

	diags := make([]Diagnostic, len(r.Diagnostics))
	copy(diags, r.Diagnostics)
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Position != diags[j].Position {
			return diags[i].Position < diags[j].Position
		}
		return diags[i].Target < diags[j].Target
	})

	b.WriteString("| Model | Train RMSE | Holdout RMSE | Ratio | MAE | R2 | Assessment |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range diags {
		fmt.Fprintf(&b, "| %s/%s | %.2f | %.2f | %s | %.2f | %.3f | %s |\n",
			d.Position, d.Target,
			d.Train.RMSE, d.Holdout.RMSE, formatRatio(d.OverfitRatio),
			d.Holdout.MAE, d.Holdout.R2, d.Assessment)
	}

	var flagged []Diagnostic
	for _, d := range diags {
		if d.Assessment != AssessmentHealthy {
			flagged = append(flagged, d)
		}
	}
	if len(flagged) > 0 {
		b.WriteString("\n## Flags\n\n")
		for _, d := range flagged {
			fmt.Fprintf(&b, "- **%s/%s** (%s): %s\n", d.Position, d.Target, d.Assessment, d.Recommendation)
		}
	}
	return b.String()
}

func formatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", r)
}
