// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/captionart/hoard/benchmark/analysis"
	"github.com/captionart/hoard/benchmark/simulation"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(trace string, capacity, window int) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Workload:** %s\n", trace)
	fmt.Fprintf(r.w, "- **Table capacity:** %d entries\n", capacity)
	fmt.Fprintf(r.w, "- **Hit-rate sampling window:** %d ops\n", window)
	fmt.Fprintln(r.w, "- **Metric:** read hit rate per window (higher is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the per-policy summary table. Policies are
// listed alphabetically so repeated runs produce comparable reports.
func (r *MarkdownReport) WriteSummaryTable(results map[string]*simulation.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Policy | Hit Rate | Median Window | Worst Decile | Evictions |")
	fmt.Fprintln(r.w, "|--------|----------|---------------|--------------|-----------|")

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		metrics := simulation.ComputeMetrics(results[name])
		fmt.Fprintf(r.w, "| %s | %.1f%% | %.1f%% | %.1f%% | %d |\n",
			name,
			metrics.HitRate*100,
			metrics.MedianWindowHitRate*100,
			metrics.P10WindowHitRate*100,
			metrics.Evictions)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.PolicyComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Policy1, comp.Policy2)

	// Statistics table.
	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Policy1+" | "+comp.Policy2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Policy1)+2)+"|"+strings.Repeat("-", len(comp.Policy2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean | %.4f | %.4f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median | %.4f | %.4f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.4f | %.4f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.4f | %.4f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.4f | %.4f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	// Statistical tests.
	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.4f, %.4f]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	// Conclusion.
	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** holds a statistically significant hit-rate advantage over %s ",
			comp.Winner, otherPolicy(comp.Winner, comp.Policy1, comp.Policy2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between policies (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherPolicy(winner, p1, p2 string) string {
	if winner == p1 {
		return p2
	}
	return p1
}

// WriteLatency writes the live-cache latency section. Values are in
// microseconds.
func (r *MarkdownReport) WriteLatency(op string, stats *analysis.DescriptiveStats) {
	fmt.Fprintf(r.w, "## %s Latency\n\n", op)
	fmt.Fprintln(r.w, "| Samples | Mean | Median | P90 | P99 | Max |")
	fmt.Fprintln(r.w, "|---------|------|--------|-----|-----|-----|")
	fmt.Fprintf(r.w, "| %d | %.1fµs | %.1fµs | %.1fµs | %.1fµs | %.1fµs |\n",
		stats.N, stats.Mean, stats.Median, stats.P90, stats.P99, stats.Max)
	fmt.Fprintln(r.w)
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w, "Report generated by `hoard bench`.")
}
