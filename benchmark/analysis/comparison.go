package analysis

import (
	"fmt"

	"github.com/captionart/hoard/benchmark/simulation"
)

// PolicyComparison contains a full statistical comparison between two
// eviction policies replayed over the same trace. The samples compared are
// the per-window hit rates, so the test sees how each policy behaves
// across the whole trace rather than one summary number.
type PolicyComparison struct {
	Policy1         string
	Policy2         string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Name of the policy with the higher hit rate, or "tie".
	WinnerConfident bool   // True if the difference is statistically significant.
}

// ComparePolicies performs a full statistical comparison between two
// replay results.
func ComparePolicies(
	result1, result2 *simulation.Result,
	bootstrapIterations int,
	confidence float64,
) *PolicyComparison {
	sample1 := result1.WindowHitRates
	sample2 := result2.WindowHitRates

	mw := MannWhitneyU(sample1, sample2)
	es := ComputeEffectSize(sample1, sample2)
	bs := BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence)

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	// Higher mean hit rate wins.
	var winner string
	var confident bool

	if stats1.Mean > stats2.Mean {
		winner = result1.PolicyName
		confident = mw.Significant
	} else if stats2.Mean > stats1.Mean {
		winner = result2.PolicyName
		confident = mw.Significant
	} else {
		winner = "tie"
		confident = false
	}

	return &PolicyComparison{
		Policy1:         result1.PolicyName,
		Policy2:         result2.PolicyName,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      es,
		BootstrapCI:     bs,
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *PolicyComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: mean=%.4f, median=%.4f, std=%.4f\n"+
			"  %s: mean=%.4f, median=%.4f, std=%.4f\n"+
			"  Difference: %+.4f hit rate (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Policy1, c.Policy2,
		c.Policy1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.StdDev,
		c.Policy2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiPolicyComparison compares multiple policies against a baseline.
type MultiPolicyComparison struct {
	Baseline    string
	Comparisons []*PolicyComparison
}

// CompareAll compares every policy's result against the named baseline.
func CompareAll(
	results map[string]*simulation.Result,
	baseline string,
	bootstrapIterations int,
	confidence float64,
) *MultiPolicyComparison {
	baseResult, ok := results[baseline]
	if !ok {
		return nil
	}

	multi := &MultiPolicyComparison{
		Baseline: baseline,
	}

	for name, result := range results {
		if name == baseline {
			continue
		}
		comp := ComparePolicies(result, baseResult, bootstrapIterations, confidence)
		multi.Comparisons = append(multi.Comparisons, comp)
	}

	return multi
}
