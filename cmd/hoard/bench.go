package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/captionart/hoard"
	"github.com/captionart/hoard/benchmark/analysis"
	"github.com/captionart/hoard/benchmark/reporting"
	"github.com/captionart/hoard/benchmark/simulation"
	"github.com/captionart/hoard/benchmark/workload"
	"github.com/captionart/hoard/internal/evict"
	"github.com/captionart/hoard/internal/evict/creation"
	"github.com/captionart/hoard/internal/evict/lru"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark eviction policies on a synthetic workload",
	Long: `Compare eviction policies by replaying a synthetic access trace
against each one at a fixed table capacity, then drive the same trace
through a live in-memory cache to measure operation latency.

The trace is seeded, so repeated runs with the same parameters are
directly comparable.

Examples:
  # Compare the default policies on a skewed workload
  hoard bench

  # Heavier skew, bigger trace
  hoard bench --workload zipf --skew 1.3 --ops 500000

  # Output as markdown report
  hoard bench --format markdown --output report.md`,
	RunE: runBench,
}

var (
	benchOps        int
	benchKeys       int
	benchCapacity   int
	benchWindow     int
	benchWorkload   string
	benchSkew       float64
	benchWriteRatio float64
	benchSeed       int64
	benchPolicies   []string
	benchFormat     string
	benchOutput     string
)

func init() {
	benchCmd.Flags().IntVar(&benchOps, "ops", 100000, "number of operations in the trace")
	benchCmd.Flags().IntVar(&benchKeys, "keys", 5000, "size of the key space")
	benchCmd.Flags().IntVar(&benchCapacity, "capacity", 1000, "entry ceiling of the simulated table")
	benchCmd.Flags().IntVar(&benchWindow, "window", 1000, "ops per hit-rate sample window")
	benchCmd.Flags().StringVar(&benchWorkload, "workload", "zipf", "workload shape: zipf, uniform")
	benchCmd.Flags().Float64Var(&benchSkew, "skew", 1.1, "zipf skew (> 1; larger = smaller hot set)")
	benchCmd.Flags().Float64Var(&benchWriteRatio, "write-ratio", 0.25, "fraction of ops that are writes")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "trace seed")
	benchCmd.Flags().StringSliceVarP(&benchPolicies, "policies", "p", []string{"creation", "lru"}, "policies to compare")
	benchCmd.Flags().StringVarP(&benchFormat, "format", "f", "text", "output format: text, markdown")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	// Generate trace.
	var trace workload.Trace
	switch benchWorkload {
	case "zipf":
		trace = workload.Zipf(benchSeed, benchKeys, benchOps, benchSkew, benchWriteRatio)
	case "uniform":
		trace = workload.Uniform(benchSeed, benchKeys, benchOps, benchWriteRatio)
	default:
		return fmt.Errorf("unknown workload: %s", benchWorkload)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Generated %s: %d reads, %d writes\n",
			trace.Name, trace.Reads(), len(trace.Ops)-trace.Reads())
	}

	// Create policies.
	policies := make([]evict.Policy, 0, len(benchPolicies))
	for _, name := range benchPolicies {
		p, err := createPolicy(name)
		if err != nil {
			return err
		}
		policies = append(policies, p)
	}

	// Run simulation.
	if verbose {
		fmt.Fprintln(os.Stderr, "Replaying trace against policies...")
	}

	sim := simulation.NewSimulator(benchCapacity, benchWindow, policies...)
	results := sim.Replay(trace)

	// Perform statistical comparison.
	var comparison *analysis.PolicyComparison
	if len(policies) >= 2 {
		comparison = analysis.ComparePolicies(
			results[policies[0].Name()],
			results[policies[1].Name()],
			10000, // Bootstrap iterations.
			0.95,  // 95% confidence.
		)
	}

	// Drive a live cache with the first policy to measure latency.
	if verbose {
		fmt.Fprintln(os.Stderr, "Measuring live cache latency...")
	}

	lat, err := runLive(trace, benchPolicies[0])
	if err != nil {
		return err
	}

	// Output results.
	var output io.Writer = os.Stdout
	if benchOutput != "" {
		f, err := os.Create(benchOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch benchFormat {
	case "markdown":
		return writeMarkdownReport(output, trace, results, comparison, lat)
	default:
		return writeTextReport(output, trace, results, comparison, lat)
	}
}

func createPolicy(name string) (evict.Policy, error) {
	switch strings.ToLower(name) {
	case "creation":
		return creation.New(), nil
	case "lru":
		return lru.New(benchCapacity)
	default:
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
}

// latencyReport holds the live-cache half of the benchmark.
type latencyReport struct {
	Get   *analysis.DescriptiveStats // Microseconds.
	Set   *analysis.DescriptiveStats // Microseconds.
	Stats hoard.Stats
}

// runLive replays the trace against a real in-memory cache, timing each
// operation. A read miss is followed by a Set, the way a caller recomputes
// a missing artifact and writes it back.
func runLive(trace workload.Trace, policyName string) (*latencyReport, error) {
	policy, err := createPolicy(policyName)
	if err != nil {
		return nil, err
	}

	cache, err := hoard.New(
		hoard.WithMaxEntries(benchCapacity),
		hoard.WithMaxBytes(0),
		hoard.WithEvictionPolicy(policy),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	defer cache.Close()

	payload := map[string]any{
		"text":  "synthetic artifact payload for latency measurement",
		"score": 0.5,
	}

	ctx := context.Background()
	getMicros := make([]float64, 0, trace.Reads())
	setMicros := make([]float64, 0, len(trace.Ops)-trace.Reads())

	for _, op := range trace.Ops {
		if op.Write {
			start := time.Now()
			cache.Set(ctx, op.Key, payload, time.Hour)
			setMicros = append(setMicros, float64(time.Since(start).Microseconds()))
			continue
		}
		start := time.Now()
		_, ok := cache.Get(ctx, op.Key)
		getMicros = append(getMicros, float64(time.Since(start).Microseconds()))
		if !ok {
			cache.Set(ctx, op.Key, payload, time.Hour)
		}
	}

	return &latencyReport{
		Get:   analysis.Describe(getMicros),
		Set:   analysis.Describe(setMicros),
		Stats: cache.Stats(),
	}, nil
}

func writeTextReport(w io.Writer, trace workload.Trace, results map[string]*simulation.Result, comp *analysis.PolicyComparison, lat *latencyReport) error {
	fmt.Fprintf(w, "Hoard Eviction Policy Benchmark\n")
	fmt.Fprintf(w, "===============================\n\n")
	fmt.Fprintf(w, "Workload: %s\n", trace.Name)
	fmt.Fprintf(w, "Reads:    %d\n", trace.Reads())
	fmt.Fprintf(w, "Capacity: %d\n", benchCapacity)
	fmt.Fprintf(w, "Window:   %d ops\n\n", benchWindow)

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		metrics := simulation.ComputeMetrics(results[name])
		fmt.Fprintf(w, "%s:\n", name)
		fmt.Fprintf(w, "  Hit rate:      %.1f%%\n", metrics.HitRate*100)
		fmt.Fprintf(w, "  Mean window:   %.1f%%\n", metrics.MeanWindowHitRate*100)
		fmt.Fprintf(w, "  Median window: %.1f%%\n", metrics.MedianWindowHitRate*100)
		fmt.Fprintf(w, "  Worst decile:  %.1f%%\n", metrics.P10WindowHitRate*100)
		fmt.Fprintf(w, "  Evictions:     %d\n\n", metrics.Evictions)
	}

	if comp != nil {
		fmt.Fprintf(w, "Statistical Analysis:\n")
		fmt.Fprintf(w, "---------------------\n\n")
		fmt.Fprintln(w, comp.Summary())
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Live Cache Latency (%s):\n", benchPolicies[0])
	fmt.Fprintf(w, "------------------------\n\n")
	fmt.Fprintf(w, "Get: n=%d mean=%.1fµs median=%.1fµs p99=%.1fµs max=%.1fµs\n",
		lat.Get.N, lat.Get.Mean, lat.Get.Median, lat.Get.P99, lat.Get.Max)
	fmt.Fprintf(w, "Set: n=%d mean=%.1fµs median=%.1fµs p99=%.1fµs max=%.1fµs\n",
		lat.Set.N, lat.Set.Mean, lat.Set.Median, lat.Set.P99, lat.Set.Max)
	fmt.Fprintf(w, "Hit rate: %.1f%% (%d hits, %d misses)\n",
		lat.Stats.HitRate()*100, lat.Stats.Hits, lat.Stats.Misses)

	return nil
}

func writeMarkdownReport(w io.Writer, trace workload.Trace, results map[string]*simulation.Result, comp *analysis.PolicyComparison, lat *latencyReport) error {
	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("Hoard Eviction Policy Benchmark")
	report.WriteMethodology(trace.Name, benchCapacity, benchWindow)
	report.WriteSummaryTable(results)

	if comp != nil {
		report.WriteComparison(comp)
	}

	report.WriteLatency("Get", lat.Get)
	report.WriteLatency("Set", lat.Set)

	report.WriteFooter()
	return nil
}
