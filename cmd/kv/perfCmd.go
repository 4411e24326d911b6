package kv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/keep/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for keep stores",
		Long: `Runs a set of benchmarks against the selected store (a server or, with --dir,
a local directory). Test keys are removed after every benchmark.`,
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfTest describes a single benchmark. prepare runs before the timer starts,
// op is executed once per iteration with the iteration's key.
type perfTest struct {
	name    string
	prepare func(keys []string) error
	op      func(key string, i int) error
}

// perfResult is the result of a single benchmark
type perfResult struct {
	name    string
	bench   testing.BenchmarkResult
	latency gometrics.Timer
	errors  int64
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "key-spread"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(1, viper.GetInt("key-spread"))
	perfNumThreads = max(1, viper.GetInt("threads"))
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for keep stores")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Target: %s\n", perfTarget())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Keys: %d\n", perfKeySpread)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)
	fill := func(value any) func(keys []string) error {
		return func(keys []string) error {
			for _, k := range keys {
				if err := kvStore.SetItem(k, value); err != nil {
					return err
				}
			}
			return nil
		}
	}

	tests := []perfTest{
		{
			name: "set",
			op:   func(key string, _ int) error { return kvStore.SetItem(key, "test") },
		},
		{
			name:    "set-existing",
			prepare: fill(map[string]any{"n": 1}),
			op:      func(key string, i int) error { return kvStore.SetItem(key, map[string]any{"n": i}) },
		},
		{
			name: "set-large",
			op:   func(key string, _ int) error { return kvStore.SetItem(key, largeValue) },
		},
		{
			name:    "get",
			prepare: fill("test"),
			op: func(key string, _ int) error {
				_, _, err := kvStore.GetItem(key)
				return err
			},
		},
		{
			name: "get-not",
			op: func(key string, _ int) error {
				_, _, err := kvStore.GetItem(key)
				return err
			},
		},
		{
			name:    "remove",
			prepare: fill("test"),
			op:      func(key string, _ int) error { return kvStore.RemoveItem(key) },
		},
		{
			name:    "data",
			prepare: fill("test"),
			op: func(_ string, _ int) error {
				_, err := kvStore.Data()
				return err
			},
		},
		{
			name: "mixed",
			op: func(key string, i int) error {
				var err error
				switch i % 4 {
				case 0:
					err = kvStore.SetItem(key, i)
				case 1:
					_, _, err = kvStore.GetItem(key)
				case 2:
					_, err = kvStore.Length()
				case 3:
					err = kvStore.RemoveItem(key)
				}
				return err
			},
		},
	}

	registry := gometrics.NewRegistry()
	results := make([]perfResult, 0, len(tests))
	for _, test := range tests {
		if shouldSkip(test.name) {
			printResult(perfResult{name: test.name})
			continue
		}
		result, err := runPerfTest(test, registry)
		if err != nil {
			return err
		}
		results = append(results, result)
		printResult(result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runPerfTest prepares the keys of a test, runs the benchmark and removes the keys afterwards
func runPerfTest(test perfTest, registry gometrics.Registry) (perfResult, error) {
	keys := getKeys(test.name)
	defer func() {
		for _, k := range keys {
			if err := kvStore.RemoveItem(k); err != nil {
				util.Logger.Warningf("(%s) error removing key %s: %v", test.name, k, err)
			}
		}
	}()

	if test.prepare != nil {
		if err := test.prepare(keys); err != nil {
			return perfResult{}, fmt.Errorf("(%s) could not prepare keys: %w", test.name, err)
		}
	}

	latency := gometrics.GetOrRegisterTimer(test.name+".latency", registry)
	failures := gometrics.GetOrRegisterCounter(test.name+".errors", registry)

	bench := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := test.op(keys[counter%len(keys)], counter)
				latency.UpdateSince(start)
				if err != nil {
					failures.Inc(1)
					util.Logger.Debugf("(%s) error performing operation: %v", test.name, err)
				}
				counter++
			}
		})
	})

	return perfResult{
		name:    test.name,
		bench:   bench,
		latency: latency,
		errors:  failures.Count(),
	}, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// perfTarget describes the store the benchmarks run against
func perfTarget() string {
	if dir := viper.GetString("dir"); dir != "" {
		return "dir " + dir
	}
	return fmt.Sprintf("namespace %s at %s", util.GetNamespace(), util.GetClientConfig().String())
}

// getKeys creates the test keys for a benchmark
func getKeys(prefix string) []string {
	keys := make([]string, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return keys
}

// opsPerSec returns the ns/op and ops/sec of a benchmark, zero if it did not run
func opsPerSec(result testing.BenchmarkResult) (float64, float64) {
	if result.N == 0 {
		return 0, 0
	}
	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(result perfResult) {
	if result.latency == nil {
		fmt.Printf("%-16sskipped\n", result.name)
		return
	}

	nsPerOp, ops := opsPerSec(result.bench)
	p := result.latency.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-16s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s",
		result.name, nsPerOp, time.Duration(nsPerOp), ops, time.Duration(p[0]), time.Duration(p[1]))
	if result.errors > 0 {
		fmt.Printf("\t%d errors", result.errors)
	}
	fmt.Println()
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P95", "P99", "Errors",
		"Dir", "Namespace", "Endpoints", "TimeoutSec", "RetryCount", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	config := util.GetClientConfig()
	for _, result := range results {
		nsPerOp, ops := opsPerSec(result.bench)
		p := result.latency.Percentiles([]float64{0.5, 0.95, 0.99})

		row := []string{
			result.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", ops),
			time.Duration(p[0]).String(),
			time.Duration(p[1]).String(),
			time.Duration(p[2]).String(),
			strconv.FormatInt(result.errors, 10),
			viper.GetString("dir"),
			util.GetNamespace(),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", result.name, err)
		}
	}

	return writer.Error()
}
