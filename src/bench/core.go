package bench

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how a benchmark is executed.
type Mode string

const (
	// ModeRegular runs the benchmark repeatedly and reports a trimmed
	// average.
	ModeRegular Mode = "regular"

	// ModeProfile runs the benchmark once, for use under an external
	// profiler.
	ModeProfile Mode = "profile"
)

// Trials is the number of timed runs in regular mode.
const Trials = 20

// Path identifies a benchmark in the registry, ex: ["node", "construct",
// "medium"].
type Path []string

// Full returns the canonical string form of the path.
func (p Path) Full() string {
	return "::" + strings.Join(p, "::")
}

// Has reports whether the path contains the given component.
func (p Path) Has(component string) bool {
	for _, c := range p {
		if c == component {
			return true
		}
	}
	return false
}

// Benchmark is a prepared, runnable benchmark instance. Run executes one
// iteration of the measured operation; setup cost stays out of it.
type Benchmark interface {
	Run() error
}

// BenchmarkDescription is a registry entry: it names a benchmark and knows
// how to build a runnable instance of it.
type BenchmarkDescription interface {
	Path() Path
	Name() string
	Setup() (Benchmark, error)
}

// Result is the outcome of running one benchmark.
type Result struct {
	Name         string `json:"name"`
	RawAverageNs int64  `json:"raw_average"`
	AverageNs    int64  `json:"average"`
}

// RunBenchmark builds and executes a benchmark in the given mode. In regular
// mode the reported average discards the fastest and slowest 10% of trials.
func RunBenchmark(desc BenchmarkDescription, mode Mode, logger *logrus.Entry) (*Result, error) {
	logger.WithField("benchmark", desc.Name()).Info("Starting benchmark")

	trials := Trials
	if mode == ModeProfile {
		trials = 1
	}

	durations := make([]int64, 0, trials)
	for i := 0; i < trials; i++ {
		b, err := desc.Setup()
		if err != nil {
			return nil, err
		}

		start := time.Now()
		if err := b.Run(); err != nil {
			return nil, err
		}
		durations = append(durations, time.Since(start).Nanoseconds())
	}

	raw := average(durations)

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	trim := len(durations) / 10
	trimmed := average(durations[trim : len(durations)-trim])

	logger.WithFields(logrus.Fields{
		"benchmark":   desc.Name(),
		"raw_average": time.Duration(raw).String(),
		"average":     time.Duration(trimmed).String(),
	}).Info("Benchmark finished")

	return &Result{
		Name:         desc.Name(),
		RawAverageNs: raw,
		AverageNs:    trimmed,
	}, nil
}

func average(durations []int64) int64 {
	if len(durations) == 0 {
		return 0
	}
	var sum int64
	for _, d := range durations {
		sum += d
	}
	return sum / int64(len(durations))
}
