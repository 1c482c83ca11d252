// digitnet-bench: times the forward pass and training step for a set of
// architectures and core counts and writes the averages as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"digitnet/m"
	"digitnet/utils"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// parseCSVInts parses a comma-separated list of integers
func parseCSVInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid int %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseArchitectures parses a semicolon-separated list of architectures
func parseArchitectures(s string) ([][]int, error) {
	var out [][]int
	for _, a := range strings.Split(s, ";") {
		if strings.TrimSpace(a) == "" {
			continue
		}
		sizes, err := utils.ParseArchitecture(a)
		if err != nil {
			return nil, err
		}
		if len(sizes) < 2 || slices.Min(sizes) <= 0 {
			return nil, errors.Wrapf(m.ErrInvalidLayers, "architecture %q", a)
		}
		out = append(out, sizes)
	}
	return out, nil
}

type timings struct {
	process, mutating, train time.Duration
}

// measure averages each operation over iters runs after warmup untimed runs.
func measure(net *m.Network, input, target []float64, lr float64, iters, warmup int) (timings, error) {
	for i := 0; i < warmup; i++ {
		if _, err := net.TrainStep(input, target, lr); err != nil {
			return timings{}, err
		}
	}

	var t timings
	for i := 0; i < iters; i++ {
		start := time.Now()
		if _, err := net.Process(input); err != nil {
			return timings{}, err
		}
		start = utils.Track(&t.process, start)
		if _, err := net.ProcessMutating(input); err != nil {
			return timings{}, err
		}
		start = utils.Track(&t.mutating, start)
		if _, err := net.TrainStep(input, target, lr); err != nil {
			return timings{}, err
		}
		utils.Track(&t.train, start)
	}
	denom := time.Duration(iters)
	if iters == 0 {
		denom = 1
	}
	return timings{t.process / denom, t.mutating / denom, t.train / denom}, nil
}

func main() {
	var archsArg string
	var coresCSV string
	var outPath string
	var iters int
	var warmup int
	var lr float64
	var seed uint64

	flag.StringVar(&archsArg, "archs", "784 800 10;784 128 10", "Semicolon-separated architectures, input layer first")
	flag.StringVar(&coresCSV, "cores", strconv.Itoa(runtime.NumCPU()), "Comma-separated list of GOMAXPROCS values")
	flag.StringVar(&outPath, "out", "bench_results.csv", "Output CSV path")
	flag.IntVar(&iters, "iters", 100, "Iterations per architecture for averaging")
	flag.IntVar(&warmup, "warmup", 5, "Warmup training steps before timing")
	flag.Float64Var(&lr, "lr", 0.5, "Learning rate for the timed training steps")
	flag.Uint64Var(&seed, "seed", 42, "Random seed")
	flag.Parse()

	archs, err := parseArchitectures(archsArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid archs: %v\n", err)
		os.Exit(2)
	}
	coresList, err := parseCSVInts(coresCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid cores: %v\n", err)
		os.Exit(2)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"architecture", "num_cores", "process_us", "process_mutating_us", "train_step_us"})

	r := rand.New(rand.NewSource(seed))
	for _, sizes := range archs {
		input := make([]float64, sizes[0])
		for i := range input {
			input[i] = r.Float64()
		}
		target := make([]float64, sizes[len(sizes)-1])
		target[r.Intn(len(target))] = 1

		for _, cores := range coresList {
			runtime.GOMAXPROCS(cores)
			net, err := m.NewNetwork(sizes, rand.NewSource(seed))
			if err != nil {
				fmt.Fprintf(os.Stderr, "skip %v: %v\n", sizes, err)
				break
			}
			t, err := measure(net, input, target, lr, iters, warmup)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skip %v: %v\n", sizes, err)
				break
			}
			w.Write([]string{
				strings.Trim(fmt.Sprint(sizes), "[]"),
				strconv.Itoa(cores),
				fmt.Sprintf("%.3f", utils.DurationUS(t.process)),
				fmt.Sprintf("%.3f", utils.DurationUS(t.mutating)),
				fmt.Sprintf("%.3f", utils.DurationUS(t.train)),
			})
		}
		w.Flush()
	}

	fmt.Printf("Wrote results to %s\n", outPath)
}
