// digitnet-infer: classifies 28x28 PNG digits with a saved network
//
// Usage:
//
//	infer --network=networks/after_learn_network --topk=3 a.png b.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"digitnet/digits"
	"digitnet/m"
	"digitnet/utils"

	"gonum.org/v1/gonum/floats"
)

var (
	networkFile = flag.String("network", "networks/after_learn_network", "Network file in the text format")
	topK        = flag.Int("topk", 3, "Top predictions to show")
	exportJSON  = flag.String("export", "", "Also write the network's weights as JSON to this file")
	verbose     = flag.Bool("verbose", false, "Verbose output")
)

var logger = log.New(os.Stderr, "[INFER] ", 0)

func main() {
	flag.Parse()

	net, err := m.Load(*networkFile)
	if err != nil {
		logger.Fatalf("Error loading network: %v", err)
	}
	if *verbose {
		logger.Printf("Loaded network %v", net.LayerSizes())
	}

	if *exportJSON != "" {
		if err := utils.SaveWeights(*exportJSON, utils.WeightsFromNetwork(net)); err != nil {
			logger.Fatalf("Error exporting weights: %v", err)
		}
		if *verbose {
			logger.Printf("Wrote %s", *exportJSON)
		}
	}

	if flag.NArg() == 0 && *exportJSON == "" {
		fmt.Fprintln(os.Stderr, "usage: infer [flags] image.png...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		input, err := digits.ReadImage(path)
		if err != nil {
			logger.Printf("%v", err)
			failed = true
			continue
		}

		start := time.Now()
		predictions, err := net.Process(input)
		if err != nil {
			logger.Printf("%s: %v", path, err)
			failed = true
			continue
		}
		if *verbose {
			logger.Printf("%s: inference took %v", path, time.Since(start))
		}
		showResults(path, predictions, *topK)
	}
	if failed {
		os.Exit(1)
	}
}

func showResults(path string, predictions []float64, k int) {
	indices := topKIndices(predictions, k)

	fmt.Printf("\n%s: top %d predictions:\n", path, len(indices))
	for i, idx := range indices {
		fmt.Printf("  %d. Digit %d: %.4f\n", i+1, idx, predictions[idx])
	}
}

func topKIndices(vals []float64, k int) []int {
	k = max(0, min(k, len(vals)))
	sorted := slices.Clone(vals)
	indices := make([]int, len(vals))
	floats.Argsort(sorted, indices)
	slices.Reverse(indices)
	return indices[:k]
}
