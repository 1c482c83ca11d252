// digitnet-train: trains a digit classifier one sample at a time until a
// wall-clock budget or step count runs out.
//
// Usage:
//
//	train --arch="784 800 10" --data=dataset --duration=10m --lr=0.5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"digitnet/digits"
	"digitnet/m"
	"digitnet/utils"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

var (
	arch         = flag.String("arch", "784 800 10", "Layer sizes, input first")
	loadPath     = flag.String("load", "", "Resume from a saved network instead of creating one")
	dataRoot     = flag.String("data", "dataset", "PNG dataset root, laid out as <root>/<digit>/<digit>/<index>.png")
	csvPath      = flag.String("csv", "", "MNIST CSV file, used instead of --data")
	verifyRoot   = flag.String("verify", "verification_dataset", "PNG dataset used for the before/after report")
	learningRate = flag.Float64("lr", 0.5, "Learning rate")
	duration     = flag.Duration("duration", 10*time.Minute, "Wall-clock training budget")
	steps        = flag.Int("steps", 0, "Stop after this many steps (0 = only --duration)")
	report       = flag.Int("report", 500, "Log progress every N steps")
	evalPerDigit = flag.Int("eval", 50, "Samples per digit used to measure accuracy")
	seed         = flag.Uint64("seed", 0, "Random seed (0 = time based)")
	outDir       = flag.String("out", "networks", "Directory for network snapshots")
	name         = flag.String("name", "after_learn_network", "File name of the trained network")
	verbose      = flag.Bool("verbose", true, "Print timing statistics")
)

var logger = log.New(os.Stderr, "[TRAIN] ", log.LstdFlags)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	config, err := configFromFlags()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	if err := run(config); err != nil {
		logger.Fatal(err)
	}
}

func configFromFlags() (utils.Config, error) {
	layers, err := utils.ParseArchitecture(*arch)
	if err != nil {
		return utils.Config{}, err
	}
	config := utils.Config{
		Architecture: layers,
		DataRoot:     *dataRoot,
		CSVPath:      *csvPath,
		NetworksDir:  *outDir,
		Name:         *name,
		LearningRate: *learningRate,
		Duration:     *duration,
		Steps:        *steps,
		ReportEvery:  *report,
		Seed:         *seed,
	}
	if config.Seed == 0 {
		config.Seed = uint64(time.Now().UnixNano())
	}
	return config, utils.ValidateConfig(&config)
}

func run(config utils.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats := &utils.TimingStats{}
	totalStart := time.Now()
	src := rand.NewSource(config.Seed)
	r := rand.New(src)

	t := time.Now()
	net, err := buildNetwork(config, src)
	if err != nil {
		return err
	}
	if net.Inputs() != digits.Pixels || net.Outputs() != digits.Classes {
		return errors.Errorf("network is %v, digits need %d inputs and %d outputs",
			net.LayerSizes(), digits.Pixels, digits.Classes)
	}
	t = utils.Track(&stats.ModelInitTime, t)

	sampler, err := buildSampler(config)
	if err != nil {
		return err
	}
	utils.Track(&stats.DataLoadingTime, t)

	if err := os.MkdirAll(config.NetworksDir, os.ModePerm); err != nil {
		return err
	}
	if err := net.Save(filepath.Join(config.NetworksDir, "new_network")); err != nil {
		return err
	}

	checkDigits(net, *verifyRoot)
	if config.CSVPath == "" {
		checkDigits(net, config.DataRoot)
	}

	logger.Printf("the training will last %s", budget(config))
	i, err := learn(ctx, net, sampler, r, config, stats)
	if err != nil {
		return err
	}
	logger.Printf("iteration %d;", i)

	checkDigits(net, *verifyRoot)
	if config.CSVPath == "" {
		checkDigits(net, config.DataRoot)
	}

	t = time.Now()
	accuracy, err := evaluate(net, sampler, *evalPerDigit)
	if err != nil {
		return err
	}
	t = utils.Track(&stats.EvaluationTime, t)
	logger.Printf("accuracy %.2f%%", accuracy)

	if err := net.Save(filepath.Join(config.NetworksDir, config.Name)); err != nil {
		return err
	}
	utils.Track(&stats.SaveTime, t)

	stats.TotalTime = time.Since(totalStart)
	err = utils.AppendAnalysis(filepath.Join(config.NetworksDir, "analysis.csv"), utils.Record{
		Name:         config.Name,
		Architecture: net.LayerSizes(),
		LearningRate: config.LearningRate,
		Steps:        i,
		End:          time.Now(),
		Elapsed:      stats.TotalTime,
		Accuracy:     accuracy,
	})
	if err != nil {
		return err
	}

	utils.PrintTimingStats(stats, i)
	return nil
}

func buildNetwork(config utils.Config, src rand.Source) (*m.Network, error) {
	if *loadPath != "" {
		logger.Printf("loading %s", *loadPath)
		return m.Load(*loadPath)
	}
	return m.NewNetwork(config.Architecture, src)
}

func buildSampler(config utils.Config) (digits.Sampler, error) {
	if config.CSVPath != "" {
		lines, err := digits.ReadCSVFile(config.CSVPath)
		if err != nil {
			return nil, err
		}
		logger.Printf("read %d samples from %s", len(lines), config.CSVPath)
		return lines, nil
	}
	return digits.NewDir(config.DataRoot), nil
}

func budget(config utils.Config) string {
	if config.Duration <= 0 {
		return fmt.Sprintf("%d steps", config.Steps)
	}
	msg := utils.HumanDuration(config.Duration)
	if config.Steps > 0 {
		msg += fmt.Sprintf(" or %d steps", config.Steps)
	}
	return msg
}

// learn runs training steps until the budget is spent or ctx is cancelled and
// returns the number of steps taken.
func learn(ctx context.Context, net *m.Network, sampler digits.Sampler, r *rand.Rand,
	config utils.Config, stats *utils.TimingStats) (int, error) {
	start := time.Now()
	var loss float64
	i := 0
	for ; ; i++ {
		if config.Steps > 0 && i >= config.Steps {
			break
		}
		if config.Duration > 0 && time.Since(start) >= config.Duration {
			break
		}
		if ctx.Err() != nil {
			logger.Printf("interrupted")
			break
		}
		if i%config.ReportEvery == 0 {
			if i > 0 {
				logger.Printf("iteration %d; mean loss %.5f", i, loss/float64(config.ReportEvery))
			} else {
				logger.Printf("iteration %d;", i)
			}
			loss = 0
		}

		t := time.Now()
		input, target, err := sampler.Sample(r)
		if err != nil {
			return i, err
		}
		t = utils.Track(&stats.DataLoadingTime, t)

		l, err := net.TrainStep(input, target, config.LearningRate)
		if err != nil {
			return i, err
		}
		utils.Track(&stats.TrainStepTime, t)
		loss += l
	}
	return i, nil
}

// checkDigits prints the network's output for the first sample of every digit
// stored under root. Missing samples are skipped.
func checkDigits(net *m.Network, root string) {
	dir := digits.NewDir(root)
	for digit := 0; digit < digits.Classes; digit++ {
		input, _, err := dir.Load(digit, 0)
		if err != nil {
			continue
		}
		result, err := net.ProcessMutating(input)
		if err != nil {
			logger.Printf("%s %d: %v", root, digit, err)
			continue
		}
		fmt.Printf("%s %d: %.3f\n", root, digit, result)
	}
}

// evaluate returns the percentage of correctly classified samples: the first
// perDigit samples of every digit for a directory, the first
// perDigit*Classes lines for a CSV.
func evaluate(net *m.Network, sampler digits.Sampler, perDigit int) (float64, error) {
	var correct, total float64
	score := func(input, target []float64) error {
		prediction, err := net.Predict(input)
		if err != nil {
			return err
		}
		if target[prediction] == 1 {
			correct++
		}
		total++
		return nil
	}

	switch s := sampler.(type) {
	case *digits.Dir:
		for digit := 0; digit < digits.Classes; digit++ {
			n, err := s.Count(digit)
			if err != nil {
				return 0, err
			}
			for i := 0; i < n && i < perDigit; i++ {
				input, target, err := s.Load(digit, i)
				if err != nil {
					return 0, err
				}
				if err := score(input, target); err != nil {
					return 0, err
				}
			}
		}
	case digits.Lines:
		for i := 0; i < len(s) && i < perDigit*digits.Classes; i++ {
			if err := score(s[i].Inputs, s[i].Targets); err != nil {
				return 0, err
			}
		}
	}

	if total == 0 {
		return 0, nil
	}
	return 100 * correct / total, nil
}
