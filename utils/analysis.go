package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Record is one row of the training analysis log.
type Record struct {
	Name         string
	Architecture []int
	LearningRate float64
	Steps        int
	End          time.Time
	Elapsed      time.Duration
	Accuracy     float64 // percent
}

var analysisHeaders = []string{
	"Name", "Architecture", "LR", "Steps", "End Time", "SecondsToTrain", "Accuracy",
}

func (r Record) fields() []string {
	arch := make([]string, len(r.Architecture))
	for i, n := range r.Architecture {
		arch[i] = strconv.Itoa(n)
	}
	return []string{
		r.Name,
		strings.Join(arch, " "),
		strconv.FormatFloat(r.LearningRate, 'f', 4, 64),
		strconv.Itoa(r.Steps),
		strconv.FormatInt(r.End.Unix(), 10),
		strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 0, 64),
		strconv.FormatFloat(r.Accuracy, 'f', 5, 64),
	}
}

// AppendAnalysis appends r to the CSV file at path, writing the header row
// first when the file is new.
func AppendAnalysis(path string, r Record) error {
	var needsHeaders bool
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeaders = true
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrap(err, "creating analysis directory")
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "opening analysis csv")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if needsHeaders {
		if err := w.Write(analysisHeaders); err != nil {
			return errors.Wrap(err, "writing csv headers")
		}
	}
	if err := w.Write(r.fields()); err != nil {
		return errors.Wrap(err, "writing csv record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "error writing csv")
	}
	return nil
}
