package digits

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Line struct {
	Inputs  []float64
	Targets []float64
}

type Lines []Line

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// ReadCSV reads MNIST in CSV form: the label first, then Pixels pixel
// intensities in 0..255. Intensities are scaled to [0, 1].
func ReadCSV(r io.Reader) (Lines, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var lines Lines
	lineNum := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return lines, errors.Wrapf(err, "reading line %d", lineNum)
		}
		if len(record) != Pixels+1 {
			return lines, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(record),
				expected: Pixels + 1,
			}
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return lines, errors.Wrapf(err, "parsing label at line %d", lineNum)
		}
		targets, err := OneHot(label)
		if err != nil {
			return lines, errors.Wrapf(err, "line %d", lineNum)
		}
		inputs := make([]float64, Pixels)
		for i := range inputs {
			x, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return lines, errors.Wrapf(err, "parsing pixel %d at line %d", i, lineNum)
			}
			inputs[i] = x / 255.0
		}

		lines = append(lines, Line{
			Inputs:  inputs,
			Targets: targets,
		})
	}
	return lines, nil
}

// ReadCSVFile is ReadCSV on the file at path.
func ReadCSVFile(path string) (Lines, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening csv")
	}
	defer f.Close()
	return ReadCSV(f)
}

// Sample picks one line uniformly.
func (lines Lines) Sample(r *rand.Rand) (input, target []float64, err error) {
	if len(lines) == 0 {
		return nil, nil, errors.New("no lines to sample")
	}
	l := lines[r.Intn(len(lines))]
	return l.Inputs, l.Targets, nil
}

// Label is the index of the hot entry in the line's target.
func (l Line) Label() int {
	for i, t := range l.Targets {
		if t == 1 {
			return i
		}
	}
	return -1
}
