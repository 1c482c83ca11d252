package m

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Serialize renders the network as text. The first line holds the layer
// sizes separated by spaces. It is followed, for every unit of every
// non-input layer in order, by the unit's incoming weights and then its
// bias, one value per line. There is no trailing newline.
func (net *Network) Serialize() string {
	header := make([]string, len(net.sizes))
	for i, s := range net.sizes {
		header[i] = strconv.Itoa(s)
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, " "))
	for l, w := range net.weights {
		rows, cols := w.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				writeValue(&b, w.At(i, j))
			}
			writeValue(&b, net.biases[l][i])
		}
	}
	return b.String()
}

func writeValue(b *strings.Builder, v float64) {
	b.WriteByte('\n')
	b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}

// WriteTo writes the Serialize form of the network to w.
func (net *Network) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, net.Serialize())
	return int64(n), errors.Wrap(err, "writing network")
}

// Deserialize parses the text produced by Serialize. Lines that are not
// numbers (labels, comments, blank lines) are skipped: the header is the
// first line made only of two or more unsigned integers, and every later
// line holding a single number fills the next parameter.
func Deserialize(text string) (*Network, error) {
	return ReadNetwork(strings.NewReader(text))
}

// ReadNetwork is Deserialize reading from r.
func ReadNetwork(r io.Reader) (*Network, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	vs := valueScanner{s: s}

	sizes, err := vs.header()
	if err != nil {
		return nil, err
	}
	total, err := parameterCount(sizes)
	if err != nil {
		return nil, errors.Wrap(err, "network header")
	}

	// values are collected before anything is allocated for the header, so a
	// short stream costs only what it holds
	values := make([]float64, 0, min(total, 4096))
	for l := 1; l < len(sizes); l++ {
		for i := 0; i < sizes[l]; i++ {
			for j := 0; j < sizes[l-1]; j++ {
				v, err := vs.next()
				if err != nil {
					return nil, errors.Wrap(err, weightsName(l-1, i))
				}
				values = append(values, v)
			}
			v, err := vs.next()
			if err != nil {
				return nil, errors.Wrap(err, biasName(l-1))
			}
			values = append(values, v)
		}
	}

	net, err := newNetwork(sizes)
	if err != nil {
		return nil, err
	}
	for l, w := range net.weights {
		rows, cols := w.Dims()
		for i := 0; i < rows; i++ {
			w.SetRow(i, values[:cols])
			net.biases[l][i] = values[cols]
			values = values[cols+1:]
		}
	}
	return net, nil
}

// valueScanner pulls lines forward only: first until a header is found,
// then one parseable number at a time.
type valueScanner struct {
	s *bufio.Scanner
}

func (vs *valueScanner) header() ([]int, error) {
	for vs.s.Scan() {
		if sizes, ok := parseHeader(vs.s.Text()); ok {
			return sizes, nil
		}
	}
	if err := vs.s.Err(); err != nil {
		return nil, errors.Wrap(err, "reading network")
	}
	return nil, errors.Wrap(ErrMalformed, "no header line")
}

func (vs *valueScanner) next() (float64, error) {
	for vs.s.Scan() {
		v, err := strconv.ParseFloat(strings.TrimSpace(vs.s.Text()), 64)
		if err == nil {
			return v, nil
		}
	}
	if err := vs.s.Err(); err != nil {
		return 0, errors.Wrap(err, "reading network")
	}
	return 0, errors.Wrap(ErrMalformed, "values ended early")
}

func parseHeader(line string) ([]int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, false
	}
	sizes := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, false
		}
		sizes[i] = int(n)
	}
	return sizes, true
}

// Save writes the network to path in the text format.
func (net *Network) Save(path string) error {
	err := os.WriteFile(path, []byte(net.Serialize()), 0644)
	return errors.Wrapf(err, "saving network to %s", path)
}

// Load reads a network saved with Save.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening network")
	}
	defer f.Close()

	net, err := ReadNetwork(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return net, nil
}
