package digits

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Sampler hands out training examples.
type Sampler interface {
	Sample(r *rand.Rand) (input, target []float64, err error)
}

// Dir is a dataset stored as PNG files laid out as
// <Root>/<digit>/<digit>/<index>.png with indices counting up from zero.
type Dir struct {
	Root string

	mu     sync.Mutex
	counts map[int]int
}

func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Path is the file holding sample index of digit.
func (d *Dir) Path(digit, index int) string {
	ds := strconv.Itoa(digit)
	return filepath.Join(d.Root, ds, ds, strconv.Itoa(index)+".png")
}

// Load returns the features and one-hot target of one stored sample.
func (d *Dir) Load(digit, index int) (input, target []float64, err error) {
	target, err = OneHot(digit)
	if err != nil {
		return nil, nil, err
	}
	input, err = ReadImage(d.Path(digit, index))
	if err != nil {
		return nil, nil, err
	}
	return input, target, nil
}

// Count is the number of consecutive samples stored for digit, starting at
// index zero. The result is cached; Store keeps it current.
func (d *Dir) Count(digit int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count(digit)
}

func (d *Dir) count(digit int) (int, error) {
	if digit < 0 || digit >= Classes {
		return 0, errors.Errorf("digit %d out of range", digit)
	}
	if n, ok := d.counts[digit]; ok {
		return n, nil
	}

	entries, err := os.ReadDir(filepath.Dir(d.Path(digit, 0)))
	if err != nil && !os.IsNotExist(err) {
		return 0, errors.Wrapf(err, "listing digit %d", digit)
	}
	present := make(map[int]bool, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".png")
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(name); err == nil {
			present[i] = true
		}
	}
	n := 0
	for present[n] {
		n++
	}

	if d.counts == nil {
		d.counts = make(map[int]int)
	}
	d.counts[digit] = n
	return n, nil
}

// Store saves features as the next sample of digit and returns its index.
func (d *Dir) Store(digit int, features []float64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.count(digit)
	if err != nil {
		return 0, err
	}
	path := d.Path(digit, n)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, errors.Wrap(err, "creating sample directory")
	}
	if err := WriteImage(path, features); err != nil {
		return 0, err
	}
	d.counts[digit] = n + 1
	return n, nil
}

// Sample picks a digit uniformly, then one of its samples uniformly.
func (d *Dir) Sample(r *rand.Rand) (input, target []float64, err error) {
	digit := r.Intn(Classes)
	n, err := d.Count(digit)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, errors.Errorf("no samples for digit %d under %s", digit, d.Root)
	}
	return d.Load(digit, r.Intn(n))
}
