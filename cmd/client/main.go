// digitnet-client: sends PNG digits to a running digitnet-server
//
// Usage:
//
//	client --addr=http://localhost:8000 a.png b.png
//	client --addr=http://localhost:8000 --digit=7 seven.png
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"digitnet/digits"
	"digitnet/utils"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var (
	addr    = flag.String("addr", "http://localhost:8000", "Server base URL")
	digit   = flag.Int("digit", -1, "Label the images with this digit and post them to /train")
	timeout = flag.Duration("timeout", 10*time.Second, "Request timeout")
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: client [flags] image.png...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}
	failed := false
	for _, path := range flag.Args() {
		start := time.Now()
		var err error
		if *digit >= 0 {
			err = train(client, path, *digit)
		} else {
			err = predict(client, path)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "[CLIENT] %s: %v\n", path, err)
			failed = true
			continue
		}
		log("%s took %.0fµs", path, utils.DurationUS(time.Since(start)))
	}
	if failed {
		os.Exit(1)
	}
}

func predict(client *http.Client, path string) error {
	var out []float64
	if err := send(client, path, "/predict", &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return errors.New("empty prediction")
	}
	best := floats.MaxIdx(out)
	fmt.Printf("%s: %d (%.4f)\n", path, best, out[best])
	return nil
}

func train(client *http.Client, path string, d int) error {
	var resp struct {
		Digit int     `json:"digit"`
		Loss  float64 `json:"loss"`
		Index int     `json:"index"`
	}
	target := "/train?" + url.Values{"digit": {fmt.Sprint(d)}}.Encode()
	if err := send(client, path, target, &resp); err != nil {
		return err
	}
	fmt.Printf("%s: trained as %d, loss %.5f\n", path, resp.Digit, resp.Loss)
	if resp.Index >= 0 {
		log("stored as sample %d", resp.Index)
	}
	return nil
}

// send posts the image at path as a JSON feature vector and decodes the
// JSON reply into v.
func send(client *http.Client, path, target string, v any) error {
	features, err := digits.ReadImage(path)
	if err != nil {
		return err
	}
	body, err := json.Marshal(features)
	if err != nil {
		return err
	}

	resp, err := client.Post(*addr+target, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "decoding response")
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[CLIENT] "+format+"\n", args...)
	}
}
