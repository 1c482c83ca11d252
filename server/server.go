// Package server exposes a network over HTTP for prediction and online
// training.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"

	"digitnet/digits"
	"digitnet/m"

	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// LearningRate is used for every sample posted to /train.
	LearningRate float64
	// Samples stores posted training samples when set.
	Samples *digits.Dir
	// StaticDir is served on / when set.
	StaticDir string
	Logger    *log.Logger
}

// Server guards one network. Predictions share a read lock and use the
// allocating forward pass; training takes the write lock.
type Server struct {
	mu   sync.RWMutex
	net  *m.Network
	opts Options
	log  *log.Logger
}

func New(net *m.Network, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{net: net, opts: opts, log: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", s.predict)
	mux.HandleFunc("POST /train", s.train)
	mux.HandleFunc("GET /network", s.network)
	if s.opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return mux
}

// Save writes the current network to path.
func (s *Server) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net.Save(path)
}

type trainResponse struct {
	Digit int     `json:"digit"`
	Loss  float64 `json:"loss"`
	Index int     `json:"index"`
}

func readVector(r *http.Request) ([]float64, error) {
	var v []float64
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&v); err != nil {
		return nil, errors.Wrap(err, "body must be a JSON array of numbers")
	}
	return v, nil
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	input, err := readVector(r)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	out, err := s.net.Process(input)
	s.mu.RUnlock()
	if err != nil {
		s.fail(w, err, statusFor(err))
		return
	}
	s.reply(w, out)
}

func (s *Server) train(w http.ResponseWriter, r *http.Request) {
	digit, err := strconv.Atoi(r.URL.Query().Get("digit"))
	if err != nil {
		s.fail(w, errors.Wrap(err, "digit query parameter"), http.StatusBadRequest)
		return
	}
	target, err := digits.OneHot(digit)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	input, err := readVector(r)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	if len(input) != s.net.Inputs() {
		s.fail(w, errors.Wrapf(m.ErrSizeMismatch, "got %d inputs, want %d", len(input), s.net.Inputs()), http.StatusBadRequest)
		return
	}
	if len(target) != s.net.Outputs() {
		s.fail(w, errors.Wrapf(m.ErrSizeMismatch, "network has %d outputs, digits need %d", s.net.Outputs(), len(target)), http.StatusBadRequest)
		return
	}

	index := -1
	if s.opts.Samples != nil {
		index, err = s.opts.Samples.Store(digit, input)
		if err != nil {
			s.fail(w, err, http.StatusInternalServerError)
			return
		}
	}

	s.mu.Lock()
	loss, err := s.net.TrainStep(input, target, s.opts.LearningRate)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, err, statusFor(err))
		return
	}
	s.log.Printf("trained on digit %d (sample %d), loss %.5f", digit, index, loss)
	s.reply(w, trainResponse{Digit: digit, Loss: loss, Index: index})
}

func (s *Server) network(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	text := s.net.Serialize()
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func statusFor(err error) int {
	if errors.Is(err, m.ErrSizeMismatch) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("writing response: %v", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error, status int) {
	s.log.Printf("request failed (%d): %v", status, err)
	http.Error(w, err.Error(), status)
}
