// digitnet-server: serves predictions and online training for a saved network
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digitnet/digits"
	"digitnet/m"
	"digitnet/server"
)

var (
	addr         = flag.String("addr", ":8000", "Listen address")
	networkFile  = flag.String("network", "networks/3", "Network file in the text format")
	staticDir    = flag.String("static", "static", "Directory served on / (empty to disable)")
	samplesDir   = flag.String("samples", "", "Store samples posted to /train under this dataset root")
	learningRate = flag.Float64("lr", 0.5, "Learning rate for /train")
	savePath     = flag.String("save", "", "Write the network here on shutdown")
	verbose      = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	logger := log.New(os.Stderr, "[SERVER] ", log.LstdFlags)

	net, err := m.Load(*networkFile)
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}
	logger.Printf("loaded network %v from %s", net.LayerSizes(), *networkFile)

	opts := server.Options{
		LearningRate: *learningRate,
		StaticDir:    *staticDir,
		Logger:       log.New(io.Discard, "", 0),
	}
	if *verbose {
		opts.Logger = logger
	}
	if *samplesDir != "" {
		opts.Samples = digits.NewDir(*samplesDir)
	}
	srv := server.New(net, opts)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Error: %v", err)
	}

	if *savePath != "" {
		if err := srv.Save(*savePath); err != nil {
			logger.Fatalf("Error: %v", err)
		}
		logger.Printf("saved network to %s", *savePath)
	}
	logger.Printf("server done")
}
