// Command sharecli manages contacts and shares against a photoshare server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/photoshare/internal/config"
	"github.com/vbonduro/photoshare/internal/logging"
)

func main() {
	cfg := config.LoadClient()
	logger, cleanup, err := logging.New(getLogLevel(), "")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// getLogLevel keeps the CLI quiet unless LOG_LEVEL asks otherwise.
func getLogLevel() string {
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		return lvl
	}
	return "error"
}
