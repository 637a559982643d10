// Command slotstore-api serves the object store as an API Gateway Lambda.
//
// Settings are read from the file named by SLOTSTORE_CONFIG; the types listed
// there are registered at cold start.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/slotstore/api"
	"github.com/jacentio/slotstore/internal/settings"
	"github.com/jacentio/slotstore/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	cfg, err := settings.Load(os.Getenv("SLOTSTORE_CONFIG"))
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	sub, closeFn, err := cfg.Open(ctx)
	if err != nil {
		logger.Error("failed to open substrate", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer closeFn()

	s := store.New(sub, cfg.StoreConfig(), store.WithLogger(logger))
	h, err := api.NewHandler(ctx, s, cfg.Types, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
