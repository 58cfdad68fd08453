package main

import (
	"context"
	"os"

	"tangled.sh/tangled.sh/skyline/app"
	"tangled.sh/tangled.sh/skyline/log"
)

func main() {
	cmd := app.Command()

	ctx := context.Background()
	logger := log.New("skyline")
	ctx = log.IntoContext(ctx, logger.With("command", cmd.Name))

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
