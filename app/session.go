package app

import (
	"context"

	"github.com/urfave/cli/v3"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:   "session",
		Usage:  "authenticate and show the current session",
		Action: runSession,
	}
}

func runSession(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	h, _, err := e.authenticate(ctx)
	if err != nil {
		return err
	}

	e.printSession(h)
	return nil
}
