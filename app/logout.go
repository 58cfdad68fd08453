package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "forget the cached session",
		Action: runLogout,
	}
}

func runLogout(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete cached session: %w", err)
	}

	e.logger.Info("cached session deleted")
	return nil
}
