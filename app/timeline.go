package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"tangled.sh/tangled.sh/skyline/cursor"
	"tangled.sh/tangled.sh/skyline/xrpcclient"
)

func timelineCommand() *cli.Command {
	return &cli.Command{
		Name:   "timeline",
		Usage:  "print a page of the home timeline",
		Action: runTimeline,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "posts per page, 1 to 100 (default: SKYLINE_TIMELINE_LIMIT)",
			},
			&cli.BoolFlag{
				Name:  "more",
				Usage: "continue from where the previous page ended",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "forget the saved position before reading",
			},
		},
	}
}

func runTimeline(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int64("limit")
	if cmd.IsSet("limit") && (limit < 1 || limit > 100) {
		return fmt.Errorf("limit must be between 1 and 100, got %d", limit)
	}

	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if !cmd.IsSet("limit") {
		limit = e.cfg.Timeline.Limit
	}

	_, agent, err := e.authenticate(ctx)
	if err != nil {
		return err
	}

	cursors, err := e.cursorStore(ctx)
	if err != nil {
		return err
	}

	key := cursor.TimelineKey(agent.Session().Did)
	if cmd.Bool("reset") {
		if err := cursors.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset timeline position: %w", err)
		}
	}

	var from string
	if cmd.Bool("more") {
		from, err = cursors.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read timeline position: %w", err)
		}
		if from == "" {
			e.logger.Info("no saved timeline position, starting from the top")
		}
	}

	return e.timeline(ctx, agent, from, limit)
}

// timeline prints one page and remembers where it ended. Failing to save
// the position is logged, since the page itself was delivered.
func (e *env) timeline(ctx context.Context, agent *xrpcclient.Agent, from string, limit int64) error {
	page, err := agent.Timeline(ctx, from, limit)
	if err != nil {
		return err
	}

	e.out.Timeline(page.Feed)

	cursors, err := e.cursorStore(ctx)
	if err == nil {
		key := cursor.TimelineKey(agent.Session().Did)
		if page.Cursor == "" {
			err = cursors.Delete(ctx, key)
		} else {
			err = cursors.Set(ctx, key, page.Cursor)
		}
	}
	if err != nil {
		e.logger.Warn("failed to save timeline position", "err", err)
	}

	return nil
}
