package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"tangled.sh/tangled.sh/skyline/fanout"
)

var defaultActors = []string{"safety.bsky.app", "bsky.app"}

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:      "profiles",
		Usage:     "fetch several profiles in parallel",
		ArgsUsage: "[actor...]",
		Action:    runProfiles,
	}
}

func runProfiles(ctx context.Context, cmd *cli.Command) error {
	actors := cmd.Args().Slice()
	if len(actors) == 0 {
		actors = defaultActors
	}

	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	_, agent, err := e.authenticate(ctx)
	if err != nil {
		return err
	}

	profiles, err := agent.Profiles(ctx, actors, e.cfg.Fanout.Policy)
	if err != nil && profiles == nil {
		return err
	}

	e.out.Profiles(actors, profiles)

	if failed := fanout.Failed(err); len(failed) > 0 {
		for _, i := range failed {
			e.logger.Warn("failed to fetch profile", "actor", actors[i])
		}
		return fmt.Errorf("failed to fetch %d of %d profiles: %w", len(failed), len(actors), err)
	}
	return err
}
