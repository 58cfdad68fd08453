package render

import (
	"github.com/bluesky-social/indigo/api/bsky"
)

func (r *Renderer) Profile(p *bsky.ActorDefs_ProfileViewDetailed) {
	r.printf("%s\n", r.actor(p.DisplayName, p.Handle))
	r.printf("%s\n", r.dim.Sprint(p.Did))
	if p.Description != nil && *p.Description != "" {
		r.printf("%s\n", r.wrap(*p.Description, "  "))
	}
	r.printf("%s followers · %s following · %s posts\n",
		r.accent.Sprint(count(p.FollowersCount)),
		r.accent.Sprint(count(p.FollowsCount)),
		r.accent.Sprint(count(p.PostsCount)),
	)
}

// Profiles prints each profile next to the actor it was requested for.
// nil entries, left by failed requests, are reported as unavailable.
func (r *Renderer) Profiles(actors []string, profiles []*bsky.ActorDefs_ProfileViewDetailed) {
	for i, actor := range actors {
		if i > 0 {
			r.printf("\n")
		}
		r.printf("%s\n", r.dim.Sprint("# "+actor))
		if i >= len(profiles) || profiles[i] == nil {
			r.printf("%s\n", r.dim.Sprint("(unavailable)"))
			continue
		}
		r.Profile(profiles[i])
	}
}
