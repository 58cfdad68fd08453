package render

import (
	"strings"

	"github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
)

func (r *Renderer) Timeline(feed []*bsky.FeedDefs_FeedViewPost) {
	for i, item := range feed {
		if i > 0 {
			r.printf("\n")
		}
		r.Post(item)
	}
}

func (r *Renderer) Post(item *bsky.FeedDefs_FeedViewPost) {
	if item == nil || item.Post == nil {
		return
	}
	post := item.Post

	if item.Reason != nil && item.Reason.FeedDefs_ReasonRepost != nil && item.Reason.FeedDefs_ReasonRepost.By != nil {
		by := item.Reason.FeedDefs_ReasonRepost.By
		r.printf("%s\n", r.dim.Sprint("↻ reposted by "+displayName(by.DisplayName, by.Handle)))
	}
	if item.Reply != nil && item.Reply.Parent != nil && item.Reply.Parent.FeedDefs_PostView != nil {
		parent := item.Reply.Parent.FeedDefs_PostView
		if parent.Author != nil {
			r.printf("%s\n", r.dim.Sprint("↳ reply to @"+parent.Author.Handle))
		}
	}

	author := ""
	if post.Author != nil {
		author = r.actor(post.Author.DisplayName, post.Author.Handle)
	}
	r.printf("%s %s\n", author, r.dim.Sprint("· "+r.ago(post.IndexedAt)))

	if text := recordText(post.Record); text != "" {
		r.printf("%s\n", r.wrap(text, "  "))
	}

	if post.Embed != nil {
		r.embed(post.Embed)
	}

	r.printf("%s\n", r.dim.Sprint("  💬 "+count(post.ReplyCount)+"  ↻ "+count(post.RepostCount)+"  ♥ "+count(post.LikeCount)))
}

func recordText(rec *lexutil.LexiconTypeDecoder) string {
	if rec == nil {
		return ""
	}
	if fp, ok := rec.Val.(*bsky.FeedPost); ok {
		return strings.TrimSpace(fp.Text)
	}
	return ""
}

func (r *Renderer) embed(e *bsky.FeedDefs_PostView_Embed) {
	switch {
	case e.EmbedImages_View != nil:
		r.images(e.EmbedImages_View)
	case e.EmbedVideo_View != nil:
		r.video(e.EmbedVideo_View)
	case e.EmbedExternal_View != nil:
		r.external(e.EmbedExternal_View)
	case e.EmbedRecord_View != nil:
		r.quote(e.EmbedRecord_View)
	case e.EmbedRecordWithMedia_View != nil:
		rwm := e.EmbedRecordWithMedia_View
		if rwm.Media != nil {
			switch {
			case rwm.Media.EmbedImages_View != nil:
				r.images(rwm.Media.EmbedImages_View)
			case rwm.Media.EmbedVideo_View != nil:
				r.video(rwm.Media.EmbedVideo_View)
			case rwm.Media.EmbedExternal_View != nil:
				r.external(rwm.Media.EmbedExternal_View)
			}
		}
		if rwm.Record != nil {
			r.quote(rwm.Record)
		}
	}
}

func (r *Renderer) images(v *bsky.EmbedImages_View) {
	for _, img := range v.Images {
		if img == nil {
			continue
		}
		alt := strings.TrimSpace(img.Alt)
		if alt == "" {
			alt = "(no alt text)"
		}
		r.printf("  %s %s\n", r.accent.Sprint("[image]"), alt)
		r.printf("      %s\n", r.dim.Sprint(img.Fullsize))
	}
}

func (r *Renderer) video(v *bsky.EmbedVideo_View) {
	alt := "(no alt text)"
	if v.Alt != nil && strings.TrimSpace(*v.Alt) != "" {
		alt = strings.TrimSpace(*v.Alt)
	}
	r.printf("  %s %s\n", r.accent.Sprint("[video]"), alt)
	r.printf("      %s\n", r.dim.Sprint(v.Playlist))
}

func (r *Renderer) external(v *bsky.EmbedExternal_View) {
	if v.External == nil {
		return
	}
	ext := v.External
	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = ext.Uri
	}
	r.printf("  %s %s\n", r.accent.Sprint("[link]"), title)
	if d := strings.TrimSpace(ext.Description); d != "" {
		r.printf("%s\n", r.wrap(d, "      "))
	}
	r.printf("      %s\n", r.dim.Sprint(ext.Uri))
}

func (r *Renderer) quote(v *bsky.EmbedRecord_View) {
	if v.Record == nil || v.Record.EmbedRecord_ViewRecord == nil {
		r.printf("  %s\n", r.dim.Sprint("┃ (quoted post unavailable)"))
		return
	}

	q := v.Record.EmbedRecord_ViewRecord
	if q.Author != nil {
		r.printf("  ┃ %s\n", r.actor(q.Author.DisplayName, q.Author.Handle))
	}
	if text := recordText(q.Value); text != "" {
		r.printf("%s\n", r.wrap(text, "  ┃ "))
	}
}
