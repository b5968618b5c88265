// Package views renders the collage HTML.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/session"
)

// Page is the data for the full collage page.
type Page struct {
	SessionID string
	State     session.State
	Debounce  int // milliseconds
	ExitDelay int // milliseconds
}

// PageView renders the complete HTML document.
func PageView(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		ew.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		ew.printf(`<title>Collage</title><style>%s</style></head>`, stylesheet)
		ew.printf(`<body data-session="%s" data-debounce="%d" data-exit-delay="%d">`,
			templ.EscapeString(p.SessionID), p.Debounce, p.ExitDelay)
		ew.printf(`<header><input id="query" type="search" autocomplete="off" placeholder="Search photos" value="%s"></header>`,
			templ.EscapeString(p.State.Query))
		ew.printf(`<main id="collage">`)
		if ew.err != nil {
			return ew.err
		}
		if err := CollageView(p.State).Render(ctx, w); err != nil {
			return err
		}
		ew.printf(`</main>`)
		if ew.err != nil {
			return ew.err
		}
		if err := Footer().Render(ctx, w); err != nil {
			return err
		}
		ew.printf(`<script>%s</script></body></html>`, script)
		return ew.err
	})
}

// CollageView renders the tiles and status line of a session. The browser
// swaps it in after every session update.
func CollageView(s session.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div class="collage%s" data-phase="%s">`, phaseClass(s), s.Phase())
		if msg := statusMessage(s); msg != "" {
			ew.printf(`<p class="status">%s</p>`, templ.EscapeString(msg))
		}
		if ew.err != nil {
			return ew.err
		}
		for _, t := range s.Arrangement.Tiles {
			if err := TileView(t).Render(ctx, w); err != nil {
				return err
			}
		}
		ew.printf(`</div>`)
		return ew.err
	})
}

// TileView renders one photo with its attribution.
func TileView(t collage.Tile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := t.Photo
		class := "tile"
		if t.IsCenter {
			class += " center"
		}
		ew := &errWriter{w: w}
		ew.printf(`<figure class="%s" data-id="%s" style="left:%.1fpx;top:%.1fpx;width:%.1fpx;height:%.1fpx;transform:rotate(%.2fdeg)">`,
			class, templ.EscapeString(p.ID), t.Rect.X, t.Rect.Y, t.Rect.Width, t.Rect.Height, t.Tilt)
		ew.printf(`<img src="%s" alt="%s" loading="lazy">`,
			templ.EscapeString(string(templ.URL(p.URLs.Small))), templ.EscapeString(p.AltText(t.IsCenter)))
		ew.printf(`<figcaption><a href="%s" target="_blank" rel="noopener">`,
			templ.EscapeString(string(templ.URL(p.User.Links.HTML))))
		if avatar := p.User.ProfileImage.Medium; avatar != "" {
			ew.printf(`<img class="avatar" src="%s" alt="">`, templ.EscapeString(string(templ.URL(avatar))))
		}
		ew.printf(`%s</a>`, templ.EscapeString(p.User.Username))
		if p.Links.HTML != "" {
			ew.printf(` <a href="%s" target="_blank" rel="noopener">&#8599;</a>`, templ.EscapeString(string(templ.URL(p.Links.HTML))))
		}
		ew.printf(`</figcaption></figure>`)
		return ew.err
	})
}

// Footer renders the provider credit.
func Footer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<footer>Powered by <a href="https://unsplash.com" target="_blank" rel="noopener">Unsplash</a></footer>`)
		return err
	})
}

func phaseClass(s session.State) string {
	var b strings.Builder
	if s.Loading {
		b.WriteString(" loading")
	}
	if s.Transitioning {
		b.WriteString(" transitioning")
	}
	return b.String()
}

func statusMessage(s session.State) string {
	switch s.Status {
	case session.StatusEmpty:
		return fmt.Sprintf("No photos found for %q", s.Query)
	case session.StatusFailed:
		return "Could not load photos"
	}
	return ""
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
