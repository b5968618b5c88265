// Package pkg provides the libraries behind collage, a photo browser that
// shows a focal photo surrounded by related photos scattered across the
// screen.
//
// # Overview
//
// The packages fall into three groups:
//
//  1. Core: [geom] (rectangles and overlap), [placement] (the randomized
//     tile placement engine), [collage] (arranging a center and its
//     peripherals) and [session] (the browsing state machine).
//  2. Data: [photo] (the validated photo record), [search] (the search
//     service with request coalescing), [integrations] and its unsplash
//     client, and [cache] (file, memory, Redis and MongoDB backends).
//  3. Infrastructure: [config], [errors], [httputil], [observability],
//     [buildinfo] and the [web] server.
//
// # Data Flow
//
//	query ──▶ search.Service ──▶ unsplash.Client ──▶ cache / Unsplash API
//	                                   │
//	                                   ▼
//	             photo.DecodeAll (schema check)
//	                                   │
//	                                   ▼
//	session.Controller ──▶ collage.Layouter ──▶ placement.Engine
//	          │
//	          ▼
//	  Arrangement ──▶ web views (HTML) or terminal canvas
//
// # Quick Start
//
// Lay out one collage without a UI:
//
//	svc := search.NewService(unsplash.NewClient(nil, unsplash.Config{AccessKey: key}), nil)
//	ctrl := session.NewController(nil, placement.Fixed{Width: 1280, Height: 800}, session.DefaultConfig())
//	runner := session.NewRunner(ctrl, svc, nil)
//	st := runner.Start(ctx, "japanese landscape")
//	for _, tile := range st.Arrangement.Tiles {
//	    fmt.Println(tile.Photo.ID, tile.Rect, tile.IsCenter)
//	}
//
// Clicking a tile pivots the collage:
//
//	st = runner.Pivot(ctx, st.Arrangement.Tiles[1].Photo)
//
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/buildinfo
// [cache]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/cache
// [collage]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/collage
// [config]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/errors
// [geom]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/geom
// [httputil]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/httputil
// [integrations]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/integrations
// [observability]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/observability
// [photo]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/photo
// [placement]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/placement
// [search]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/search
// [session]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/session
// [web]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/web
package pkg
