package main

import (
	"context"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"pinecone/pkg/engine"
	"pinecone/pkg/render"
	"pinecone/pkg/snapshot"
	stdnet "pinecone/std/net"
)

const sampleHTML = `<html>
<head><title>pinecone</title></head>
<body>
<h1 id="title">pinecone</h1>
<p class="lead">A small document renderer: markup and style in, boxes and draw commands out.</p>
<p>Start <b>pcsnap serve</b> and run the viewer with <i>-server</i> to watch a captured page.</p>
<ul><li>block and inline layout</li><li>line breaking</li><li><u>underlines</u> and borders</li></ul>
<script>document.getElementById("title").textContent = "pinecone viewer";</script>
</body>
</html>`

const sampleCSS = `
body { margin: 16px; background-color: #fdfcf7; }
h1 { font-size: 28px; color: #2e5e3a; border-bottom: 2px solid #2e5e3a; padding-bottom: 4px; }
.lead { color: #444; }
li { margin-left: 16px; }
`

// source produces the raw bytes of the page to show.
type source func(ctx context.Context) ([]byte, error)

// sampleSource shows the built-in page.
func sampleSource(context.Context) ([]byte, error) {
	return snapshot.Encode(snapshot.Snapshot{Title: "sample", HTML: sampleHTML, CSS: sampleCSS})
}

// serverSource polls a pcsnap server.
func serverSource(base string) source {
	url := strings.TrimRight(base, "/") + "/snapshot"
	return func(ctx context.Context) ([]byte, error) {
		body, _, err := stdnet.Fetch(ctx, url)
		return body, err
	}
}

// viewer turns source bytes into frames.
type viewer struct {
	engine  *engine.Engine
	log     *zap.Logger
	src     source
	scripts bool
}

// frame is one rendered page.
type frame struct {
	Image    image.Image
	Title    string
	Commands int
}

// render fetches the current page and renders it. Scripts, when enabled,
// run after the first pass and the page is laid out again.
func (v *viewer) render(ctx context.Context) (frame, error) {
	raw, err := v.src(ctx)
	if err != nil {
		return frame{}, fmt.Errorf("fetch: %w", err)
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return frame{}, fmt.Errorf("decode: %w", err)
	}
	res, err := v.engine.Pass(ctx, snap.HTML, snap.CSS)
	if err != nil {
		return frame{}, err
	}
	if v.scripts {
		if res, err = v.engine.RunScripts(ctx, res); err != nil {
			return frame{}, err
		}
	}

	size := v.engine.Viewport()
	canvas := render.NewCanvas(int(size.Width), int(size.Height), render.WithMetrics(v.engine.Metrics()))
	if err := canvas.Apply(res.List); err != nil {
		return frame{}, err
	}
	title := snap.Title
	if title == "" {
		title = snap.URL
	}
	v.log.Debug("frame", zap.String("title", title), zap.Int("commands", len(res.List)))
	return frame{Image: canvas.Image(), Title: title, Commands: len(res.List)}, nil
}
