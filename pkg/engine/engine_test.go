package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/js"
	"pinecone/pkg/layout"
	"pinecone/pkg/paint"
	"pinecone/pkg/render"
	"pinecone/pkg/resource"
	"pinecone/pkg/snapshot"
)

const baseCSS = `html { font-size: 13px; line-height: 20px } `

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := Setup(cfg)
	require.NoError(t, err)
	return e
}

func TestSetup_Defaults(t *testing.T) {
	e := newEngine(t, Config{})
	assert.Equal(t, layout.Size{Width: 800, Height: 600}, e.Viewport())
	assert.Equal(t, 1.0, e.Metrics().Scale())
	assert.NotNil(t, e.Logger())
}

func TestSetup_Logger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"json", Config{LogFormat: "json", LogLevel: "warn"}, false},
		{"console", Config{LogFormat: "console", LogLevel: "debug"}, false},
		{"level only", Config{LogLevel: "error"}, false},
		{"unknown format", Config{LogFormat: "xml"}, true},
		{"unknown level", Config{LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Setup(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, e.Logger())
		})
	}
}

func TestSetup_IndependentEngines(t *testing.T) {
	a := newEngine(t, Config{Viewport: layout.Size{Width: 100, Height: 100}})
	b := newEngine(t, Config{Viewport: layout.Size{Width: 300, Height: 100}})
	markup := `<div style="width: 100%; height: 10px; background-color: red"></div>`
	la, err := a.Render(markup, "")
	require.NoError(t, err)
	lb, err := b.Render(markup, "")
	require.NoError(t, err)
	require.Len(t, la, 1)
	require.Len(t, lb, 1)
	assert.Equal(t, 100.0, la[0].Rect.Width)
	assert.Equal(t, 300.0, lb[0].Rect.Width)
}

func TestRender_DisplayNone(t *testing.T) {
	e := newEngine(t, Config{})
	list, err := e.Render(`<div class="none"><p>x</p></div><span>y</span>`, `.none { display: none }`)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paint.DrawText, list[0].Kind)
	assert.Equal(t, "y", list[0].Text)
}

func TestRender_BoxIdentity(t *testing.T) {
	e := newEngine(t, Config{Viewport: layout.Size{Width: 500, Height: 400}})
	res, err := e.Pass(context.Background(), `
		<div style="padding: 4px 9px; border: 3px solid; margin: 0 auto; width: 60%">
			text <span style="padding: 0 5px; border-left: 2px solid">inline</span>
			<p style="border: 1px dotted; max-width: 100px">para</p>
		</div>`, baseCSS)
	require.NoError(t, err)
	res.Box.Walk(func(b *layout.Box) {
		d := b.Dimensions
		assert.Equal(t, d.Content.Width+d.Padding.Left+d.Padding.Right+d.Border.Left+d.Border.Right,
			d.BorderBox().Width, "%s box", b.Type)
		assert.GreaterOrEqual(t, d.Content.Width, 0.0)
		assert.GreaterOrEqual(t, d.Content.Height, 0.0)
	})
}

func TestRender_Idempotent(t *testing.T) {
	e := newEngine(t, Config{})
	markup := `<h1>Title</h1><p class="x">Some <b>bold</b> and <u>underlined</u> words that wrap.</p>
		<img width="20" height="10"><div style="border: 2px solid blue">box</div>`
	style := baseCSS + `.x { width: 120px; background-color: #eee }`
	first, err := e.Render(markup, style)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := e.Render(markup, style)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRender_DocumentStylesThenArgument(t *testing.T) {
	e := newEngine(t, Config{})
	markup := `<style>p { color: red; background-color: lime }</style><p>x</p>`

	list, err := e.Render(markup, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, css.Color{R: 255, A: 255}, list[1].Color)

	list, err = e.Render(markup, `p { color: blue }`)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, css.Color{B: 255, A: 255}, list[1].Color, "later sheets win at equal specificity")
}

func TestRender_FuzzedInputCompletes(t *testing.T) {
	pieces := []string{
		"<div>", "</div>", "<p>", "</p>", "<span class=a>", "</span>", "<b>", "</i>",
		"<img src=data:x>", "<br>", "text", " ", "<!-- c", "-->", "<", ">", "&amp;",
		`<div style="width: -5px; margin: auto">`, `<p style="display:none">`, `"`, "=",
		"<script>", "</script>", "<table><tr><td>", "ünïcödé", "長い",
		"<style>", "</STYLE>", "ȺȺȺ", "\xff\xfe", "&nbsp;",
	}
	rules := []string{
		"div { padding: 3px }", ".a { display: block }", "p { width: 50% }", "{", "}",
		"span { border: 1px solid }", "* { line-height: 0 }", "b { font-size: 300% }", "@media x {",
	}
	e := newEngine(t, Config{FetchTimeout: 20 * time.Millisecond})
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		var markup, style strings.Builder
		for j := rng.IntN(40); j > 0; j-- {
			markup.WriteString(pieces[rng.IntN(len(pieces))])
		}
		for j := rng.IntN(6); j > 0; j-- {
			style.WriteString(rules[rng.IntN(len(rules))])
		}
		_, err := e.Render(markup.String(), style.String())
		require.NoError(t, err, "markup %q style %q", markup.String(), style.String())
	}
}

func TestRender_ResourceTimeoutGivesEmptyImage(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := resource.FetcherFunc(func(ctx context.Context, uri string) ([]byte, string, error) {
		<-release
		return nil, "", errors.New("released")
	})
	core, logs := observer.New(zap.WarnLevel)
	e := newEngine(t, Config{
		Fetcher:      slow,
		FetchTimeout: 30 * time.Millisecond,
		Logger:       zap.New(core),
	})

	start := time.Now()
	res, err := e.Pass(context.Background(), `<p>a<img id="pic" src="http://slow.test/x.png">b</p>`, baseCSS)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var img *layout.Box
	res.Box.Walk(func(b *layout.Box) {
		if b.Replaced != nil {
			img = b
		}
	})
	require.NotNil(t, img)
	assert.ErrorIs(t, img.Replaced.Err, resource.ErrTimeout)
	assert.Zero(t, img.Dimensions.Content.Width)
	assert.Zero(t, img.Dimensions.Content.Height)
	assert.Equal(t, []string{"a", "b"}, res.List.Texts())
	assert.Equal(t, 1, logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "resource" }).Len())
}

func TestRender_CancelledContextStillCompletes(t *testing.T) {
	e := newEngine(t, Config{Fetcher: resource.FetcherFunc(func(ctx context.Context, uri string) ([]byte, string, error) {
		<-ctx.Done()
		return nil, "", ctx.Err()
	})})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	list, err := e.RenderContext(ctx, `<img src="http://x.test/a.png"><p>after</p>`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"after"}, list.Texts())
}

func TestRenderSnapshot(t *testing.T) {
	e := newEngine(t, Config{})
	markup := `<div id="main"><h2>Snap</h2><p>captured <i>page</i></p></div>`
	style := baseCSS + `#main { border: 1px solid red; padding: 4px }`
	want, err := e.Render(markup, style)
	require.NoError(t, err)

	framed, err := snapshot.Encode(snapshot.New("http://example.test/", markup, style))
	require.NoError(t, err)
	got, err := e.RenderSnapshot(framed)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	plainWant, err := e.Render(markup, "")
	require.NoError(t, err)
	plain, err := e.RenderSnapshot([]byte(markup))
	require.NoError(t, err)
	assert.Equal(t, plainWant, plain)
}

func TestRenderSnapshot_Empty(t *testing.T) {
	e := newEngine(t, Config{})
	_, err := e.RenderSnapshot(nil)
	assert.ErrorIs(t, err, ErrEmptySnapshot)
	_, err = e.RenderSnapshot([]byte(snapshot.Frame + "{broken"))
	assert.ErrorIs(t, err, snapshot.ErrMalformed)
	assert.NotErrorIs(t, err, ErrEmptySnapshot)
}

func TestRenderNode(t *testing.T) {
	e := newEngine(t, Config{})
	root := html.Parse(`<p>one</p><p>two</p>`)
	before := root.Serialize()
	list, err := e.RenderNode(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, list.Texts())
	assert.Equal(t, before, root.Serialize())

	list, err = e.RenderNode(nil, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

type recordingSurface struct {
	lists []paint.DisplayList
	err   error
}

func (s *recordingSurface) Apply(list paint.DisplayList) error {
	s.lists = append(s.lists, list)
	return s.err
}

func TestRenderTo(t *testing.T) {
	e := newEngine(t, Config{Viewport: layout.Size{Width: 64, Height: 32}})
	markup := `<p style="background-color: red">hi</p>`

	assert.ErrorIs(t, e.RenderTo(nil, markup, ""), ErrSurfaceUnavailable)

	failing := &recordingSurface{err: errors.New("device lost")}
	err := e.RenderTo(failing, markup, "")
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.Contains(t, err.Error(), "device lost")

	rec := &recordingSurface{}
	require.NoError(t, e.RenderTo(rec, markup, ""))
	require.Len(t, rec.lists, 1)
	assert.Equal(t, []string{"hi"}, rec.lists[0].Texts())

	var nilCanvas *render.Canvas
	assert.ErrorIs(t, e.RenderTo(nilCanvas, markup, ""), ErrSurfaceUnavailable)

	canvas := render.NewCanvas(64, 32, render.WithMetrics(e.Metrics()))
	require.NoError(t, e.RenderTo(canvas, markup, ""))
	r, g, b, _ := canvas.Image().At(60, 2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b}, "background painted")
}

func TestPass_PanicIsRecovered(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := newEngine(t, Config{Logger: zap.New(core)})
	res, err := e.PassDocument(context.Background(), &html.Document{}, "")
	assert.ErrorIs(t, err, ErrPassFailed)
	assert.Nil(t, res)
	entries := logs.FilterMessage("pass panicked").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "stack")

	_, err = e.Render(`<p>still works</p>`, "")
	assert.NoError(t, err)
}

func TestRender_RawTextWithNonASCII(t *testing.T) {
	e := newEngine(t, Config{})
	inputs := []string{
		"<style>" + strings.Repeat("Ⱥ", 20) + "</style><p>x</p>",
		"<script>" + strings.Repeat("\xff", 10) + "</script><p>x</p>",
	}
	for _, markup := range inputs {
		var list paint.DisplayList
		var err error
		require.NotPanics(t, func() { list, err = e.Render(markup, "") })
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, list.Texts(), "markup %q", markup)
	}

	res, err := e.Pass(context.Background(), inputs[0], "")
	require.NoError(t, err)
	assert.Len(t, res.Document.Styles(), 1)
}

func TestPass_Result(t *testing.T) {
	e := newEngine(t, Config{})
	res, err := e.Pass(context.Background(), `<p id="x">hello</p>`, `#x { color: green }`)
	require.NoError(t, err)
	require.NotNil(t, res.Document)
	p := res.Document.Root.ElementByID("x")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{G: 128, A: 255}, res.Styles.Of(p).Color())
	assert.Equal(t, "html", res.Box.Node.TagName)
	assert.Equal(t, []string{"hello"}, res.List.Texts())
}

func TestRunScripts(t *testing.T) {
	e := newEngine(t, Config{Scripts: js.New()})
	res, err := e.Pass(context.Background(),
		`<p id="a">old</p><script>document.getElementById("a").textContent = "new";</script>`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, res.List.Texts())

	after, err := e.RunScripts(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, after.List.Texts())
}

func TestRunScripts_FailureStillRepasses(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newEngine(t, Config{Scripts: js.New(), Logger: zap.New(core)})
	res, err := e.Pass(context.Background(),
		`<p id="a">old</p><script>document.getElementById("a").textContent = "half"; throw new Error("x")</script>`, "")
	require.NoError(t, err)
	after, err := e.RunScripts(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, []string{"half"}, after.List.Texts())
	assert.Equal(t, 1, logs.FilterMessage("scripts failed").Len())
}

func TestRunScripts_NoRunner(t *testing.T) {
	e := newEngine(t, Config{})
	res, err := e.Pass(context.Background(), `<p>x</p>`, "")
	require.NoError(t, err)
	same, err := e.RunScripts(context.Background(), res)
	require.NoError(t, err)
	assert.Same(t, res, same)
}
