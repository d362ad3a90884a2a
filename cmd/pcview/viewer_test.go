package main

import (
	"context"
	"errors"
	"image/color"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinecone/pkg/engine"
	"pinecone/pkg/js"
	"pinecone/pkg/layout"
	"pinecone/pkg/server"
	"pinecone/pkg/snapshot"
)

func newViewer(t *testing.T, src source, scripts bool) *viewer {
	t.Helper()
	cfg := engine.Config{Viewport: layout.Size{Width: 200, Height: 100}}
	if scripts {
		cfg.Scripts = js.New()
	}
	e, err := engine.Setup(cfg)
	require.NoError(t, err)
	return &viewer{engine: e, log: e.Logger(), src: src, scripts: scripts}
}

func TestViewer_Sample(t *testing.T) {
	v := newViewer(t, sampleSource, true)
	f, err := v.render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sample", f.Title)
	assert.Positive(t, f.Commands)
	assert.Equal(t, 200, f.Image.Bounds().Dx())
	assert.Equal(t, 100, f.Image.Bounds().Dy())
}

func TestViewer_ScriptsChangeTheFrame(t *testing.T) {
	src := func(context.Context) ([]byte, error) {
		return snapshot.Encode(snapshot.Snapshot{
			HTML: `<div id="a">xxxxxxxxxx</div><script>document.getElementById("a").textContent = ""</script>`,
		})
	}
	plain, err := newViewer(t, src, false).render(context.Background())
	require.NoError(t, err)
	scripted, err := newViewer(t, src, true).render(context.Background())
	require.NoError(t, err)
	assert.Greater(t, plain.Commands, scripted.Commands)
}

func TestViewer_PollsServer(t *testing.T) {
	store := snapshot.NewStore(filepath.Join(t.TempDir(), "snap.pcs"))
	snap := snapshot.New("http://example.test/", `<div class="box">x</div>`, `.box { background-color: red; height: 10px }`)
	snap.Title = "Example"
	require.NoError(t, store.Save(snap))

	ts := httptest.NewServer(server.New(store, nil))
	defer ts.Close()

	v := newViewer(t, serverSource(ts.URL+"/"), false)
	f, err := v.render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Example", f.Title)
	r, g, b, _ := f.Image.At(50, 5).RGBA()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
}

func TestViewer_Errors(t *testing.T) {
	ts := httptest.NewServer(server.New(snapshot.NewStore(filepath.Join(t.TempDir(), "none")), nil))
	defer ts.Close()
	_, err := newViewer(t, serverSource(ts.URL), false).render(context.Background())
	assert.ErrorContains(t, err, "fetch")

	boom := errors.New("boom")
	_, err = newViewer(t, func(context.Context) ([]byte, error) { return nil, boom }, false).render(context.Background())
	assert.ErrorIs(t, err, boom)

	empty := func(context.Context) ([]byte, error) { return []byte("   "), nil }
	_, err = newViewer(t, empty, false).render(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrEmpty)
}
