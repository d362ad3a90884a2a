// Command pinecone renders a document to a PNG image.
//
// Usage:
//
//	pinecone [flags] <input.html | snapshot.pcs | URL>
//	pinecone -css extra.css -o page.png -tree page.html
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"pinecone/pkg/config"
	"pinecone/pkg/engine"
	"pinecone/pkg/js"
	"pinecone/pkg/layout"
	"pinecone/pkg/render"
	"pinecone/pkg/snapshot"
	stdnet "pinecone/std/net"
)

type options struct {
	configPath string
	cssPath    string
	output     string
	width      int
	height     int
	tree       bool
	scripts    bool
	logLevel   string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to pinecone.yaml")
	flag.StringVar(&o.cssPath, "css", "", "extra stylesheet applied after the document's own")
	flag.StringVar(&o.output, "o", "output.png", "output PNG file path")
	flag.IntVar(&o.width, "width", 0, "viewport width in pixels (overrides config)")
	flag.IntVar(&o.height, "height", 0, "viewport height in pixels (overrides config)")
	flag.BoolVar(&o.tree, "tree", false, "print the box tree to stdout")
	flag.BoolVar(&o.scripts, "scripts", false, "run document scripts and render again")
	flag.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pinecone [flags] <input.html | snapshot.pcs | URL>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "pinecone: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, input string) error {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return err
	}
	if o.width > 0 {
		cfg.Viewport.Width = o.width
	}
	if o.height > 0 {
		cfg.Viewport.Height = o.height
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log, err := engine.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ec := cfg.Engine()
	ec.Logger = log
	if stdnet.IsNetworkURL(input) && ec.BaseURL == "" {
		ec.BaseURL = input
	}
	if o.scripts {
		ec.Scripts = js.New(js.WithLogger(log), js.WithTimeout(cfg.Scripts.Timeout))
	}
	e, err := engine.Setup(ec)
	if err != nil {
		return err
	}

	raw, err := readInput(ctx, input)
	if err != nil {
		return err
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	style := snap.CSS
	if o.cssPath != "" {
		extra, err := os.ReadFile(o.cssPath)
		if err != nil {
			return err
		}
		style = strings.Join([]string{style, string(extra)}, "\n")
	}

	res, err := e.Pass(ctx, snap.HTML, style)
	if err != nil {
		return err
	}
	if o.scripts {
		if res, err = e.RunScripts(ctx, res); err != nil {
			return err
		}
	}
	if o.tree {
		fmt.Print(layout.Dump(res.Box))
	}

	canvas := render.NewCanvas(cfg.Viewport.Width, cfg.Viewport.Height, render.WithMetrics(e.Metrics()))
	if err := canvas.Apply(res.List); err != nil {
		return err
	}
	if err := canvas.SavePNG(o.output); err != nil {
		return err
	}
	log.Info("rendered",
		zap.String("input", input),
		zap.String("output", o.output),
		zap.Int("commands", len(res.List)))
	return nil
}

// readInput fetches URLs and reads everything else from disk.
func readInput(ctx context.Context, input string) ([]byte, error) {
	if stdnet.IsNetworkURL(input) {
		body, _, err := stdnet.Fetch(ctx, input)
		return body, err
	}
	return os.ReadFile(input)
}
