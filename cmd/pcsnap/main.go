// Command pcsnap captures page snapshots and serves them to viewers.
//
// Usage:
//
//	pcsnap capture -url https://example.com     # capture into the snapshot file
//	pcsnap serve                                # serve GET /snapshot
//	pcsnap serve -addr :8714 -config pinecone.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pinecone/pkg/config"
	"pinecone/pkg/engine"
	"pinecone/pkg/server"
	"pinecone/pkg/snapshot"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pcsnap capture -url <url> [flags] | pcsnap serve [flags]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "capture":
		err = runCapture(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcsnap: %v\n", err)
		os.Exit(1)
	}
}

// common holds the flags both subcommands accept.
type common struct {
	configPath string
	path       string
	logLevel   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to pinecone.yaml")
	fs.StringVar(&c.path, "snapshot", "", "snapshot file (overrides config)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func (c *common) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if c.path != "" {
		cfg.Snapshot.Path = c.path
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	log, err := engine.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServe(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c.register(fs)
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	defer log.Sync()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	store := snapshot.NewStore(cfg.Snapshot.Path)
	log.Info("serving snapshot", zap.String("path", store.Path()), zap.String("addr", cfg.Server.Addr))
	return server.New(store, log).ListenAndServe(ctx, cfg.Server.Addr)
}

func runCapture(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c.register(fs)
	url := fs.String("url", "", "page to capture")
	browser := fs.String("browser", "", "DevTools websocket URL of a running browser (overrides config)")
	fs.Parse(args)
	if *url == "" {
		fs.Usage()
		return fmt.Errorf("capture: -url is required")
	}

	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	defer log.Sync()
	if *browser != "" {
		cfg.Snapshot.BrowserURL = *browser
	}

	snap, err := snapshot.Capture(ctx, *url, snapshot.CaptureOptions{
		ControlURL: cfg.Snapshot.BrowserURL,
		Timeout:    cfg.Snapshot.CaptureTimeout,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	store := snapshot.NewStore(cfg.Snapshot.Path)
	if err := store.Save(snap); err != nil {
		return err
	}
	log.Info("snapshot saved", zap.String("id", snap.ID), zap.String("path", store.Path()))
	return nil
}
