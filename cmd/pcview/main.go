// Command pcview shows a rendered page in a desktop window. Without -server
// it shows a built-in sample; with it, the window polls a pcsnap server and
// re-renders on every interval. R or F5 re-renders immediately.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"pinecone/pkg/config"
	"pinecone/pkg/engine"
	"pinecone/pkg/js"
)

func main() {
	configPath := flag.String("config", "", "path to pinecone.yaml")
	serverURL := flag.String("server", "", "pcsnap server base URL; empty shows the sample page")
	interval := flag.Duration("interval", 0, "poll interval (overrides config)")
	scripts := flag.Bool("scripts", false, "run page scripts after each render (or set viewer.scripts)")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcview: %v\n", err)
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.Viewer.PollInterval = *interval
	}
	log, err := engine.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcview: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ec := cfg.Engine()
	ec.Logger = log
	if *scripts || cfg.Viewer.Scripts {
		ec.Scripts = js.New(js.WithLogger(log), js.WithTimeout(cfg.Scripts.Timeout))
	}
	e, err := engine.Setup(ec)
	if err != nil {
		log.Fatal("engine setup", zap.Error(err))
	}

	v := &viewer{engine: e, log: log, src: sampleSource, scripts: ec.Scripts != nil}
	poll := time.Duration(0)
	if *serverURL != "" {
		v.src = serverSource(*serverURL)
		poll = cfg.Viewer.PollInterval
	}
	show(v, poll, cfg.Viewport.Width, cfg.Viewport.Height)
}

// show opens the window and drives re-renders until it is closed. A zero
// poll renders once plus on key input.
func show(v *viewer, poll time.Duration, width, height int) {
	a := app.New()
	w := a.NewWindow("pcview")
	w.Resize(fyne.NewSize(float32(width), float32(height+32)))

	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
	img.FillMode = canvas.ImageFillOriginal
	status := widget.NewLabel("loading...")
	w.SetContent(container.NewBorder(nil, status, nil, nil, img))

	ctx, cancel := context.WithCancel(context.Background())
	w.SetOnClosed(cancel)

	refresh := make(chan struct{}, 1)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyR, fyne.KeyF5:
			select {
			case refresh <- struct{}{}:
			default:
			}
		case fyne.KeyQ, fyne.KeyEscape:
			w.Close()
		}
	})

	go func() {
		var tick <-chan time.Time
		if poll > 0 {
			t := time.NewTicker(poll)
			defer t.Stop()
			tick = t.C
		}
		for {
			f, err := v.render(ctx)
			fyne.Do(func() {
				if err != nil {
					v.log.Warn("render failed", zap.Error(err))
					status.SetText("error: " + err.Error())
					return
				}
				img.Image = f.Image
				img.Refresh()
				status.SetText(fmt.Sprintf("%s (%d commands) %s", f.Title, f.Commands, time.Now().Format(time.TimeOnly)))
				w.SetTitle("pcview: " + f.Title)
			})
			select {
			case <-ctx.Done():
				return
			case <-tick:
			case <-refresh:
			}
		}
	}()

	w.ShowAndRun()
}
