package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// styleSheetsJS concatenates the text of every readable stylesheet. Rules of
// cross-origin sheets are not readable and are skipped.
const styleSheetsJS = `() => Array.from(document.styleSheets).map(s => {
	try { return Array.from(s.cssRules).map(r => r.cssText).join("\n") } catch (e) { return "" }
}).join("\n")`

// CaptureOptions configure Capture.
type CaptureOptions struct {
	// ControlURL is the DevTools endpoint of a running browser. Empty
	// launches a local headless Chrome.
	ControlURL string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Capture loads url in a stealth browser tab and records its serialised DOM
// and stylesheet text.
func Capture(ctx context.Context, url string, opts CaptureOptions) (Snapshot, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	browser := rod.New().Context(ctx)
	if opts.ControlURL != "" {
		browser = browser.ControlURL(opts.ControlURL)
	}
	if err := browser.Connect(); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: connect browser: %w", err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: create tab: %w", err)
	}
	if err := page.Navigate(url); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		log.Warn("wait load", zap.String("url", url), zap.Error(err))
	}

	res, err := page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: get DOM: %w", err)
	}
	snap := New(url, res.Value.Str(), "")

	if css, err := page.Eval(styleSheetsJS); err != nil {
		log.Warn("read stylesheets", zap.String("url", url), zap.Error(err))
	} else {
		snap.CSS = css.Value.Str()
	}
	if info, err := page.Info(); err == nil {
		snap.Title = info.Title
	}
	log.Info("captured", zap.String("id", snap.ID), zap.String("url", url), zap.Int("bytes", len(snap.HTML)))
	return snap, nil
}
