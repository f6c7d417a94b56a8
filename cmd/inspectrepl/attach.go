package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/inspectrepl/engine"
	"github.com/jonwraymond/inspectrepl/protocol/cdp"
)

// attach connects to the inspector and runs fn with an engine while the
// receive loop is live. The connection is closed when fn returns.
func attach(ctx context.Context, opts options, logger *slog.Logger, width int, fn func(context.Context, *engine.Engine) error) error {
	url, err := cdp.ResolveURL(ctx, opts.addr, nil)
	if err != nil {
		return err
	}
	conn, err := cdp.Dial(ctx, url, nil)
	if err != nil {
		return err
	}
	logger.Info("attached", "url", url)
	client := cdp.New(cdp.Config{Connection: conn, Logger: logger})

	var finished atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.Listen(gctx)
		if finished.Load() {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer func() {
			finished.Store(true)
			_ = client.Close()
		}()
		if err := client.Enable(gctx); err != nil {
			return fmt.Errorf("enable runtime: %w", err)
		}
		e, err := engine.New(engine.Config{
			Client:             client,
			SpeculativeTimeout: opts.timeout,
			PreviewWidth:       width,
			PublishLastValue:   true,
			Logger:             logger,
		})
		if err != nil {
			return err
		}
		return fn(gctx, e)
	})
	return g.Wait()
}
