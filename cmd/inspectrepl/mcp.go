package main

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/inspectrepl/catalog"
	"github.com/jonwraymond/inspectrepl/engine"
	"github.com/jonwraymond/inspectrepl/mcpserve"
)

func runMCP(ctx context.Context, opts options, logger *slog.Logger) error {
	return attach(ctx, opts, logger, 0, func(ctx context.Context, e *engine.Engine) error {
		tools, err := catalog.ForEngine(e)
		if err != nil {
			return err
		}
		srv, err := mcpserve.New(mcpserve.Config{
			Catalog: tools,
			Name:    appName,
			Version: version,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		return srv.Run(ctx, &mcp.StdioTransport{})
	})
}
