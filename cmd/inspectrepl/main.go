// Command inspectrepl is an interactive JavaScript shell for a process
// running with its inspector enabled.
//
// Usage:
//
//	inspectrepl repl [-connect host:port|ws-url] [-timeout 500ms] [-log-level warn]
//	inspectrepl mcp  [-connect host:port|ws-url] [-timeout 500ms] [-log-level warn]
//	inspectrepl version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonwraymond/inspectrepl/speculate"
)

const (
	appName     = "inspectrepl"
	defaultAddr = "127.0.0.1:9229"
)

var version = "dev"

const usageText = `usage: inspectrepl <command> [flags]

commands:
  repl      attach an interactive shell to the target
  mcp       serve evaluate/complete/last as MCP tools over stdio
  version   print the version
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := args[0]; cmd {
	case "repl", "mcp":
		var opts options
		opts, err = parseFlags(cmd, args[1:], stderr)
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if err != nil {
			return 2
		}
		var logger *slog.Logger
		logger, err = newLogger(stderr, opts.logLevel)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 2
		}
		if cmd == "repl" {
			err = runREPL(ctx, opts, logger, stdin, stdout)
		} else {
			err = runMCP(ctx, opts, logger)
		}
	case "version":
		fmt.Fprintln(stdout, appName, version)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n%s", appName, cmd, usageText)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

// options are the flags shared by the repl and mcp commands.
type options struct {
	addr     string
	timeout  time.Duration
	logLevel string
}

func parseFlags(name string, args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(appName+" "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.addr, "connect", defaultAddr, "inspector host:port or websocket URL")
	fs.DurationVar(&opts.timeout, "timeout", speculate.DefaultTimeout, "time limit for side-effect-free evaluations")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return options{}, fmt.Errorf("unexpected arguments")
	}
	if opts.timeout <= 0 {
		fmt.Fprintln(stderr, "-timeout must be positive")
		return options{}, fmt.Errorf("invalid timeout %v", opts.timeout)
	}
	return opts, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
