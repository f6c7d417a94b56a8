package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jonwraymond/inspectrepl/catalog"
	"github.com/jonwraymond/inspectrepl/complete"
	"github.com/jonwraymond/inspectrepl/engine"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/statement"
)

const (
	historyFile = ".inspectrepl_history"
	promptMain  = "> "
	promptCont  = "... "
	banner      = "inspectrepl: connected. Type .help for commands, Ctrl+D to exit."

	dim   = "\x1b[2m"
	reset = "\x1b[0m"
)

const commandHelp = `commands:
  .help [topic]   show tools, or search their documentation
  .clear          discard the pending multi-line input
  .exit           leave the shell
`

func runREPL(ctx context.Context, opts options, logger *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	interactive := stdin == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	width := 0
	if interactive {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > len(promptMain) {
			width = w - len(promptMain)
		}
	}

	return attach(ctx, opts, logger, width, func(ctx context.Context, e *engine.Engine) error {
		sh, err := newShell(e, stdout)
		if err != nil {
			return err
		}
		if !interactive {
			return sh.runPlain(ctx, stdin)
		}
		return sh.runInteractive(ctx)
	})
}

// shell drives an engine from lines of input.
type shell struct {
	engine  *engine.Engine
	tools   *catalog.Catalog
	out     io.Writer
	pending []string
}

func newShell(e *engine.Engine, out io.Writer) (*shell, error) {
	tools, err := catalog.ForEngine(e)
	if err != nil {
		return nil, err
	}
	return &shell{engine: e, tools: tools, out: out}, nil
}

func (s *shell) prompt() string {
	if len(s.pending) > 0 {
		return promptCont
	}
	return promptMain
}

// buffer returns the pending input joined with line.
func (s *shell) buffer(line string) string {
	if len(s.pending) == 0 {
		return line
	}
	return strings.Join(s.pending, "\n") + "\n" + line
}

// submit handles one physical line. It reports exit when the user asked to
// leave; a non-nil error means the target is gone.
func (s *shell) submit(ctx context.Context, line string) (exit bool, err error) {
	if len(s.pending) == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
		return s.command(strings.TrimSpace(line)), nil
	}

	src := s.buffer(line)
	res, err := s.engine.OnLine(ctx, src)
	if err != nil {
		s.pending = nil
		if protocol.IsFatal(err) {
			return true, err
		}
		fmt.Fprintln(s.out, err)
		return false, nil
	}
	if res.Status == statement.NeedMore {
		s.pending = append(s.pending, line)
		return false, nil
	}
	s.pending = nil
	if res.Text != "" {
		fmt.Fprintln(s.out, res.Text)
	}
	return false, nil
}

func (s *shell) command(line string) (exit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".exit":
		return true
	case ".clear":
		s.pending = nil
	case ".help":
		s.help(strings.Join(fields[1:], " "))
	default:
		fmt.Fprintf(s.out, "unknown command %s; try .help\n", fields[0])
	}
	return false
}

func (s *shell) help(topic string) {
	if topic == "" {
		fmt.Fprint(s.out, commandHelp)
		fmt.Fprintln(s.out, "tools:")
		for _, t := range s.tools.Tools() {
			fmt.Fprintf(s.out, "  %-14s  %s\n", t.Name, t.Description)
		}
		return
	}

	results, err := s.tools.Search(topic, 3)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintf(s.out, "no help for %q\n", topic)
		return
	}
	for _, r := range results {
		doc, err := s.tools.Describe(r.Name, tooldoc.DetailFull)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.out, "%s: %s\n", r.Name, doc.Summary)
		if doc.Notes != "" {
			fmt.Fprintf(s.out, "  %s\n", doc.Notes)
		}
	}
}

// complete resolves Tab for the line being edited. List outcomes become
// completions; a preview is written below the prompt and nothing is
// completed.
func (s *shell) complete(ctx context.Context, line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]
	if len(s.pending) == 0 && strings.HasPrefix(strings.TrimSpace(head), ".") {
		return head, nil, tail
	}

	out, err := s.engine.OnAutocomplete(ctx, s.buffer(head))
	if err != nil {
		return head, nil, tail
	}
	switch out.Kind {
	case complete.List:
		return head, out.Items, tail
	case complete.InlinePreview:
		fmt.Fprint(s.out, "\r\n"+dim+out.Preview+reset+"\r\n")
	}
	return head, nil, tail
}

func (s *shell) runInteractive(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		head, items, tail := s.complete(ctx, line, pos)
		for i, item := range items {
			items[i] = head + item
		}
		return "", items, tail
	})

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(s.out, banner)
	for {
		line, err := ln.Prompt(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			s.pending = nil
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		exit, err := s.submit(ctx, line)
		if exit || err != nil {
			return err
		}
	}
}

// runPlain evaluates stdin line by line without prompts or completion.
func (s *shell) runPlain(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		exit, err := s.submit(ctx, scanner.Text())
		if exit || err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(s.pending) > 0 {
		return fmt.Errorf("unexpected end of input")
	}
	return nil
}
