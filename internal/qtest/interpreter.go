// Package qtest interprets line-oriented traces of queue commands against an
// arena queue, checking every result against a shadow model and the
// instrumented allocator.
package qtest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/errs"

	"github.com/Philanthropists/strqueue/internal/harness"
	"github.com/Philanthropists/strqueue/internal/logging"
	"github.com/Philanthropists/strqueue/internal/queue/impl/arena"
)

// ErrAborted is returned by Run when the error limit is exceeded.
var ErrAborted = errs.Class("aborted")

const maxSourceDepth = 8

// Result summarizes a run.
type Result struct {
	Commands int
	Errors   int
}

// Interpreter runs commands against a single queue. It is not safe for
// concurrent use.
type Interpreter struct {
	cfg   Config
	out   io.Writer
	log   *logging.Logger
	alloc *harness.Allocator

	q *arena.Queue
	expected model

	result Result
	quit   bool
	depth  int
}

func New(cfg Config, out io.Writer, log *logging.Logger) (*Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.New()
	}

	alloc, err := harness.NewAllocator(cfg.MallocFailPercent, cfg.Seed)
	if err != nil {
		return nil, err
	}

	return &Interpreter{
		cfg:   cfg,
		out:   out,
		log:   log,
		alloc: alloc,
	}, nil
}

// Run executes every command read from r, then frees the queue and checks
// the allocator for leaks. The returned error is non-nil only when the run
// could not complete; command failures are counted in Result.Errors.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) (Result, error) {
	err := in.exec(ctx, r)
	in.finish()

	in.log.Debug("run finished",
		logging.Int("commands", in.result.Commands),
		logging.Int("errors", in.result.Errors))

	return in.result, err
}

func (in *Interpreter) exec(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(err)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := in.Execute(ctx, line); err != nil {
			return err
		}
		if in.quit {
			return nil
		}
	}

	return errs.Wrap(scanner.Err())
}

// Execute runs a single command line. Only an exceeded error limit or a
// cancelled context is returned as an error.
func (in *Interpreter) Execute(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	in.result.Commands++
	if in.cfg.Verbose {
		fmt.Fprintf(in.out, "cmd> %s\n", line)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return in.report(args[0], errs.New("unknown command %q", args[0]))
	}

	nargs := len(args) - 1
	if nargs < cmd.minArgs || nargs > cmd.maxArgs {
		return in.report(args[0], errs.New("usage: %s", cmd.usage))
	}

	if err := cmd.run(ctx, in, args[1:]); err != nil {
		if ErrAborted.Has(err) {
			return err
		}
		if ctx.Err() != nil {
			return errs.Wrap(ctx.Err())
		}
		return in.report(args[0], err)
	}

	return nil
}

func (in *Interpreter) report(name string, err error) error {
	in.result.Errors++
	in.log.Error("command failed", logging.String("command", name), logging.Error(err))
	fmt.Fprintf(in.out, "ERROR: %v\n", err)

	if in.result.Errors > in.cfg.ErrorLimit {
		return ErrAborted.New("error limit %d exceeded", in.cfg.ErrorLimit)
	}
	return nil
}

func (in *Interpreter) notice(msg string, fields ...logging.Field) {
	in.log.Debug(msg, fields...)
	if in.cfg.Verbose {
		fmt.Fprintf(in.out, "Warning: %s\n", msg)
	}
}

func (in *Interpreter) faultInjection() bool {
	return in.alloc.FailPercent() > 0
}

func (in *Interpreter) freeQueue() {
	in.q.Free()
	in.q = nil
	in.expected.reset()
}

func (in *Interpreter) finish() {
	in.freeQueue()

	if err := in.alloc.Leaks(); err != nil {
		_ = in.report("quit", err)
	}
	if err := in.alloc.Faults(); err != nil {
		_ = in.report("quit", err)
	}
}
