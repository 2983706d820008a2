package qtest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zeebo/errs"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Philanthropists/strqueue/internal/logging"
	"github.com/Philanthropists/strqueue/internal/queue"
	"github.com/Philanthropists/strqueue/internal/queue/impl/arena"
)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, in *Interpreter, args []string) error
}

// shown at most when printing the model
const showLimit = 16

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":     {"new", "create a new queue", 0, 0, cmdNew},
		"free":    {"free", "free the queue", 0, 0, cmdFree},
		"ih":      {"ih str [n]", "insert str at head n times", 1, 2, cmdInsert(true)},
		"it":      {"it str [n]", "insert str at tail n times", 1, 2, cmdInsert(false)},
		"rh":      {"rh [str]", "remove from head, optionally compare with str", 0, 1, cmdRemove(true)},
		"rhq":     {"rhq", "remove from head without reading the value", 0, 0, cmdRemove(false)},
		"size":    {"size [n]", "print size, optionally compare with n", 0, 1, cmdSize},
		"reverse": {"reverse", "reverse the queue", 0, 0, cmdReverse},
		"show":    {"show", "print the expected queue contents", 0, 0, cmdShow},
		"option":  {"option name value", "set verbose, malloc, length or error", 2, 2, cmdOption},
		"source":  {"source file", "run commands from file", 1, 1, cmdSource},
		"help":    {"help", "list commands", 0, 0, cmdHelp},
		"quit":    {"quit", "free the queue and exit", 0, 0, cmdQuit},
	}
}

func cmdNew(_ context.Context, in *Interpreter, _ []string) error {
	in.freeQueue()

	q, err := arena.New(in.alloc)
	if err != nil {
		if in.faultInjection() && queue.ErrAllocationFailure.Has(err) {
			in.notice("queue creation failed under fault injection", logging.Error(err))
			return nil
		}
		return errs.Wrap(err)
	}

	in.q = q
	in.show(false)
	return nil
}

func cmdFree(_ context.Context, in *Interpreter, _ []string) error {
	in.freeQueue()
	in.show(false)
	return nil
}

func cmdInsert(head bool) func(context.Context, *Interpreter, []string) error {
	return func(ctx context.Context, in *Interpreter, args []string) error {
		n, err := repetitions(args, 1)
		if err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			if i%1024 == 0 && ctx.Err() != nil {
				return ctx.Err()
			}

			value := args[0]
			if head {
				err = in.q.InsertHead(&value)
			} else {
				err = in.q.InsertTail(&value)
			}

			switch {
			case in.q == nil && queue.ErrInvalidArgument.Has(err):
				in.notice("insertion into absent queue rejected")
				return nil
			case in.q == nil:
				return errs.New("insertion into absent queue returned %v", err)
			case err == nil:
				if head {
					in.expected.pushHead(value)
				} else {
					in.expected.pushTail(value)
				}
			case in.faultInjection() && queue.ErrAllocationFailure.Has(err):
				in.notice("insertion failed under fault injection", logging.Error(err))
			default:
				return errs.New("insertion of %q failed: %w", value, err)
			}
		}

		in.show(false)
		return nil
	}
}

func cmdRemove(read bool) func(context.Context, *Interpreter, []string) error {
	return func(_ context.Context, in *Interpreter, args []string) error {
		var buf []byte
		if read {
			buf = bytes.Repeat([]byte{'X'}, in.cfg.StringLength)
		}

		err := in.q.RemoveHead(buf)
		switch {
		case in.q == nil:
			if queue.ErrInvalidArgument.Has(err) {
				in.notice("removal from absent queue rejected")
				return nil
			}
			return errs.New("removal from absent queue returned %v", err)
		case in.expected.len() == 0:
			if queue.ErrEmpty.Has(err) {
				in.notice("removal from empty queue rejected")
				return nil
			}
			return errs.New("removal from empty queue returned %v", err)
		case err != nil:
			return errs.New("removal failed: %w", err)
		}

		want, _ := in.expected.popHead()
		if !read {
			in.show(false)
			return nil
		}

		got, ok := terminated(buf)
		if !ok {
			return errs.New("removed value was not terminated within %d bytes", len(buf))
		}

		limit := in.cfg.StringLength - 1
		if want = truncate(want, limit); got != want {
			return errs.New("removed %q, expected %q", got, want)
		}
		if len(args) == 1 {
			if check := truncate(args[0], limit); got != check {
				return errs.New("removed %q, trace expected %q", got, check)
			}
		}

		fmt.Fprintf(in.out, "Removed %s from queue\n", got)
		in.show(false)
		return nil
	}
}

func cmdSize(_ context.Context, in *Interpreter, args []string) error {
	got := in.q.Size()
	if want := in.expected.len(); got != want {
		return errs.New("size is %d, expected %d", got, want)
	}

	if len(args) == 1 {
		want, err := strconv.Atoi(args[0])
		if err != nil {
			return errs.New("invalid size %q", args[0])
		}
		if got != want {
			return errs.New("size is %d, trace expected %d", got, want)
		}
	}

	fmt.Fprintf(in.out, "Queue size = %d\n", got)
	return nil
}

func cmdReverse(_ context.Context, in *Interpreter, _ []string) error {
	before := in.alloc.Stats()
	in.q.Reverse()
	if after := in.alloc.Stats(); after != before {
		return errs.New("reverse reserved or released storage")
	}

	in.expected.reverse()
	in.show(false)
	return nil
}

func cmdShow(_ context.Context, in *Interpreter, _ []string) error {
	in.show(true)
	return nil
}

func cmdOption(_ context.Context, in *Interpreter, args []string) error {
	name, value := args[0], args[1]

	if name == "verbose" {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return errs.New("invalid verbose value %q", value)
		}
		in.cfg.Verbose = v
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return errs.New("invalid %s value %q", name, value)
	}

	switch name {
	case "malloc":
		if err := in.alloc.SetFailPercent(n); err != nil {
			return err
		}
		in.cfg.MallocFailPercent = n
	case "length":
		if n < 1 {
			return errs.New("length must be positive, got %d", n)
		}
		in.cfg.StringLength = n
	case "error":
		if n < 1 {
			return errs.New("error limit must be positive, got %d", n)
		}
		in.cfg.ErrorLimit = n
	default:
		return errs.New("unknown option %q", name)
	}

	return nil
}

func cmdSource(ctx context.Context, in *Interpreter, args []string) error {
	if in.depth >= maxSourceDepth {
		return errs.New("source nested deeper than %d", maxSourceDepth)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return errs.Wrap(err)
	}
	defer f.Close()

	in.depth++
	defer func() { in.depth-- }()

	return in.exec(ctx, f)
}

func cmdHelp(_ context.Context, in *Interpreter, _ []string) error {
	names := maps.Keys(commands)
	slices.Sort(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(in.out, "  %-18s # %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func cmdQuit(_ context.Context, in *Interpreter, _ []string) error {
	in.quit = true
	return nil
}

func (in *Interpreter) show(always bool) {
	if !always && !in.cfg.Verbose {
		return
	}

	if in.q == nil {
		fmt.Fprintln(in.out, "q = NULL")
		return
	}

	var sb strings.Builder
	sb.WriteString("q = [")
	sb.WriteString(strings.Join(in.expected.head(showLimit), " "))
	if in.expected.len() > showLimit {
		sb.WriteString(" ...")
	}
	sb.WriteString("]")
	fmt.Fprintln(in.out, sb.String())
}

func repetitions(args []string, idx int) (int, error) {
	if len(args) <= idx {
		return 1, nil
	}

	n, err := strconv.Atoi(args[idx])
	if err != nil || n < 1 {
		return 0, errs.New("invalid repetition count %q", args[idx])
	}
	return n, nil
}

func terminated(buf []byte) (string, bool) {
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return "", false
	}
	return string(buf[:i]), true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
