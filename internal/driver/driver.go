// Package driver runs a directory of queue traces, each in its own
// interpreter, and scores them.
package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/errs"

	"github.com/Philanthropists/strqueue/internal/logging"
	"github.com/Philanthropists/strqueue/internal/qtest"
	"github.com/Philanthropists/strqueue/pkg/pipe"
)

const traceExt = ".cmd"

// ErrNoTraces is returned when the trace directory holds no trace files.
var ErrNoTraces = errs.Class("no traces")

type Driver struct {
	Dir     string
	Workers int
	Config  qtest.Config

	Log *logging.Logger
}

// Report is the outcome of a single trace.
type Report struct {
	Name     string
	Result   qtest.Result
	Err      error
	Output   string
	Duration time.Duration
}

func (r Report) Passed() bool {
	return r.Err == nil && r.Result.Errors == 0
}

type Summary struct {
	Reports []Report
	Passed  int
}

func (d *Driver) log() *logging.Logger {
	if d.Log == nil {
		d.Log = logging.New()
	}
	return d.Log
}

func (d *Driver) workers() int {
	if d.Workers <= 0 {
		return runtime.NumCPU()
	}
	return d.Workers
}

// Discover lists the trace files of dir sorted by name.
func Discover(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+traceExt))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if len(paths) == 0 {
		return nil, ErrNoTraces.New("%s", dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// Run executes every trace of Dir and returns the reports sorted by name.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	paths, err := Discover(d.Dir)
	if err != nil {
		return Summary{}, err
	}

	d.log().Info("running traces",
		logging.String("dir", d.Dir),
		logging.Int("traces", len(paths)),
		logging.Int("workers", d.workers()))

	results := pipe.ConcurrentMap(ctx, d.workers(), pipe.Generate(ctx, paths...), d.runTrace)

	var summary Summary
	for _, r := range pipe.Collect(ctx, results) {
		summary.Reports = append(summary.Reports, r.Value)
		if r.Value.Passed() {
			summary.Passed++
		}
	}

	sort.Slice(summary.Reports, func(i, j int) bool {
		return summary.Reports[i].Name < summary.Reports[j].Name
	})

	if err := ctx.Err(); err != nil {
		return summary, errs.New("trace run interrupted: %w", err)
	}

	return summary, nil
}

func (d *Driver) runTrace(ctx context.Context, path string) pipe.Result[Report] {
	name := strings.TrimSuffix(filepath.Base(path), traceExt)
	log := d.log().With(logging.String("trace", name))
	report := Report{Name: name}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		report.Err = errs.Wrap(err)
		return pipe.Result[Report]{Value: report, Error: report.Err}
	}
	defer f.Close()

	var out bytes.Buffer
	in, err := qtest.New(d.Config, &out, log)
	if err != nil {
		report.Err = err
		return pipe.Result[Report]{Value: report, Error: err}
	}

	report.Result, report.Err = in.Run(ctx, f)
	report.Output = out.String()
	report.Duration = time.Since(start)

	log.Debug("trace finished",
		logging.Bool("passed", report.Passed()),
		logging.Int("errors", report.Result.Errors),
		logging.Duration("duration", report.Duration))

	return pipe.Result[Report]{Value: report, Error: report.Err}
}
