package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Philanthropists/strqueue/internal/driver"
	"github.com/Philanthropists/strqueue/internal/logging"
	"github.com/Philanthropists/strqueue/internal/qtest"
)

func getConfig(path string) (qtest.Config, error) {
	if path == "" {
		return qtest.DefaultConfig(), nil
	}
	return qtest.LoadConfig(path)
}

func main() {
	configPath := flag.String("config", "", "JSON config file applied to every trace")
	traces := flag.String("traces", "traces", "directory holding *.cmd traces")
	workers := flag.Int("workers", 0, "traces run concurrently, defaults to the number of CPUs")
	timeout := flag.Uint("timeout", 0, "seconds before the run is cancelled")
	verbose := flag.Bool("v", false, "print the output of passing traces too")
	flag.Parse()

	logger := logging.New()
	defer func() { _ = logger.Sync() }()

	cfg, err := getConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", logging.Error(err))
	}

	ctx := context.Background()
	if *timeout != 0 {
		t := time.Duration(*timeout) * time.Second
		nctx, cancel := context.WithTimeout(ctx, t)
		ctx = nctx
		defer cancel()
	}

	d := driver.Driver{
		Dir:     *traces,
		Workers: *workers,
		Config:  cfg,
		Log:     logger,
	}

	summary, err := d.Run(ctx)
	if err != nil {
		logger.Error("trace run failed", logging.Error(err))
	}

	for _, r := range summary.Reports {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
		}
		fmt.Printf("%s %-24s errors=%d commands=%d %v\n",
			status, r.Name, r.Result.Errors, r.Result.Commands, r.Duration.Round(time.Microsecond))

		if !r.Passed() || *verbose {
			fmt.Print(r.Output)
			if r.Err != nil {
				fmt.Printf("  %v\n", r.Err)
			}
		}
	}
	fmt.Printf("passed %d/%d\n", summary.Passed, len(summary.Reports))

	if err != nil || summary.Passed != len(summary.Reports) {
		_ = logger.Sync()
		os.Exit(1)
	}
}
