package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Philanthropists/strqueue/internal/logging"
	"github.com/Philanthropists/strqueue/internal/qtest"
)

var GitCommit string

func getConfig(path string) (qtest.Config, error) {
	if path == "" {
		return qtest.DefaultConfig(), nil
	}
	return qtest.LoadConfig(path)
}

func version() string {
	if len(GitCommit) >= 3 {
		return GitCommit[:3]
	}
	return "dev"
}

func main() {
	configPath := flag.String("config", "", "JSON config file")
	traceFile := flag.String("f", "", "read commands from file instead of stdin")
	verbose := flag.Bool("v", false, "echo commands and show the queue after each one")
	malloc := flag.Int("malloc", -1, "percentage of allocations that fail")
	seed := flag.Int64("seed", 0, "seed for injected allocation failures")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version())
		return
	}

	logger := logging.New()

	cfg, err := getConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", logging.Error(err))
	}
	if *verbose {
		cfg.Verbose = true
		logger.SetLevel(logging.DebugLevel)
	}
	if *malloc >= 0 {
		cfg.MallocFailPercent = *malloc
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	var input io.Reader = os.Stdin
	if *traceFile != "" {
		f, err := os.Open(*traceFile)
		if err != nil {
			logger.Fatal("failed to open trace", logging.String("file", *traceFile), logging.Error(err))
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in, err := qtest.New(cfg, os.Stdout, logger)
	if err != nil {
		logger.Fatal("invalid configuration", logging.Error(err))
	}

	res, err := in.Run(ctx, input)
	logger.Info("trace finished",
		logging.String("version", version()),
		logging.Int("commands", res.Commands),
		logging.Int("errors", res.Errors))
	_ = logger.Sync()

	if err != nil {
		logger.Fatal("trace did not complete", logging.Error(err))
	}
	if res.Errors > 0 {
		stop()
		os.Exit(1)
	}
}
