// qtest runs queue commands read from a file or standard input.
//
// Usage:
//
//	qtest [flags] [file]
//
// Each flag falls back to an environment variable when it isn't
// given: QTEST_FAIL, QTEST_LENGTH, QTEST_ECHO and QTEST_LOG_LEVEL.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"deedles.dev/strq/internal/console"
	"github.com/hashicorp/go-hclog"
)

func run() (int, error) {
	def := console.DefaultConfig()

	fail := flag.Int("fail", getIntEnvDef("QTEST_FAIL", def.FailPercent), "percent chance that an allocation is refused")
	length := flag.Int("length", getIntEnvDef("QTEST_LENGTH", def.Length), "size of the buffer used by rh")
	echo := flag.Bool("echo", getBoolEnvDef("QTEST_ECHO", def.Echo), "echo commands before running them")
	seed := flag.Uint64("seed", 0, "seed for fault injection, or 0 for a random seed")
	level := flag.String("v", getEnvDef("QTEST_LOG_LEVEL", "warn"), "log level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := hclog.New(&hclog.LoggerOptions{
		Name:   "qtest",
		Level:  hclog.LevelFromString(*level),
		Output: os.Stderr,
	})

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		file, err := os.Open(flag.Arg(0))
		if err != nil {
			return 0, fmt.Errorf("open script: %w", err)
		}
		defer file.Close()
		in = file
	}

	c := console.New(os.Stdout, log, console.Config{
		FailPercent: *fail,
		Length:      *length,
		Echo:        *echo,
		Seed:        *seed,
	})

	failed, err := c.Run(in)
	if err != nil {
		return failed, fmt.Errorf("read commands: %w", err)
	}
	if err := c.Close(); err != nil {
		return failed, err
	}

	log.Info("done", "failed", failed)
	return failed, nil
}

func main() {
	failed, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d commands failed\n", failed)
		os.Exit(1)
	}
}
