// Package console implements a line-oriented command interpreter that
// drives a [strq.Queue]. It is used for manual exploration of the
// queue and for scripted tests with fault injection.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"deedles.dev/strq"
	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"
)

var (
	ErrNoQueue        = errors.New("no queue")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad usage")
	ErrEmpty          = errors.New("queue is empty")
	ErrMismatch       = errors.New("unexpected result")
	ErrLeak           = errors.New("storage leaked")
)

// Config holds the settings of a Console. Most of them can also be
// changed while running with the option command.
type Config struct {
	// FailPercent is the chance that any allocation made by the queue
	// is refused.
	FailPercent int

	// Length is the size of the buffer that removed strings are copied
	// into.
	Length int

	// Echo causes every command to be written to the output before it
	// runs.
	Echo bool

	// Seed seeds the source used for fault injection. Zero picks a
	// random seed.
	Seed uint64
}

// DefaultConfig returns the configuration used when nothing else is
// specified.
func DefaultConfig() Config {
	return Config{
		Length: 1024,
	}
}

// Console runs commands against a single current queue. Every
// allocation made by that queue goes through a tracker so that leaks
// can be reported when the queue is freed.
type Console struct {
	cfg Config
	out io.Writer
	log hclog.Logger

	tracker strq.Tracker
	faulty  strq.Faulty

	q    *strq.Queue
	quit bool
}

// New returns a Console that writes command output to out and reports
// failed commands to log. If log is nil, nothing is logged.
func New(out io.Writer, log hclog.Logger, cfg Config) *Console {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if cfg.Length <= 0 {
		cfg.Length = DefaultConfig().Length
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	c := Console{
		cfg: cfg,
		out: out,
		log: log,
	}
	c.faulty = strq.Faulty{
		Allocator: &c.tracker,
		Percent:   cfg.FailPercent,
		Rand:      rand.New(rand.NewPCG(seed, seed>>32|1)),
	}

	return &c
}

// Config returns the current configuration.
func (c *Console) Config() Config {
	return c.cfg
}

// Exec runs a single command line. Blank lines and lines containing
// only a comment are ignored.
func (c *Console) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil
	}

	if c.cfg.Echo {
		fmt.Fprintf(c.out, "cmd> %s\n", line)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%q: %w", args[0], ErrUnknownCommand)
	}
	if len(args)-1 < cmd.minArgs || len(args)-1 > cmd.maxArgs {
		return fmt.Errorf("%s: %w: usage: %s", args[0], ErrUsage, cmd.usage)
	}

	return cmd.run(c, args[1:])
}

// Run executes every line read from r until either r is exhausted or
// a quit command is run. It returns the number of commands that
// failed and any error encountered while reading r.
func (c *Console) Run(r io.Reader) (failed int, err error) {
	s := bufio.NewScanner(r)
	var lineno int
	for !c.quit && s.Scan() {
		lineno++

		err := c.Exec(s.Text())
		if err != nil {
			failed++
			c.log.Error("command failed", "line", lineno, "error", err)
			fmt.Fprintf(c.out, "ERROR: %v\n", err)
		}
	}

	return failed, s.Err()
}

// Close frees the current queue, if any, and reports whether any
// storage allocated through the console was leaked.
func (c *Console) Close() error {
	return c.free()
}

func (c *Console) free() error {
	c.q.Free()
	c.q = nil

	if c.tracker.Leaked() {
		err := fmt.Errorf(
			"%w: %d nodes, %d payloads, %d bytes",
			ErrLeak,
			c.tracker.Live(strq.BlockNode),
			c.tracker.Live(strq.BlockPayload),
			c.tracker.Bytes(),
		)
		c.log.Error("leak detected", "error", err)
		return err
	}
	return nil
}

// faultsExpected reports whether an allocation failure is a possible
// outcome rather than a bug.
func (c *Console) faultsExpected() bool {
	return c.faulty.Percent > 0
}
