package console

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"deedles.dev/strq"
)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int
	run     func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":     {usage: "new", help: "Create a new queue, freeing the current one", run: (*Console).cmdNew},
		"free":    {usage: "free", help: "Free the current queue", run: (*Console).cmdFree},
		"ih":      {usage: "ih str [n]", help: "Insert str at the head n times", minArgs: 1, maxArgs: 2, run: (*Console).cmdInsertHead},
		"it":      {usage: "it str [n]", help: "Insert str at the tail n times", minArgs: 1, maxArgs: 2, run: (*Console).cmdInsertTail},
		"rh":      {usage: "rh [str]", help: "Remove from the head, optionally checking the removed string", maxArgs: 1, run: (*Console).cmdRemoveHead},
		"rhq":     {usage: "rhq", help: "Remove from the head without reading the removed string", run: (*Console).cmdRemoveHeadQuiet},
		"size":    {usage: "size [n]", help: "Show the size of the queue, optionally checking it", maxArgs: 1, run: (*Console).cmdSize},
		"reverse": {usage: "reverse", help: "Reverse the queue", run: (*Console).cmdReverse},
		"sort":    {usage: "sort", help: "Sort the queue and check its order", run: (*Console).cmdSort},
		"show":    {usage: "show", help: "Show the contents of the queue", run: (*Console).cmdShow},
		"option":  {usage: "option [name value]", help: "Show options or set one of them", maxArgs: 2, run: (*Console).cmdOption},
		"help":    {usage: "help", help: "Show this list", run: (*Console).cmdHelp},
		"quit":    {usage: "quit", help: "Stop processing commands", run: (*Console).cmdQuit},
	}
}

func (c *Console) cmdNew(args []string) error {
	var err error
	if c.q != nil {
		err = c.free()
	}

	c.q = strq.New(strq.WithAllocator(&c.faulty), strq.WithLogger(c.log.Named("queue")))
	if c.q == nil {
		if c.faultsExpected() {
			fmt.Fprintln(c.out, "new: allocation refused")
			return err
		}
		return fmt.Errorf("new: allocation refused")
	}

	c.show()
	return err
}

func (c *Console) cmdFree(args []string) error {
	if c.q == nil {
		return fmt.Errorf("free: %w", ErrNoQueue)
	}

	err := c.free()
	c.show()
	return err
}

func repeat(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}

	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: invalid count %q", ErrUsage, args[1])
	}
	return n, nil
}

func (c *Console) insert(name string, insert func(string) bool, args []string) error {
	if c.q == nil {
		return fmt.Errorf("%s: %w", name, ErrNoQueue)
	}

	n, err := repeat(args)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	for i := range n {
		if !insert(args[0]) {
			if c.faultsExpected() {
				fmt.Fprintf(c.out, "%s: allocation refused after %d of %d\n", name, i, n)
				break
			}
			return fmt.Errorf("%s: insertion %d of %d failed", name, i+1, n)
		}
	}

	c.show()
	return nil
}

func (c *Console) cmdInsertHead(args []string) error {
	return c.insert("ih", c.q.InsertHead, args)
}

func (c *Console) cmdInsertTail(args []string) error {
	return c.insert("it", c.q.InsertTail, args)
}

func (c *Console) cmdRemoveHead(args []string) error {
	if c.q == nil {
		return fmt.Errorf("rh: %w", ErrNoQueue)
	}

	buf := make([]byte, c.cfg.Length)
	if !c.q.RemoveHead(buf) {
		return fmt.Errorf("rh: %w", ErrEmpty)
	}

	got := strq.Text(buf)
	fmt.Fprintf(c.out, "Removed %s from queue\n", got)
	if len(args) > 0 && got != args[0] {
		return fmt.Errorf("rh: %w: removed %q, expected %q", ErrMismatch, got, args[0])
	}

	c.show()
	return nil
}

func (c *Console) cmdRemoveHeadQuiet(args []string) error {
	if c.q == nil {
		return fmt.Errorf("rhq: %w", ErrNoQueue)
	}
	if !c.q.RemoveHead(nil) {
		return fmt.Errorf("rhq: %w", ErrEmpty)
	}

	c.show()
	return nil
}

func (c *Console) cmdSize(args []string) error {
	size := c.q.Size()
	fmt.Fprintf(c.out, "Queue size = %d\n", size)

	if len(args) > 0 {
		want, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("size: %w: invalid size %q", ErrUsage, args[0])
		}
		if size != want {
			return fmt.Errorf("size: %w: got %d, expected %d", ErrMismatch, size, want)
		}
	}
	return nil
}

func (c *Console) cmdReverse(args []string) error {
	if c.q == nil {
		return fmt.Errorf("reverse: %w", ErrNoQueue)
	}

	c.q.Reverse()
	c.show()
	return nil
}

func (c *Console) cmdSort(args []string) error {
	if c.q == nil {
		return fmt.Errorf("sort: %w", ErrNoQueue)
	}

	size := c.q.Size()
	c.q.Sort()
	if c.q.Size() != size {
		return fmt.Errorf("sort: %w: size changed from %d to %d", ErrMismatch, size, c.q.Size())
	}

	var prev string
	var i int
	for s := range c.q.All() {
		if i > 0 && strq.Compare([]byte(prev), []byte(s)) > 0 {
			return fmt.Errorf("sort: %w: %q before %q", ErrMismatch, prev, s)
		}
		prev = s
		i++
	}

	c.show()
	return nil
}

func (c *Console) cmdShow(args []string) error {
	c.show()
	return nil
}

func (c *Console) show() {
	if c.q == nil {
		fmt.Fprintln(c.out, "q = NULL")
		return
	}

	fmt.Fprintf(c.out, "q = [%s]\n", strings.Join(slices.Collect(c.q.All()), " "))
}

func (c *Console) cmdOption(args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(c.out, "echo\t%v\n", c.cfg.Echo)
		fmt.Fprintf(c.out, "fail\t%d\n", c.cfg.FailPercent)
		fmt.Fprintf(c.out, "length\t%d\n", c.cfg.Length)
		return nil
	case 1:
		return fmt.Errorf("option: %w: missing value for %q", ErrUsage, args[0])
	}

	name, value := args[0], args[1]
	switch name {
	case "echo":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option echo: %w: %q", ErrUsage, value)
		}
		c.cfg.Echo = v

	case "fail":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 100 {
			return fmt.Errorf("option fail: %w: %q is not a percentage", ErrUsage, value)
		}
		c.cfg.FailPercent = v
		c.faulty.Percent = v

	case "length":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("option length: %w: %q", ErrUsage, value)
		}
		c.cfg.Length = v

	default:
		return fmt.Errorf("option: %w: unknown option %q", ErrUsage, name)
	}

	c.log.Debug("option set", "name", name, "value", value)
	return nil
}

func (c *Console) cmdHelp(args []string) error {
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		cmd := commands[name]
		fmt.Fprintf(c.out, "  %-20s| %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (c *Console) cmdQuit(args []string) error {
	c.quit = true
	return nil
}
