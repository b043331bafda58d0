package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/kernel/internal/config"
	"github.com/funvibe/kernel/internal/laws"
	"github.com/funvibe/kernel/internal/prettyprinter"
	"github.com/funvibe/kernel/internal/termgen"
)

const usage = `Usage: %s <command> [flags]

Commands:
  check    run the algebraic law checks over generated terms
  show     print generated terms
  laws     list the known laws
  help     show this message

Flags:
  -config <file>   read settings from file instead of the nearest kernel.yaml
  -seed <n>        override check.seed
  -count <n>       override check.count
  -depth <n>       override check.depth
  -law <name>      restrict the check to a law (repeatable)
`

// options are the command-line flags, applied over the loaded configuration.
type options struct {
	configPath string
	seed       *int64
	count      *int
	depth      *int
	laws       []string
}

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Diagnostics go to stderr, terms to stdout

	if os.Getenv("KERNEL_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	cmd := os.Args[1]
	opts, err := parseFlags(os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	switch cmd {
	case "help", "-help", "--help":
		fmt.Printf(usage, os.Args[0])
	case "laws":
		for _, name := range laws.Names() {
			fmt.Println(name)
		}
	case "check":
		os.Exit(handleCheck(opts))
	case "show":
		os.Exit(handleShow(opts))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", cmd)
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("flag %s needs a value", arg)
		}
		value := args[i+1]
		i++
		switch strings.TrimLeft(arg, "-") {
		case "config":
			opts.configPath = value
		case "seed":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid -seed %q: %w", value, err)
			}
			opts.seed = &n
		case "count":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid -count %q", value)
			}
			opts.count = &n
		case "depth":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > config.MaxCheckDepth {
				return nil, fmt.Errorf("invalid -depth %q (0..%d)", value, config.MaxCheckDepth)
			}
			opts.depth = &n
		case "law":
			opts.laws = append(opts.laws, value)
		default:
			return nil, fmt.Errorf("unknown flag %s", arg)
		}
	}
	return opts, nil
}

// loadConfig reads the explicit config file, or the nearest kernel.yaml
// above the working directory, and applies the flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.FindConfig(wd); err != nil {
			return nil, err
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if !config.IsTestMode {
			log.Printf("using %s", path)
		}
	}

	if opts.seed != nil {
		cfg.Check.Seed = *opts.seed
	}
	if opts.count != nil {
		cfg.Check.Count = *opts.count
	}
	if opts.depth != nil {
		cfg.Check.Depth = *opts.depth
	}
	if len(opts.laws) > 0 {
		cfg.Check.Laws = opts.laws
	}
	return cfg, nil
}

func handleCheck(opts *options) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	selected, err := laws.Select(cfg.Check.Laws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	g := termgen.New(cfg.Check.Seed)
	failures := laws.Run(g, selected, cfg.Check.Count, cfg.Check.Depth)

	color := useColor()
	for _, f := range failures {
		fmt.Println(paint(color, "31", "FAIL"), f.Error())
	}
	total := cfg.Check.Count * len(selected)
	summary := fmt.Sprintf("%d checks, %d failures (seed %d, depth %d)", total, len(failures), cfg.Check.Seed, cfg.Check.Depth)
	if len(failures) > 0 {
		fmt.Println(paint(color, "31", summary))
		return 1
	}
	fmt.Println(paint(color, "32", summary))
	return 0
}

func handleShow(opts *options) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	g := termgen.New(cfg.Check.Seed)
	labeler := g.Signature().Labeler()
	printer := prettyprinter.NewTermPrinterWithWidth(labeler, cfg.Printer.Width, cfg.Printer.Indent)
	color := useColor()
	for i := 0; i < cfg.Check.Count; i++ {
		t := g.Term(cfg.Check.Depth)
		fmt.Println(printer.Print(t))
		if typ := t.Type(); typ != nil {
			fmt.Println(paint(color, "2", "  : "+printer.Print(typ)))
		}
	}
	return 0
}

// useColor reports whether stdout is a terminal that accepts ANSI colours.
func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
