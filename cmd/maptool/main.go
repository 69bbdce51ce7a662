package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/level"
	"github.com/lixenwraith/keymaze/logging"
	"github.com/lixenwraith/keymaze/maze"
)

const usage = `Usage: maptool [-q] [-v...] <command> [arguments]

Commands:
  upgrade [-pretty] [-format json|yaml] <input> [output]   convert a legacy map to a structured one
  generate [-width n] [-height n] [-braid f] [-seed n] [-doors n] [-preview] [output]
                                                           write a random legacy map
  check <map>                                              report whether the goal can be reached
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("maptool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	quiet := fs.Bool("q", false, "Disable logging")
	var verbosity logging.VerbosityFlag
	fs.Var(&verbosity, "v", "Increase log verbosity (repeatable)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, done, err := logging.New(logging.Options{Quiet: *quiet, Verbosity: int(verbosity)})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer done()
	zap.ReplaceGlobals(logger)

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var cmdErr error
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "upgrade":
		cmdErr = upgrade(rest, stdout, stderr)
	case "generate":
		cmdErr = generate(rest, stdout, stderr)
	case "check":
		cmdErr = check(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, flag.ErrHelp) {
			return 0
		}
		if errors.Is(cmdErr, errUsage) {
			return 2
		}
		logging.LogError(logger, cmdErr)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func subcommand(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("maptool "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseSub(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-"
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return errors.Wrap(err, "couldn't write to stdout")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "couldn't write to %s", path)
	}
	zap.L().Info("map written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func upgrade(args []string, stdout, stderr io.Writer) error {
	fs := subcommand("upgrade", stderr)
	pretty := fs.Bool("pretty", false, "Indent the output")
	formatName := fs.String("format", "", "Output format: json or yaml (default from output extension, else json)")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintln(stderr, "upgrade needs an input and an optional output path")
		return errUsage
	}
	in, out := fs.Arg(0), fs.Arg(1)

	format := level.FormatJSON
	if out != "" && out != "-" {
		format = level.FormatFor(out)
	}
	if *formatName != "" {
		var err error
		if format, err = level.ParseFormat(*formatName); err != nil {
			return err
		}
	}

	f, err := os.Open(in)
	if err != nil {
		return errors.Wrapf(err, "couldn't open %s", in)
	}
	defer f.Close()

	m, err := level.ParseLegacy(f)
	if err != nil {
		return errors.Wrapf(err, "couldn't parse %s", in)
	}

	var buf bytes.Buffer
	if err := level.EncodeStructured(&buf, m, format, *pretty); err != nil {
		return errors.Wrapf(err, "couldn't encode %s", in)
	}
	return writeOutput(out, buf.Bytes(), stdout)
}

func generate(args []string, stdout, stderr io.Writer) error {
	fs := subcommand("generate", stderr)
	width := fs.Int("width", 21, "Maze width, rounded down to odd")
	height := fs.Int("height", 15, "Maze height, rounded down to odd")
	braid := fs.Float64("braid", 0, "Braiding factor in [0, 1]")
	seed := fs.Int64("seed", 0, "Random seed (0 = time based)")
	doors := fs.Int("doors", 2, fmt.Sprintf("Locked doors along the solution (0..%d)", maze.MaxDoors))
	preview := fs.Bool("preview", false, "Draw the maze and its solution to stderr")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "generate takes at most one output path")
		return errUsage
	}
	if *braid < 0 || *braid > 1 {
		return errors.Errorf("braid %v outside [0, 1]", *braid)
	}

	m, res, err := maze.Level(maze.Config{
		Width:    *width,
		Height:   *height,
		Braiding: *braid,
		Doors:    *doors,
		Seed:     *seed,
	})
	if err != nil {
		return errors.Wrap(err, "couldn't generate level")
	}
	zap.L().Info("maze generated",
		zap.Int64("seed", res.Seed),
		zap.Int("path_length", len(res.SolutionPath)),
		zap.Int("keys", len(m.Keys)))

	if *preview {
		draw(stderr, m, res)
	}

	var buf bytes.Buffer
	if err := level.EncodeLegacy(&buf, m); err != nil {
		return errors.Wrap(err, "couldn't encode generated level")
	}
	return writeOutput(fs.Arg(0), buf.Bytes(), stdout)
}

// draw prints the maze with its solution path marked
func draw(w io.Writer, m *level.Map, res maze.Result) {
	onPath := make(map[level.Point]bool, len(res.SolutionPath))
	for _, p := range res.SolutionPath {
		onPath[p] = true
	}
	keys := make(map[level.Point]rune, len(m.Keys))
	for _, k := range m.Keys {
		keys[level.Point{X: k.X, Y: k.Y}] = rune(k.Letter)
	}

	var b strings.Builder
	for y := 0; y < m.Dims.Height; y++ {
		for x := 0; x < m.Dims.Width; x++ {
			p := level.Point{X: x, Y: y}
			tile := m.At(p)
			switch {
			case p == m.Start:
				b.WriteRune('S')
			case m.Goal != nil && p == *m.Goal:
				b.WriteRune('G')
			case tile.Kind == level.TileDoor:
				b.WriteRune(tile.Door)
			case keys[p] != 0:
				b.WriteRune(keys[p])
			case tile.Kind == level.TileWall:
				b.WriteRune('█')
			case onPath[p]:
				b.WriteRune('•')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(w, "seed %d, solution %d steps\n%s", res.Seed, len(res.SolutionPath), b.String())
}

func check(args []string, stdout, stderr io.Writer) error {
	fs := subcommand("check", stderr)
	if err := parseSub(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "check needs exactly one map path")
		return errUsage
	}

	m, err := level.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	report := maze.Check(m)

	fmt.Fprintf(stdout, "%s: %dx%d, %d keys\n", fs.Arg(0), m.Dims.Width, m.Dims.Height, len(m.Keys))
	fmt.Fprintf(stdout, "keys collected: %s\n", letters(report.Collected))
	fmt.Fprintf(stdout, "doors opened:   %s\n", letters(report.Opened))
	fmt.Fprintf(stdout, "doors locked:   %d\n", report.LockedDoors)
	fmt.Fprintf(stdout, "reachable:      %d tiles\n", report.Reachable)

	switch {
	case !report.HasGoal:
		return errors.Errorf("%s has no goal tile", fs.Arg(0))
	case !report.GoalReachable:
		return errors.Errorf("goal of %s cannot be reached", fs.Arg(0))
	}
	fmt.Fprintln(stdout, "solvable")
	return nil
}

func letters(rs []rune) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
