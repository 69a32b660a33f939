// Package main is a command-line front end for the incremark engine:
// it loads a grammar, parses an input document, and prints the syntax
// tree with absolute ranges.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/incremark"
	"github.com/dshills/incremark/grammar"
	"github.com/dshills/incremark/tree"
	"github.com/dshills/incremark/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		grammarPath string
		watchMode   bool
		showStats   bool
		showVersion bool
	)

	flag.StringVar(&grammarPath, "grammar", "", "Path to grammar file (.yaml, .toml, or .lua)")
	flag.StringVar(&grammarPath, "g", "", "Path to grammar file (shorthand)")
	flag.BoolVar(&watchMode, "watch", false, "Re-parse when the grammar file changes")
	flag.BoolVar(&showStats, "stats", false, "Print memoization statistics")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("incremark %s (%s)\n", version, commit)
		return 0
	}
	if grammarPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -grammar is required")
		flag.Usage()
		return 2
	}

	content, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading input: %v\n", err)
		return 1
	}

	g, err := watch.Load(grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := parseAndDump(g, content, showStats); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !watchMode {
			return 1
		}
	}

	if !watchMode {
		return 0
	}

	reloads := make(chan watch.Reload, 1)
	w, err := watch.New(grammarPath, func(r watch.Reload) { reloads <- r })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: watching grammar: %v\n", err)
		return 1
	}
	defer w.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "watching %s\n", grammarPath)
	for {
		select {
		case <-signals:
			return 0
		case r := <-reloads:
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", r.Err)
				continue
			}
			fmt.Fprintf(os.Stderr, "reloaded %s\n", r.Path)
			if err := parseAndDump(r.Grammar, content, showStats); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// readInput reads the document from a file, or stdin when no path is
// given.
func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// parseAndDump parses content with g and prints the tree.
func parseAndDump(g *grammar.Grammar, content string, showStats bool) error {
	s := incremark.NewSession(g, content)

	root, err := s.Root()
	if err != nil {
		var perr *incremark.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("parse failed at position %d", perr.Furthest)
		}
		return err
	}

	dump(s, root, 0)

	if showStats {
		hits, misses := s.MemoStats()
		fmt.Fprintf(os.Stderr, "memo: %d hits, %d misses\n", hits, misses)
	}
	return nil
}

// dump prints an anchored subtree, one node per line, with leaf text.
func dump(s *incremark.Session, a tree.Anchored, depth int) {
	indent := strings.Repeat("  ", depth)
	if a.Node.IsLeaf() {
		text, _ := s.NodeText(a)
		fmt.Printf("%s%s %s %s\n", indent, a.Node.Type(), a.Range(), truncate(text, 40))
	} else {
		fmt.Printf("%s%s %s\n", indent, a.Node.Type(), a.Range())
	}
	for _, c := range a.Children() {
		dump(s, c, depth+1)
	}
}

func truncate(s string, max int) string {
	q := fmt.Sprintf("%q", s)
	if len(q) <= max {
		return q
	}
	return q[:max-3] + "..."
}
