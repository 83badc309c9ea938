// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Csearch behaves like grep over the files named in a trigram index
// built by cindex, but narrows the candidate set with the index
// before line-scanning any file.
package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/hugeproblem/codesearch/index"
	csregexp "github.com/hugeproblem/codesearch/regexp"
)

func main() {
	// -h is this tool's "omit file names" flag, so help is --help only.
	cli.HelpFlag = &cli.BoolFlag{Name: "help", Usage: "show help"}
	app := &cli.App{
		Name:      "csearch",
		Usage:     "search the trigram index built by cindex",
		ArgsUsage: "pattern",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"x"},
				Usage:   "index file to search (defaults to $CSEARCHINDEX or the nearest .csearchindex)",
				EnvVars: []string{"CSEARCHINDEX"},
			},
			&cli.BoolFlag{Name: "i", Usage: "case-insensitive search"},
			&cli.BoolFlag{Name: "n", Usage: "show line numbers"},
			&cli.BoolFlag{Name: "l", Usage: "list matching file names only"},
			&cli.BoolFlag{Name: "c", Usage: "show match counts only"},
			&cli.BoolFlag{Name: "h", Usage: "omit file names from output"},
			&cli.IntFlag{Name: "B", Usage: "show `n` lines of context before each match"},
			&cli.IntFlag{Name: "A", Usage: "show `n` lines of context after each match"},
			&cli.IntFlag{Name: "C", Usage: "show `n` lines of context before and after each match"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print query plan and candidate counts"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one pattern is required", 2)
	}
	pat := c.Args().First()
	if c.Bool("i") {
		pat = "(?i)" + pat
	}

	re, err := csregexp.Compile(pat)
	if err != nil {
		return fmt.Errorf("parse pattern: %w", err)
	}
	q, err := csregexp.AnalyzeRegexp(pat)
	if err != nil {
		return fmt.Errorf("analyze pattern: %w", err)
	}
	if c.Bool("verbose") {
		pterm.EnableDebugMessages()
		pterm.Debug.Printfln("query plan: %s", q.String())
	}

	primary := c.String("index")
	if primary == "" {
		primary = index.File()
	}
	ix, err := index.Open(primary)
	if err != nil {
		return err
	}
	defer ix.Close()

	candidates := ix.PostingQuery(q)
	if err := ix.Err(); err != nil {
		return err
	}
	if c.Bool("verbose") {
		pterm.Debug.Printfln("%d candidate file(s)", len(candidates))
	}

	g := &csregexp.Grep{
		Regexp: re,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		L:      c.Bool("l"),
		C:      c.Bool("c"),
		N:      c.Bool("n"),
		H:      c.Bool("h"),
	}
	g.PreContext = c.Int("B")
	g.PostContext = c.Int("A")
	if n := c.Int("C"); n > 0 {
		g.PreContext = n
		g.PostContext = n
	}

	for _, id := range candidates {
		name := ix.Name(id).String()
		g.File(name)
	}
	return nil
}
