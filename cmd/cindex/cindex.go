// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cindex builds or updates the trigram index used by csearch.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/hugeproblem/codesearch/index"
	"github.com/hugeproblem/codesearch/walk"
)

func main() {
	app := &cli.App{
		Name:      "cindex",
		Usage:     "build or update the trigram index used by csearch",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "index",
				Usage:   "index file to write (defaults to $CSEARCHINDEX or the nearest .csearchindex)",
				EnvVars: []string{"CSEARCHINDEX"},
			},
			&cli.BoolFlag{Name: "list", Usage: "list indexed paths and exit"},
			&cli.BoolFlag{Name: "reset", Usage: "discard the existing index before indexing"},
			&cli.BoolFlag{Name: "no-ignore", Usage: "disable the .gitignore-aware walker"},
			&cli.BoolFlag{Name: "all-files", Usage: "index dotfiles and backup files too"},
			&cli.StringFlag{Name: "e", Usage: "comma-separated list of extensions to index, e.g. go,rs"},
			&cli.BoolFlag{Name: "resume", Usage: "skip paths already recorded in the checkpoint file"},
			&cli.IntFlag{Name: "checkpoint-interval", Usage: "write the checkpoint file every N accepted files", Value: 1000},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print extra information"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func indexPath(c *cli.Context) string {
	primary := c.String("index")
	if primary == "" {
		primary = index.File()
	}
	if fi, err := os.Stat(primary); err == nil && fi.IsDir() {
		primary = filepath.Join(primary, ".csearchindex")
	}
	return primary
}

func run(c *cli.Context) error {
	primary := indexPath(c)

	if c.Bool("list") {
		return listPaths(primary)
	}

	args := c.Args().Slice()

	reset := c.Bool("reset")
	if reset && len(args) == 0 {
		os.Remove(primary)
		os.Remove(index.CheckpointPath(primary))
		return nil
	}
	if len(args) == 0 {
		ix, err := index.Open(primary)
		if err != nil {
			return err
		}
		for _, r := range ix.Roots().All() {
			args = append(args, r.String())
		}
		ix.Close()
	}

	for i, arg := range args {
		a, err := filepath.Abs(arg)
		if err != nil {
			pterm.Warning.Printfln("%s: %s", arg, err)
			a = ""
		}
		args[i] = a
	}
	sort.Strings(args)
	for len(args) > 0 && args[0] == "" {
		args = args[1:]
	}
	if len(args) == 0 {
		return errors.New("no paths to index")
	}

	if fi, err := os.Stat(primary); err != nil {
		reset = true
	} else if fi.IsDir() {
		return fmt.Errorf("index %s: path is a directory", primary)
	}
	file := primary + "~"

	var exts []string
	if e := c.String("e"); e != "" {
		exts = strings.Split(e, ",")
	}

	var done map[string]bool
	checkpointPath := index.CheckpointPath(primary)
	if c.Bool("resume") {
		var err error
		done, err = index.ReadCheckpoint(checkpointPath)
		if err != nil {
			return err
		}
	}

	cp, err := index.CreateCheckpoint(checkpointPath)
	if err != nil {
		return err
	}
	interval := c.Int("checkpoint-interval")
	accepted := 0

	ix, err := index.Create(file)
	if err != nil {
		return err
	}
	ix.Verbose = c.Bool("verbose")
	ix.LogSkip = ix.Verbose
	if ix.LogSkip {
		pterm.EnableDebugMessages()
	}

	var roots []index.Path
	for _, arg := range args {
		roots = append(roots, index.MakePath(arg))
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Compare(roots[j]) < 0 })
	ix.AddRoots(roots)

	w, err := walker(c)
	if err != nil {
		return err
	}

	allFiles := c.Bool("all-files")
	for _, arg := range args {
		pterm.Info.Printfln("index %s", arg)
		err := w.Walk(arg, func(path string, info fs.DirEntry, err error) error {
			if !allFiles && walk.DefaultSkip(path) {
				if info != nil && info.IsDir() {
					return walk.SkipDir
				}
				return nil
			}
			if err != nil {
				pterm.Warning.Printfln("%s: %s", path, err)
				return nil
			}
			if info == nil || !info.Type().IsRegular() {
				return nil
			}
			if !walk.MatchExtensions(path, exts) {
				return nil
			}
			if done[path] {
				return nil
			}
			if err := ix.AddFile(path); err != nil {
				if errors.Is(err, fs.ErrPermission) {
					pterm.Warning.Printfln("%s: %s", path, err)
					return nil
				}
				return err
			}
			accepted++
			if err := cp.Add(path); err != nil {
				return err
			}
			if accepted%interval == 0 {
				if err := cp.Flush(); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	pterm.Info.Println("flush index")
	if err := ix.Flush(); err != nil {
		return err
	}

	if reset {
		if err := os.Rename(file, primary); err != nil {
			return err
		}
	} else {
		pterm.Info.Printfln("merge %s %s", primary, file)
		if err := index.Merge(file+"~", primary, file); err != nil {
			return err
		}
		os.Remove(file)
		os.Rename(file+"~", primary)
	}

	if err := cp.Close(); err != nil {
		return err
	}
	if err := cp.Remove(); err != nil {
		return err
	}

	pterm.Info.Println("done")
	return nil
}

func walker(c *cli.Context) (walk.Walker, error) {
	if c.Bool("no-ignore") {
		return walk.NewWalker(), nil
	}
	return walk.NewGitignoreWalker()
}

func listPaths(primary string) error {
	ix, err := index.Open(primary)
	if err != nil {
		return err
	}
	defer ix.Close()
	for _, r := range ix.Roots().All() {
		fmt.Println(r.String())
	}
	return nil
}
