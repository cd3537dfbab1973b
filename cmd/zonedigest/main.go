// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command zonedigest computes, inserts, and verifies zone digest records
// (RFC 8976-style) over a DNS zone.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/miekg/dns"
	"github.com/urfave/cli/v2"

	"github.com/tsavola/zonedigest"
	"github.com/tsavola/zonedigest/apex"
	"github.com/tsavola/zonedigest/digest"
	"github.com/tsavola/zonedigest/lifecycle"
	"github.com/tsavola/zonedigest/signer"
	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/update"
	"github.com/tsavola/zonedigest/wire"
	"github.com/tsavola/zonedigest/zlog"
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "zonedigest",
		Usage:     "compute, insert and verify zone digest records",
		ArgsUsage: "origin [zonefile]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "c", Usage: "calculate digest(s) and patch apex records"},
			&cli.BoolFlag{Name: "v", Usage: "verify digest(s)"},
			&cli.IntSliceFlag{Name: "p", Usage: "add a placeholder apex digest of algorithm N (repeatable, up to 10)"},
			&cli.StringFlag{Name: "z", Usage: "zone-signing key file (FILE.key / FILE.private)"},
			&cli.StringFlag{Name: "u", Usage: "apply an incremental update file"},
			&cli.StringFlag{Name: "o", Usage: "write the resulting zone to FILE"},
			&cli.BoolFlag{Name: "t", Usage: "print a phase timing breakdown to stdout"},
			&cli.BoolFlag{Name: "q", Usage: "quiet mode (errors only)"},
			&cli.IntFlag{Name: "D", Value: zonedigest.DefaultDepth, Usage: "tree depth"},
			&cli.IntFlag{Name: "W", Value: zonedigest.DefaultWidth, Usage: "tree width"},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Args().Get(0) == "" {
				return cli.Exit("origin argument is required", 2)
			}
			if ctx.IntSlice("p") != nil && len(ctx.IntSlice("p")) > zonedigest.MaxPlaceholders {
				return cli.Exit(fmt.Sprintf("at most %d -p flags allowed", zonedigest.MaxPlaceholders), 2)
			}
			return nil
		},
		Action: run,
		// Run returns exit-coded errors to the caller instead of exiting;
		// main reports them and sets the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type timings struct {
	enabled bool
	spans   []string
}

func (t *timings) phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if t.enabled {
		t.spans = append(t.spans, fmt.Sprintf("%s: %s", name, time.Since(start)))
	}
	return err
}

func (t *timings) report() {
	if !t.enabled {
		return
	}
	for _, s := range t.spans {
		fmt.Println(s)
	}
}

func run(ctx *cli.Context) error {
	origin := dns.Fqdn(ctx.Args().Get(0))
	zonefile := ctx.Args().Get(1)

	log, err := zlog.New(ctx.Bool("q"))
	if err != nil {
		return err
	}
	warn := wire.Warner(zlog.Warner(log))

	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()
	z := store.NewTree(origin, ctx.Int("D"), ctx.Int("W"))

	t := &timings{enabled: ctx.Bool("t")}
	mutated := false
	failed := false

	err = t.phase("load", func() error {
		r, closeFn, err := openZoneInput(zonefile)
		if err != nil {
			return err
		}
		defer closeFn()
		return loadZone(z, r, zonefile, warn)
	})
	if err != nil {
		return err
	}

	if placeholders := ctx.IntSlice("p"); len(placeholders) > 0 {
		mutated = true
		err = t.phase("placeholders", func() error {
			algs := make([]uint8, len(placeholders))
			for i, p := range placeholders {
				algs[i] = uint8(p)
			}
			return lifecycle.AddPlaceholders(z, codec, reg, algs, warn)
		})
		if err != nil {
			return err
		}
	}

	var key *signer.Key
	if keyFile := ctx.String("z"); keyFile != "" {
		key, err = signer.Load(keyFile, origin)
		if err != nil {
			return err
		}
	}

	if ctx.Bool("c") {
		mutated = true
		err = t.phase("calculate", func() error {
			return lifecycle.Calculate(z, codec, reg, key, warn)
		})
		if err != nil {
			return err
		}
	}

	if ctx.Bool("v") {
		err = t.phase("verify", func() error {
			result, err := lifecycle.Verify(z, codec, reg, warn)
			if err != nil {
				return err
			}
			failed = result.Failed()
			return nil
		})
		if err != nil {
			return err
		}
	}

	if updateFile := ctx.String("u"); updateFile != "" {
		mutated = true
		err = t.phase("update", func() error {
			f, err := os.Open(updateFile)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := update.Apply(z, f, warn); err != nil {
				return err
			}
			if ctx.Bool("c") {
				return lifecycle.Calculate(z, codec, reg, key, warn)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if outFile := ctx.String("o"); outFile != "" && mutated {
		err = t.phase("write", func() error {
			return writeZone(z, outFile)
		})
		if err != nil {
			return err
		}
	}

	t.report()

	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

func openZoneInput(path string) (io.Reader, func() error, error) {
	if path == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func loadZone(z store.Zone, r io.Reader, filename string, warn wire.Warner) error {
	parser := dns.NewZoneParser(r, z.Origin(), filename)
	for rr, ok := parser.Next(); ok; rr, ok = parser.Next() {
		if err := z.Add(rr); err != nil {
			if _, isOutOfZone := err.(*store.OutOfZoneError); isOutOfZone {
				warn.Warn("%s", err)
				continue
			}
			return err
		}
	}
	if err := parser.Err(); err != nil {
		return fmt.Errorf("zone file: %w", err)
	}
	if _, err := apex.FindSOA(z); err != nil {
		return err
	}
	return nil
}

func writeZone(z store.Zone, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// EnumerateCanonical only guarantees each bucket is sorted, not the
	// whole zone (true for the tree back-end at any depth > 0); a written
	// zone file must be globally sorted per spec §6.
	records := z.EnumerateCanonical()
	sort.SliceStable(records, func(i, j int) bool {
		return wire.Compare(records[i], records[j]) < 0
	})

	for _, rr := range records {
		if _, err := fmt.Fprintln(f, rr.String()); err != nil {
			return err
		}
	}
	return nil
}
