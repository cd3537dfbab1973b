// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*

Package zonedigest and its subpackages implement a zone-digest engine: it
computes, inserts, and verifies a cryptographic digest record covering an
entire DNS zone, along the lines of RFC 8976 (ZONEMD), and can re-sign that
record after recomputing it.

This top-level package carries only the module's shared constants; the
actual work is split across subpackages by concern.


Subpackages

The wire subpackage canonicalizes and encodes DNS records for hashing, and
defines the apex digest record's RDATA layout and its two wire encodings
(a typed RR if the surrounding dns package has been told about the type, or
opaque RFC3597 RDATA otherwise).

The store subpackage holds a zone's records in memory, behind one Zone
interface with two back-ends: Flat, an unordered list sorted on demand, and
Tree, a fixed-arity hash tree that memoizes per-subtree digests so a
localized edit doesn't force re-hashing the whole zone.

The apex subpackage finds the things that live at a zone's origin: its SOA,
its digest records, and the RRSIGs covering them.

The digest subpackage computes a zone's digest for a given algorithm,
dispatching to whichever hashing scheme the store back-end in use
implements, via a small algorithm registry rather than a growing switch.

The lifecycle subpackage drives the three apex-record operations a run
performs: add placeholder digest records, calculate real digests into them,
and verify them against what's stored.

The signer subpackage loads a zone-signing key and produces RRSIGs over the
apex digest record set, delegating the signature math to miekg/dns.

The update subpackage applies an incremental update file — one "add" or
"del" directive per line — to a loaded zone.

The zlog subpackage is the leveled logger every other package diagnoses
through.

The cmd/zonedigest subpackage is the command-line driver tying all of the
above together: load a zone, optionally add placeholders, calculate,
verify, apply an update file, and write the result.


Usage

A run that adds a SHA-384 placeholder, computes it, and verifies it in one
pass, reading the zone from stdin and writing it to a file:

	zonedigest -p 1 -c -v -o example.org.signed example.org. < example.org.zone

As library code:

	package main

	import (
		"os"

		"github.com/tsavola/zonedigest/digest"
		"github.com/tsavola/zonedigest/lifecycle"
		"github.com/tsavola/zonedigest/store"
		"github.com/tsavola/zonedigest/wire"
	)

	func main() {
		z := store.NewFlat("example.org.")
		codec := wire.NewCodec(wire.TypeFallback, false)
		reg := digest.DefaultRegistry()

		// ... populate z via z.Add ...

		if err := lifecycle.AddPlaceholders(z, codec, reg, []uint8{wire.AlgorithmSHA384}, nil); err != nil {
			panic(err)
		}
		if err := lifecycle.Calculate(z, codec, reg, nil, nil); err != nil {
			panic(err)
		}

		_ = os.Stdout
	}

*/
package zonedigest
