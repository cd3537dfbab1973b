// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"testing"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/wire"
)

func TestTreeDegeneratesToSingleLeafAtDepthZero(t *testing.T) {
	codec := wire.NewCodec(wire.TypeFallback, false)

	tree := NewTree("example.org.", 0, 4)
	flat := NewFlat("example.org.")

	recs := []string{
		"example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 1 3600 600 86400 3600",
		"www.example.org. 3600 IN A 192.0.2.1",
		"mail.example.org. 3600 IN A 192.0.2.2",
	}
	for _, s := range recs {
		rr := mustRR(t, s)
		if err := tree.Add(rr); err != nil {
			t.Fatal(err)
		}
		if err := flat.Add(rr); err != nil {
			t.Fatal(err)
		}
	}

	td, err := tree.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	fd, err := flat.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(td, fd) {
		t.Error("expected a depth-0 tree's digest to match the flat back-end's")
	}
}

func TestTreeIncrementalMatchesFromScratch(t *testing.T) {
	codec := wire.NewCodec(wire.TypeFallback, false)
	const depth, width = 2, 5

	rng := rand.New(rand.NewSource(1))

	var owners []string
	for i := 0; i < 40; i++ {
		owners = append(owners, fmt.Sprintf("host%d.example.org.", i))
	}

	incremental := NewTree("example.org.", depth, width)
	var added []dns.RR

	for i := 0; i < 200; i++ {
		owner := owners[rng.Intn(len(owners))]
		rr := mustRR(t, fmt.Sprintf("%s 3600 IN A 192.0.2.%d", owner, 1+rng.Intn(250)))

		if rng.Intn(4) == 0 && len(added) > 0 {
			victim := added[rng.Intn(len(added))]
			incremental.Remove(victim)
			continue
		}

		if err := incremental.Add(rr); err != nil {
			t.Fatal(err)
		}
		added = append(added, rr)

		// Interleave digest calls, as a real calculate/verify sequence would,
		// to exercise the dirty/clean cache paths rather than only a single
		// final computation.
		if i%7 == 0 {
			if _, err := incremental.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil); err != nil {
				t.Fatal(err)
			}
		}
	}

	incrementalDigest, err := incremental.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil)
	if err != nil {
		t.Fatal(err)
	}

	fromScratch := NewTree("example.org.", depth, width)
	for _, rr := range incremental.AllRecords() {
		if err := fromScratch.Add(rr); err != nil {
			t.Fatal(err)
		}
	}
	fromScratchDigest, err := fromScratch.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(incrementalDigest, fromScratchDigest) {
		t.Error("expected incrementally maintained tree digest to equal a from-scratch rebuild")
	}
}

func TestTreeReadDoesNotDirty(t *testing.T) {
	tree := NewTree("example.org.", 2, 4)
	tree.Add(mustRR(t, "www.example.org. 3600 IN A 192.0.2.1"))

	codec := wire.NewCodec(wire.TypeFallback, false)
	if _, err := tree.Digest(wire.AlgorithmSHA384, codec, sha256.New, nil); err != nil {
		t.Fatal(err)
	}

	if tree.root.dirty {
		t.Fatal("root should be clean after a digest computation")
	}

	// Pure reads: must not dirty anything.
	_ = tree.LeafForRead("www.example.org.")
	_ = tree.AllRecords()
	_ = tree.ApexRecords()
	_ = tree.EnumerateCanonical()
	_ = tree.Remove(mustRR(t, "nonexistent.example.org. 3600 IN A 192.0.2.9"))

	if tree.root.dirty {
		t.Error("expected a pure read (and a no-op remove) to leave the tree clean")
	}
}

func TestTreeOutOfZoneRejected(t *testing.T) {
	tree := NewTree("example.org.", 1, 4)
	err := tree.Add(mustRR(t, "www.example.net. 3600 IN A 192.0.2.1"))
	if err == nil {
		t.Fatal("expected out-of-zone record to be rejected")
	}
	if _, ok := err.(*OutOfZoneError); !ok {
		t.Errorf("expected *OutOfZoneError, got %T", err)
	}
}

func TestTreeAlgorithmSwitchForcesRecompute(t *testing.T) {
	tree := NewTree("example.org.", 1, 4)
	tree.Add(mustRR(t, "www.example.org. 3600 IN A 192.0.2.1"))

	codec := wire.NewCodec(wire.TypeFallback, false)
	if _, err := tree.Digest(1, codec, sha256.New, nil); err != nil {
		t.Fatal(err)
	}
	// A different algorithm number with the same hash constructor still
	// must not reuse algorithm-1's cached node digests blindly; Digest
	// keys its cache invalidation off the algorithm argument itself.
	if _, err := tree.Digest(2, codec, sha256.New, nil); err != nil {
		t.Fatal(err)
	}
	if tree.algoInUse != 2 {
		t.Errorf("expected tree to track algorithm 2 as current, got %d", tree.algoInUse)
	}
}
