// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"hash"
	"sort"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/wire"
)

// DefaultWidth is the fan-out used when a caller doesn't specify one.
const DefaultWidth = 13

// node is a tree node. Internal nodes carry width child slots; leaves carry
// a bucket of records. Neither carries a reference to its parent — dirtying
// an ancestor chain happens as a side effect of the mutating descent from
// the root, never by walking upward.
type node struct {
	leaf     bool
	children []*node
	records  []dns.RR
	dirty    bool
	cached   []byte
}

func newNode(leaf bool, width int) *node {
	n := &node{leaf: leaf, dirty: true}
	if !leaf {
		n.children = make([]*node, width)
	}
	return n
}

// Tree is the fixed-arity hash-tree zone store. Every owner name routes to
// exactly one leaf via routeIndex, applied repeatedly down depth levels;
// leaves bucket records by route, not by exact owner, so two different
// names can share a leaf. Each internal node memoizes the digest of its
// subtree and a dirty flag; a mutation marks every node on the path from
// the touched leaf up to the root dirty, a read never does.
//
// Producer and verifier must agree on depth and width out of band; they
// aren't carried in the digest record.
type Tree struct {
	origin string
	depth  int
	width  int
	root   *node

	algoSet   bool
	algoInUse uint8
}

// NewTree creates an empty zone store for origin with the given fan-out
// parameters. depth and width must match across every participant that is
// meant to reach the same digest incrementally; they don't have to match
// the flat back-end's (there's no such thing as "the flat back-end's
// parameters") or another tree's.
func NewTree(origin string, depth, width int) *Tree {
	if width < 1 {
		width = DefaultWidth
	}
	if depth < 0 {
		depth = 0
	}
	return &Tree{
		origin: dns.CanonicalName(origin),
		depth:  depth,
		width:  width,
	}
}

func (z *Tree) Origin() string { return z.origin }

// routeKey canonicalizes an owner name into the bytes routeIndex walks: the
// name's lowercase, uncompressed DNS wire form.
func routeKey(owner string) string {
	name := dns.CanonicalName(owner)
	buf := make([]byte, 256)
	off, err := dns.PackDomainName(name, buf, 0, nil, false)
	if err != nil {
		return name
	}
	return string(buf[:off])
}

// routeIndex picks the child slot at depth level for key, per spec §4.4:
// name[d mod len(name)] mod width.
func routeIndex(key string, level, width int) int {
	return int(key[level%len(key)]) % width
}

func (z *Tree) Add(rr dns.RR) error {
	if !InZone(z.origin, rr.Header().Name) {
		return newOutOfZoneError(rr.Header().Name, rr.Header().Rrtype)
	}
	key := routeKey(rr.Header().Name)
	z.root = insertInto(z.root, key, 0, z.depth, z.width, rr)
	return nil
}

func insertInto(n *node, key string, level, depth, width int, rr dns.RR) *node {
	if n == nil {
		n = newNode(level == depth, width)
	}
	n.dirty = true

	if level == depth {
		n.records = append(n.records, rr)
		return n
	}

	idx := routeIndex(key, level, width)
	n.children[idx] = insertInto(n.children[idx], key, level+1, depth, width, rr)
	return n
}

func (z *Tree) Remove(rr dns.RR) bool {
	if z.root == nil {
		return false
	}
	key := routeKey(rr.Header().Name)
	_, removed := removeFrom(z.root, key, 0, z.depth, z.width, rr)
	return removed
}

// removeFrom only sets dirty along the path it actually mutates; a miss
// leaves every visited node untouched, so a failed removal behaves like a
// pure read for caching purposes.
func removeFrom(n *node, key string, level, depth, width int, rr dns.RR) (*node, bool) {
	if n == nil {
		return nil, false
	}

	if level == depth {
		for i, x := range n.records {
			if wire.Equal(x, rr) {
				n.records = append(n.records[:i], n.records[i+1:]...)
				n.dirty = true
				return n, true
			}
		}
		return n, false
	}

	idx := routeIndex(key, level, width)
	child, removed := removeFrom(n.children[idx], key, level+1, depth, width, rr)
	n.children[idx] = child
	if removed {
		n.dirty = true
	}
	return n, removed
}

func (z *Tree) RemoveAtApex(rrtype uint16, typeCovered uint16) []dns.RR {
	if z.root == nil {
		return nil
	}
	key := routeKey(z.origin)
	var removed []dns.RR
	z.root = removeMatching(z.root, key, 0, z.depth, z.width, func(rr dns.RR) bool {
		return isApexMatch(z.origin, rr, rrtype, typeCovered)
	}, &removed)
	return removed
}

// removeMatching walks the single path routeKey picks out — not a subtree
// scan — so it's safe to dirty every node it visits whenever anything below
// it was removed.
func removeMatching(n *node, key string, level, depth, width int, match func(dns.RR) bool, out *[]dns.RR) *node {
	if n == nil {
		return nil
	}

	if level == depth {
		kept := n.records[:0:0]
		changed := false
		for _, rr := range n.records {
			if match(rr) {
				*out = append(*out, rr)
				changed = true
			} else {
				kept = append(kept, rr)
			}
		}
		if changed {
			n.records = kept
			n.dirty = true
		}
		return n
	}

	idx := routeIndex(key, level, width)
	before := len(*out)
	n.children[idx] = removeMatching(n.children[idx], key, level+1, depth, width, match, out)
	if len(*out) > before {
		n.dirty = true
	}
	return n
}

// LeafForRead returns the records bucketed at owner's leaf, without marking
// anything dirty. Two different owners can route to the same leaf, so
// callers that want only owner's own records must filter the result
// themselves (ApexRecords does this for the origin).
func (z *Tree) LeafForRead(owner string) []dns.RR {
	if z.root == nil {
		return nil
	}
	key := routeKey(owner)
	n := z.root
	for level := 0; level < z.depth && n != nil; level++ {
		n = n.children[routeIndex(key, level, z.width)]
	}
	if n == nil {
		return nil
	}
	return append([]dns.RR(nil), n.records...)
}

func (z *Tree) ApexRecords() []dns.RR {
	var out []dns.RR
	for _, rr := range z.LeafForRead(z.origin) {
		if dns.CanonicalName(rr.Header().Name) == z.origin {
			out = append(out, rr)
		}
	}
	return out
}

func (z *Tree) AllRecords() []dns.RR {
	var out []dns.RR
	collectAll(z.root, &out)
	return out
}

func collectAll(n *node, out *[]dns.RR) {
	if n == nil {
		return
	}
	if n.leaf {
		*out = append(*out, n.records...)
		return
	}
	for _, c := range n.children {
		collectAll(c, out)
	}
}

// EnumerateCanonical walks branches 0..width-1 at every node and sorts
// within each leaf bucket. That produces the same order as Flat's only
// when depth is 0 (a single leaf); for depth > 0 it's bucket-grouped, not
// globally sorted — see the Zone interface doc.
func (z *Tree) EnumerateCanonical() []dns.RR {
	var out []dns.RR
	enumerate(z.root, &out)
	return out
}

func enumerate(n *node, out *[]dns.RR) {
	if n == nil {
		return
	}
	if n.leaf {
		sorted := append([]dns.RR(nil), n.records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return wire.Compare(sorted[i], sorted[j]) < 0
		})
		*out = append(*out, sorted...)
		return
	}
	for _, c := range n.children {
		enumerate(c, out)
	}
}

// Digest recomputes only the subtrees marked dirty since the last call for
// the same algorithm. Switching algorithm between calls invalidates the
// whole tree: a node's memoized digest is an opaque []byte keyed implicitly
// by whichever hash last produced it, so Tree tracks the algorithm it was
// last computed for and forces a full recompute on change, exactly as if
// every node had just been touched.
func (z *Tree) Digest(algorithm uint8, codec *wire.Codec, newHash func() hash.Hash, warn wire.Warner) ([]byte, error) {
	if z.root == nil {
		return newHash().Sum(nil), nil
	}

	if !z.algoSet || z.algoInUse != algorithm {
		invalidate(z.root)
		z.algoInUse = algorithm
		z.algoSet = true
	}

	return digestNode(z.root, codec, newHash, warn)
}

func invalidate(n *node) {
	if n == nil {
		return
	}
	n.dirty = true
	n.cached = nil
	for _, c := range n.children {
		invalidate(c)
	}
}

func digestNode(n *node, codec *wire.Codec, newHash func() hash.Hash, warn wire.Warner) ([]byte, error) {
	if !n.dirty && n.cached != nil {
		return n.cached, nil
	}

	h := newHash()

	if n.leaf {
		sorted := append([]dns.RR(nil), n.records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return wire.Compare(sorted[i], sorted[j]) < 0
		})
		if err := wire.HashRecords(h, codec, sorted, warn); err != nil {
			return nil, err
		}
	} else {
		// A subtree that removals have left without records hashes to the
		// digest of empty input; it contributes nothing, like an empty slot.
		empty := newHash().Sum(nil)
		for _, child := range n.children {
			if child == nil {
				continue
			}
			d, err := digestNode(child, codec, newHash, warn)
			if err != nil {
				return nil, err
			}
			if bytes.Equal(d, empty) {
				continue
			}
			h.Write(d)
		}
	}

	n.cached = h.Sum(nil)
	n.dirty = false
	return n.cached, nil
}
