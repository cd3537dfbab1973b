// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store holds the in-memory container of a zone's records. It
// comes in two interchangeable back-ends behind one interface: Flat, an
// unordered list sorted on demand, and Tree, a fixed-arity hash tree that
// memoizes per-subtree digests so a localized edit doesn't force
// re-hashing the whole zone. Selection between them is a runtime
// constructor choice (NewFlat vs NewTree), never a build tag, per the
// back-end-abstraction design note.
//
// A Tree's digest depends on its depth, its width (DefaultWidth, 13, when
// none is given) and its routing: at depth d an owner goes to child
// key[d mod len(key)] mod width, where key is the owner's lowercase DNS
// wire form. The digest record carries none of these, so a producer and a
// verifier must be configured with the same depth and width.
package store

import (
	"hash"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/wire"
)

// Zone is the contract both back-ends satisfy.
type Zone interface {
	// Origin is the zone's origin, fully qualified and lowercased.
	Origin() string

	// Add inserts rr. It fails with an *OutOfZoneError if rr's owner is
	// neither the origin nor a subdomain of it (invariant I2).
	Add(rr dns.RR) error

	// Remove deletes the first record equal to rr (owner/type/class/RDATA),
	// wherever in the zone it is. It reports whether a record was removed.
	Remove(rr dns.RR) bool

	// RemoveAtApex deletes every apex record of rrtype. If rrtype is
	// dns.TypeRRSIG, only RRSIGs whose TypeCovered equals typeCovered are
	// removed; typeCovered is ignored otherwise. It returns the removed
	// records.
	RemoveAtApex(rrtype uint16, typeCovered uint16) []dns.RR

	// ApexRecords returns every record whose owner equals the origin.
	ApexRecords() []dns.RR

	// AllRecords returns every stored record, in no particular order.
	AllRecords() []dns.RR

	// EnumerateCanonical returns every stored record, each leaf bucket
	// (or the whole list, for Flat) sorted into canonical zone order
	// (spec §4.2). The tree back-end's result is grouped bucket by
	// bucket in routing order, NOT a single global canonical sort —
	// callers that need a fully sorted zone (e.g. writing a zone file)
	// must sort the returned slice themselves with wire.Compare.
	EnumerateCanonical() []dns.RR

	// Digest computes the zone digest for one algorithm: algorithm
	// identifies it (the tree back-end uses this to tell whether its
	// memoized node digests are still for the right algorithm), newHash
	// constructs a fresh hash.Hash of it, and codec identifies and
	// zeroizes the apex digest record during the walk. The flat back-end
	// hashes every record in canonical order; the tree back-end
	// recomputes only the dirty subtrees and returns a Merkle-style digest
	// of per-subtree digests (spec §4.4) — the two are not bit-identical,
	// by design.
	Digest(algorithm uint8, codec *wire.Codec, newHash func() hash.Hash, warn wire.Warner) ([]byte, error)
}

// InZone reports whether owner equals origin or is a subdomain of it.
// Both must be fully qualified (trailing dot).
func InZone(origin, owner string) bool {
	origin = dns.CanonicalName(origin)
	owner = dns.CanonicalName(owner)
	if owner == origin {
		return true
	}
	return dns.IsSubDomain(origin, owner)
}
