// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"hash"
	"sort"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/wire"
)

// Flat is the unordered-list zone store: canonical order is produced on
// demand by sorting, rather than maintained incrementally. It's the
// straightforward back-end; Tree trades memory and insert complexity for
// incremental digest recomputation.
type Flat struct {
	origin  string
	records []dns.RR
}

// NewFlat creates an empty zone store for origin.
func NewFlat(origin string) *Flat {
	return &Flat{origin: dns.CanonicalName(origin)}
}

func (z *Flat) Origin() string { return z.origin }

func (z *Flat) Add(rr dns.RR) error {
	if !InZone(z.origin, rr.Header().Name) {
		return newOutOfZoneError(rr.Header().Name, rr.Header().Rrtype)
	}
	z.records = append(z.records, rr)
	return nil
}

func (z *Flat) Remove(rr dns.RR) bool {
	for i, x := range z.records {
		if wire.Equal(x, rr) {
			z.records = append(z.records[:i], z.records[i+1:]...)
			return true
		}
	}
	return false
}

func (z *Flat) RemoveAtApex(rrtype uint16, typeCovered uint16) []dns.RR {
	var removed, kept []dns.RR
	for _, rr := range z.records {
		if isApexMatch(z.origin, rr, rrtype, typeCovered) {
			removed = append(removed, rr)
		} else {
			kept = append(kept, rr)
		}
	}
	z.records = kept
	return removed
}

func (z *Flat) ApexRecords() []dns.RR {
	var out []dns.RR
	for _, rr := range z.records {
		if dns.CanonicalName(rr.Header().Name) == z.origin {
			out = append(out, rr)
		}
	}
	return out
}

func (z *Flat) AllRecords() []dns.RR {
	return append([]dns.RR(nil), z.records...)
}

// sorted returns every record in canonical zone order.
func (z *Flat) sorted() []dns.RR {
	out := z.AllRecords()
	sort.SliceStable(out, func(i, j int) bool {
		return wire.Compare(out[i], out[j]) < 0
	})
	return out
}

func (z *Flat) EnumerateCanonical() []dns.RR {
	return z.sorted()
}

func (z *Flat) Digest(algorithm uint8, codec *wire.Codec, newHash func() hash.Hash, warn wire.Warner) ([]byte, error) {
	h := newHash()
	if err := wire.HashRecords(h, codec, z.sorted(), warn); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// isApexMatch reports whether rr is an apex record matching the removal
// criteria of RemoveAtApex.
func isApexMatch(origin string, rr dns.RR, rrtype uint16, typeCovered uint16) bool {
	if dns.CanonicalName(rr.Header().Name) != origin {
		return false
	}
	if rr.Header().Rrtype != rrtype {
		return false
	}
	if rrtype == dns.TypeRRSIG {
		sig, ok := rr.(*dns.RRSIG)
		return ok && sig.TypeCovered == typeCovered
	}
	return true
}
