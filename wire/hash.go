// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"hash"

	"github.com/miekg/dns"
)

// Warner receives a human-readable diagnostic for a non-fatal condition
// encountered while hashing or loading a zone (spec §7: "every non-abort
// condition emits a human-readable diagnostic"). nil is a valid Warner
// that discards everything.
type Warner func(format string, args ...interface{})

// Warn calls w if it's non-nil.
func (w Warner) Warn(format string, args ...interface{}) {
	if w != nil {
		w(format, args...)
	}
}

// HashRecords feeds the canonical wire bytes of recs into h, in the order
// given. recs must already be in the order the caller wants hashed (sorted
// for the flat backend, per-leaf sorted for the tree backend); HashRecords
// does not reorder anything.
//
// It applies the canonicalization rules from spec §4.1: the apex digest
// record (identified by codec) is hashed with its digest bytes zeroed, any
// RRSIG whose type-covered is the digest type is excluded entirely, and
// exact duplicates immediately following each other are collapsed to one
// (with a warning).
func HashRecords(h hash.Hash, codec *Codec, recs []dns.RR, warn Warner) error {
	var prev dns.RR

	for _, rr := range recs {
		if sig, ok := rr.(*dns.RRSIG); ok && sig.TypeCovered == codec.Type() {
			continue
		}

		if prev != nil && Equal(prev, rr) {
			warn.Warn("duplicate record after canonical sort, skipping: %s %s",
				rr.Header().Name, dns.TypeToString[rr.Header().Rrtype])
			continue
		}
		prev = rr

		toHash := rr
		if codec.IsDigestRecord(rr) {
			z, err := ZeroizeClone(rr)
			if err != nil {
				return err
			}
			toHash = z
		}

		b, err := Bytes(toHash)
		if err != nil {
			return err
		}
		if _, err := h.Write(b); err != nil {
			return err
		}
	}

	return nil
}
