// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lifecycle drives the three apex-record operations a run performs
// in sequence: add placeholder digest records, calculate real digests into
// them, and verify them against what's stored. None of it knows how a
// digest is actually computed or signed; it calls into digest and signer
// for that.
package lifecycle

import (
	"encoding/hex"
	"fmt"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/apex"
	"github.com/tsavola/zonedigest/digest"
	"github.com/tsavola/zonedigest/signer"
	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/wire"
)

// ErrNoDigestRecord is returned by Calculate and Verify when the zone has
// no apex digest record to act on.
var ErrNoDigestRecord = fmt.Errorf("lifecycle: no apex digest record")

// AddPlaceholders removes every existing apex digest record and inserts one
// fresh placeholder per algorithm in algorithms, deduplicated while
// preserving first occurrence. Each placeholder's serial and TTL come from
// the zone's current SOA.
func AddPlaceholders(z store.Zone, codec *wire.Codec, reg digest.Registry, algorithms []uint8, warn wire.Warner) error {
	soa, err := apex.FindSOA(z)
	if err != nil {
		return err
	}

	z.RemoveAtApex(codec.Type(), 0)

	seen := make(map[uint8]bool)
	for _, alg := range algorithms {
		if seen[alg] {
			warn.Warn("duplicate placeholder algorithm %d requested, ignoring", alg)
			continue
		}
		seen[alg] = true

		size, err := reg.Size(alg)
		if err != nil {
			return err
		}

		rr := codec.NewPlaceholder(z.Origin(), soa.Hdr.Ttl, soa.Serial, alg, size)
		if err := z.Add(rr); err != nil {
			return err
		}
	}

	return nil
}

// Calculate recomputes the digest for every apex digest record and patches
// it in place. If key is non-nil, it also re-signs the updated digest
// record set, replacing any prior RRSIGs covering the digest type.
func Calculate(z store.Zone, codec *wire.Codec, reg digest.Registry, key *signer.Key, warn wire.Warner) error {
	records := apex.FindApexDigestRecords(z, codec)
	if len(records) == 0 {
		return ErrNoDigestRecord
	}

	var updated []dns.RR
	for _, rr := range records {
		f, err := wire.DecodeFields(rr)
		if err != nil {
			return err
		}

		sum, err := reg.Compute(z, codec, f.Algorithm, warn)
		if err != nil {
			return err
		}

		patched, err := wire.PatchDigest(rr, sum)
		if err != nil {
			return err
		}

		z.Remove(rr)
		if err := z.Add(patched); err != nil {
			return err
		}
		updated = append(updated, patched)
	}

	if key != nil {
		if existing := apex.FindApexRRSIGs(z, codec.Type()); len(existing) > 0 {
			warn.Warn("replacing %d existing RRSIG(s) over digest type %d", len(existing), codec.Type())
		}
		z.RemoveAtApex(dns.TypeRRSIG, codec.Type())

		sigs, err := key.Sign(z.Origin(), updated)
		if err != nil {
			return err
		}
		for _, sig := range sigs {
			if err := z.Add(sig); err != nil {
				return err
			}
		}
	}

	return nil
}

// VerifyFailure accumulates the non-fatal mismatches a verify run finds.
type VerifyFailure struct {
	SerialMismatches []string
	DigestMismatches []string
}

// Failed reports whether anything was accumulated.
func (v *VerifyFailure) Failed() bool {
	return v != nil && (len(v.SerialMismatches) > 0 || len(v.DigestMismatches) > 0)
}

func (v *VerifyFailure) addSerial(msg string) { v.SerialMismatches = append(v.SerialMismatches, msg) }
func (v *VerifyFailure) addDigest(msg string) { v.DigestMismatches = append(v.DigestMismatches, msg) }

// Verify checks every apex digest record's serial against the current SOA
// serial and its digest against a freshly computed one. Unsupported
// algorithms are logged and skipped, not counted as failures.
func Verify(z store.Zone, codec *wire.Codec, reg digest.Registry, warn wire.Warner) (*VerifyFailure, error) {
	records := apex.FindApexDigestRecords(z, codec)
	if len(records) == 0 {
		return nil, ErrNoDigestRecord
	}

	soa, err := apex.FindSOA(z)
	if err != nil {
		return nil, err
	}

	result := &VerifyFailure{}

	for _, rr := range records {
		f, err := wire.DecodeFields(rr)
		if err != nil {
			return nil, err
		}

		if f.Serial != soa.Serial {
			msg := fmt.Sprintf("algorithm %d: serial mismatch: record %d, SOA %d", f.Algorithm, f.Serial, soa.Serial)
			warn.Warn("%s", msg)
			result.addSerial(msg)
		}

		sum, err := reg.Compute(z, codec, f.Algorithm, warn)
		if err != nil {
			if _, ok := err.(*digest.UnsupportedAlgorithmError); ok {
				warn.Warn("algorithm %d unsupported, skipping verification", f.Algorithm)
				continue
			}
			return nil, err
		}

		if !hexEqual(sum, f.Digest) {
			msg := fmt.Sprintf("algorithm %d: digest mismatch: stored %s, computed %s",
				f.Algorithm, hex.EncodeToString(f.Digest), hex.EncodeToString(sum))
			warn.Warn("%s", msg)
			result.addDigest(msg)
		}
	}

	return result, nil
}

func hexEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
