// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire produces the canonical wire bytes a zone digest is computed
// over, and implements the zeroization rule for the apex digest record
// itself. It does not interpret most record types: a record is an owner
// name, type, class and TTL, plus whatever *dns.RR the zone parser produced,
// and the digest only ever needs the record's wire encoding.
package wire

import (
	"bytes"
	"strings"

	"github.com/miekg/dns"
)

// Record is a single in-zone resource record. The engine treats it as an
// owner key plus an opaque wire-format blob; only the digest codec (see
// Codec) looks inside a record's RDATA, and only for digest records.
type Record struct {
	RR dns.RR
}

func (r Record) Owner() string { return r.RR.Header().Name }
func (r Record) Type() uint16  { return r.RR.Header().Rrtype }
func (r Record) Class() uint16 { return r.RR.Header().Class }
func (r Record) TTL() uint32   { return r.RR.Header().Ttl }

// CanonicalOwner is the lowercase, dot-terminated form of the owner name
// (dns.CanonicalName), the same form canonical ordering, routing and
// duplicate comparison derive their name keys from. DNS owner names are
// case-insensitive.
func (r Record) CanonicalOwner() string {
	return dns.CanonicalName(r.RR.Header().Name)
}

// Bytes returns the uncompressed wire encoding of rr. The zone-digest wire
// form is never name-compressed, so compression is always disabled here.
func Bytes(rr dns.RR) ([]byte, error) {
	buf := make([]byte, dns.Len(rr)+1)
	off, err := dns.PackRR(rr, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}
	return buf[:off], nil
}

// Equal reports whether a and b are byte-identical once canonicalized:
// equal owner (case-insensitively), type, class, and RDATA. Used to detect
// exact duplicates after canonical sort (spec Property 7).
func Equal(a, b dns.RR) bool {
	ha, hb := a.Header(), b.Header()
	if ha.Rrtype != hb.Rrtype || ha.Class != hb.Class {
		return false
	}
	if !strings.EqualFold(dns.CanonicalName(ha.Name), dns.CanonicalName(hb.Name)) {
		return false
	}

	wa, err := Bytes(a)
	if err != nil {
		return false
	}
	wb, err := Bytes(b)
	if err != nil {
		return false
	}
	return bytes.Equal(rdataOnly(wa), rdataOnly(wb))
}

// Compare orders a and b in canonical zone order: owner (RFC 4034 §6.1
// canonical name order), then RRTYPE, then RDATA bytes. It returns <0, 0,
// or >0 like bytes.Compare / strings.Compare.
func Compare(a, b dns.RR) int {
	ha, hb := a.Header(), b.Header()

	if c := compareCanonicalOwner(ha.Name, hb.Name); c != 0 {
		return c
	}
	if ha.Rrtype != hb.Rrtype {
		if ha.Rrtype < hb.Rrtype {
			return -1
		}
		return 1
	}

	wa, errA := Bytes(a)
	wb, errB := Bytes(b)
	if errA != nil || errB != nil {
		return strings.Compare(a.String(), b.String())
	}
	return bytes.Compare(rdataOnly(wa), rdataOnly(wb))
}

// compareCanonicalOwner orders a and b by RFC 4034 canonical name order:
// labels are compared starting from the root (the rightmost label) and
// working leftward, lowercased; a name that is a proper suffix-truncation
// of the other (fewer labels, otherwise identical) sorts first. This is
// NOT the same as comparing the dotted presentation strings left to right
// ("ns.example." sorts before "a.z.example." canonically, because "ns" <
// "z" at the second-from-root label, even though "a" < "n" lexically).
func compareCanonicalOwner(a, b string) int {
	la, lb := canonicalLabels(a), canonicalLabels(b)
	for i := 0; i < len(la) && i < len(lb); i++ {
		if c := strings.Compare(la[i], lb[i]); c != 0 {
			return c
		}
	}
	return len(la) - len(lb)
}

// canonicalLabels splits name into its lowercased labels, ordered from the
// root inward (most significant label first).
func canonicalLabels(name string) []string {
	labels := dns.SplitDomainName(dns.CanonicalName(name))
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

// rdataOnly strips the owner-name/type/class/ttl/rdlength header from a
// packed RR, leaving just the RDATA bytes for comparison. Every RR in this
// codebase is packed uncompressed and the header encodes the owner in wire
// form (length-prefixed labels) rather than presentation form, so the end
// of the owner is found by walking those labels up to the root label.
func rdataOnly(wire []byte) []byte {
	off := 0
	for {
		if off >= len(wire) {
			return nil
		}
		l := int(wire[off])
		off++
		if l == 0 {
			break
		}
		off += l
	}
	// type(2) + class(2) + ttl(4) + rdlength(2)
	off += 10
	if off > len(wire) {
		return nil
	}
	return wire[off:]
}
