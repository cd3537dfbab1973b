// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/miekg/dns"
)

// NewPlaceholder builds an apex digest record with the digest field zeroed
// to digestLen bytes, per spec §4.5 step 3.
func (c *Codec) NewPlaceholder(owner string, ttl uint32, serial uint32, algorithm uint8, digestLen int) dns.RR {
	return c.build(owner, ttl, Fields{
		Serial:    serial,
		Algorithm: algorithm,
		Reserved:  0,
		Digest:    make([]byte, digestLen),
	})
}

func (c *Codec) build(owner string, ttl uint32, f Fields) dns.RR {
	hdr := dns.RR_Header{
		Name:   dns.Fqdn(owner),
		Rrtype: c.typeValue,
		Class:  dns.ClassINET,
		Ttl:    ttl,
	}

	if c.rrtype {
		return &dns.PrivateRR{Hdr: hdr, Data: &digestRdata{f}}
	}

	buf := make([]byte, f.Len())
	binary.BigEndian.PutUint32(buf[0:4], f.Serial)
	buf[4] = f.Algorithm
	buf[5] = f.Reserved
	copy(buf[6:], f.Digest)

	return &dns.RFC3597{Hdr: hdr, Rdata: hex.EncodeToString(buf)}
}

// DecodeFields extracts the four RDATA fields from a digest record,
// regardless of whether it was parsed as a typed record or as opaque
// RFC3597 RDATA.
func DecodeFields(rr dns.RR) (f Fields, err error) {
	switch v := rr.(type) {
	case *dns.PrivateRR:
		d, ok := v.Data.(*digestRdata)
		if !ok {
			return f, fmt.Errorf("wire: unexpected private rdata type %T", v.Data)
		}
		return d.Fields, nil

	case *dns.RFC3597:
		buf, hexErr := hex.DecodeString(v.Rdata)
		if hexErr != nil {
			return f, fmt.Errorf("wire: malformed opaque digest rdata: %w", hexErr)
		}
		return decodeFields(buf)

	default:
		// Some dns package versions unpack an unregistered type-63/65317 RR
		// into their own generic "unknown" representation; fall back to
		// parsing its wire RDATA directly.
		raw, packErr := Bytes(rr)
		if packErr != nil {
			return f, packErr
		}
		return decodeFields(rdataOnly(raw))
	}
}

func decodeFields(buf []byte) (f Fields, err error) {
	if len(buf) < 6 {
		return f, fmt.Errorf("wire: digest rdata too short: %d bytes", len(buf))
	}
	f.Serial = beUint32(buf)
	f.Algorithm = buf[4]
	f.Reserved = buf[5]
	f.Digest = append([]byte(nil), buf[6:]...)
	return f, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// PatchDigest returns a copy of rr with its digest bytes replaced by digest,
// preserving serial, algorithm and the reserved field. digest must be the
// same length as the record's current digest field (callers build
// placeholders with the final algorithm's output length up front).
func PatchDigest(rr dns.RR, digest []byte) (dns.RR, error) {
	f, err := DecodeFields(rr)
	if err != nil {
		return nil, err
	}
	if len(digest) != len(f.Digest) {
		return nil, fmt.Errorf("wire: digest length mismatch: have %d want %d", len(digest), len(f.Digest))
	}

	switch v := rr.(type) {
	case *dns.PrivateRR:
		clone := dns.Copy(v).(*dns.PrivateRR)
		d := clone.Data.(*digestRdata)
		d.Digest = append([]byte(nil), digest...)
		return clone, nil

	case *dns.RFC3597:
		clone := dns.Copy(v).(*dns.RFC3597)
		buf := make([]byte, 6+len(digest))
		binary.BigEndian.PutUint32(buf[0:4], f.Serial)
		buf[4] = f.Algorithm
		buf[5] = f.Reserved
		copy(buf[6:], digest)
		clone.Rdata = hex.EncodeToString(buf)
		return clone, nil

	default:
		return nil, fmt.Errorf("wire: cannot patch digest of %T", rr)
	}
}

// ZeroizeClone returns a copy of a digest record with its digest bytes set
// to all zeros (same length), for feeding into the hash in place of the
// real apex digest record (spec §4.1, "Zero-on-self", Property 3).
func ZeroizeClone(rr dns.RR) (dns.RR, error) {
	f, err := DecodeFields(rr)
	if err != nil {
		return nil, err
	}
	return PatchDigest(rr, make([]byte, len(f.Digest)))
}
