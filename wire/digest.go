// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/miekg/dns"
)

// Well-known RRTYPE values for the apex digest record. Tentative is what a
// deployment should use once its DNS library understands the type; Fallback
// is the opaque private-use type number used when it doesn't.
const (
	TypeTentative uint16 = 63
	TypeFallback  uint16 = 65317
)

// Algorithm identifiers for the digest field.
const (
	AlgorithmSHA384 uint8 = 1
)

// rrTypeName is registered with the dns package so presentation-format
// output (zone writer, diagnostics) prints something readable instead of
// "TYPE63".
const rrTypeName = "ZONEDIGEST"

// Codec isolates the single decision of how the apex digest record's RDATA
// is encoded on the wire: as a typed record (if the surrounding dns package
// has been told about the type via RegisterType) or as opaque RFC3597
// rdata. Every other component goes through a Codec rather than ever
// constructing a digest RR by hand, so that decision is made exactly once,
// at startup (spec design note, §9).
type Codec struct {
	rrtype typedEnabled
	// typeValue is the RRTYPE number placed in records this codec produces.
	typeValue uint16
}

type typedEnabled bool

// NewCodec returns a Codec that encodes the apex digest record using
// rrtype. If typed is true, the record is encoded using the dns package's
// typed RR support (RegisterType must have been called for rrtype first);
// otherwise every digest record is encoded as opaque RFC3597 RDATA, which
// any DNS library version can parse and re-emit even without knowledge of
// the digest type.
func NewCodec(rrtype uint16, typed bool) *Codec {
	return &Codec{rrtype: typedEnabled(typed), typeValue: rrtype}
}

// Type returns the RRTYPE this codec produces and recognizes.
func (c *Codec) Type() uint16 { return c.typeValue }

// IsDigestRecord reports whether rr is an apex digest record as produced by
// this codec.
func (c *Codec) IsDigestRecord(rr dns.RR) bool {
	return rr.Header().Rrtype == c.typeValue
}

// RegisterType tells the dns package about the digest RR type, so that zone
// parsing and writing use typed RDATA instead of falling back to RFC3597.
// Call this once at startup before constructing a typed Codec. It is a
// package-level registration (the dns package has no per-parser type
// table), matching the "chosen once at startup" framing of the design note.
func RegisterType(rrtype uint16) {
	dns.PrivateHandle(rrTypeName, rrtype, func() dns.PrivateRdata { return new(digestRdata) })
}

// UnregisterType undoes RegisterType. Exposed for tests that need a clean
// dns package type table between cases.
func UnregisterType(rrtype uint16) {
	dns.PrivateHandleRemove(rrtype)
}

// Fields are the four RDATA fields of an apex digest record, spec
// §3: a 32-bit serial, an 8-bit algorithm, an 8-bit reserved parameter
// (always written as zero), and the digest bytes.
type Fields struct {
	Serial    uint32
	Algorithm uint8
	Reserved  uint8
	Digest    []byte
}

// digestRdata implements dns.PrivateRdata so the typed encoding path can
// register the digest type with the dns package.
type digestRdata struct {
	Fields
}

func (d *digestRdata) String() string {
	return fmt.Sprintf("%d %d %d %x", d.Serial, d.Algorithm, d.Reserved, d.Digest)
}

func (d *digestRdata) Pack(buf []byte) (int, error) {
	if len(buf) < d.Len() {
		return 0, dns.ErrBuf
	}
	binary.BigEndian.PutUint32(buf[0:4], d.Serial)
	buf[4] = d.Algorithm
	buf[5] = d.Reserved
	n := copy(buf[6:], d.Digest)
	return 6 + n, nil
}

func (d *digestRdata) Unpack(buf []byte) (int, error) {
	if len(buf) < 6 {
		return 0, dns.ErrBuf
	}
	d.Serial = binary.BigEndian.Uint32(buf[0:4])
	d.Algorithm = buf[4]
	d.Reserved = buf[5]
	d.Digest = append([]byte(nil), buf[6:]...)
	return len(buf), nil
}

func (d *digestRdata) Copy(dest dns.PrivateRdata) error {
	o, ok := dest.(*digestRdata)
	if !ok {
		return fmt.Errorf("wire: Copy target is %T, not *digestRdata", dest)
	}
	o.Serial = d.Serial
	o.Algorithm = d.Algorithm
	o.Reserved = d.Reserved
	o.Digest = append([]byte(nil), d.Digest...)
	return nil
}

func (d *digestRdata) Len() int {
	return d.Fields.Len()
}

// Len returns the RDATA length in bytes: 4 (serial) + 1 (algorithm) +
// 1 (reserved) + the digest.
func (f Fields) Len() int {
	return 4 + 1 + 1 + len(f.Digest)
}
