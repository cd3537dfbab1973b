// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apex

import (
	"testing"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/wire"
)

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	if err != nil {
		t.Fatalf("dns.NewRR(%q): %v", s, err)
	}
	return rr
}

func TestFindSOA(t *testing.T) {
	z := store.NewFlat("example.org.")
	z.Add(mustRR(t, "www.example.org. 3600 IN A 192.0.2.1"))

	if _, err := FindSOA(z); err == nil {
		t.Fatal("expected an error when there is no SOA")
	}

	z.Add(mustRR(t, "example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 1 3600 600 86400 3600"))

	soa, err := FindSOA(z)
	if err != nil {
		t.Fatal(err)
	}
	if soa.Serial != 1 {
		t.Errorf("expected serial 1, got %d", soa.Serial)
	}
}

func TestFindApexDigestRecords(t *testing.T) {
	z := store.NewFlat("example.org.")
	codec := wire.NewCodec(wire.TypeFallback, false)

	z.Add(mustRR(t, "example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 1 3600 600 86400 3600"))
	z.Add(codec.NewPlaceholder("example.org.", 3600, 1, wire.AlgorithmSHA384, 48))
	z.Add(mustRR(t, "www.example.org. 3600 IN A 192.0.2.1"))

	recs := FindApexDigestRecords(z, codec)
	if len(recs) != 1 {
		t.Fatalf("expected 1 apex digest record, got %d", len(recs))
	}
}

func TestFindApexRRSIGs(t *testing.T) {
	z := store.NewFlat("example.org.")
	codec := wire.NewCodec(wire.TypeFallback, false)

	z.Add(mustRR(t, "example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 1 3600 600 86400 3600"))
	z.Add(&dns.RRSIG{
		Hdr:         dns.RR_Header{Name: "example.org.", Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: codec.Type(),
	})
	z.Add(&dns.RRSIG{
		Hdr:         dns.RR_Header{Name: "example.org.", Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: dns.TypeNS,
	})

	sigs := FindApexRRSIGs(z, codec.Type())
	if len(sigs) != 1 {
		t.Fatalf("expected 1 RRSIG covering the digest type, got %d", len(sigs))
	}
	if sigs[0].TypeCovered != codec.Type() {
		t.Errorf("expected TypeCovered %d, got %d", codec.Type(), sigs[0].TypeCovered)
	}
}
