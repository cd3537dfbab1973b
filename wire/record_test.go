// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/miekg/dns"
)

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	if err != nil {
		t.Fatalf("dns.NewRR(%q): %v", s, err)
	}
	return rr
}

func TestEqual(t *testing.T) {
	a := mustRR(t, "www.example.org. 3600 IN A 192.0.2.1")
	b := mustRR(t, "WWW.EXAMPLE.ORG. 3600 IN A 192.0.2.1")
	c := mustRR(t, "www.example.org. 3600 IN A 192.0.2.2")

	if !Equal(a, b) {
		t.Errorf("expected %s to equal %s (case-insensitive owner)", a, b)
	}
	if Equal(a, c) {
		t.Errorf("expected %s to differ from %s", a, c)
	}
}

func TestCompareOwnerOrder(t *testing.T) {
	apex := mustRR(t, "example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 1 3600 600 86400 3600")
	sub := mustRR(t, "www.example.org. 3600 IN A 192.0.2.1")

	if Compare(apex, sub) >= 0 {
		t.Errorf("expected apex to sort before subdomain")
	}
	if Compare(sub, apex) <= 0 {
		t.Errorf("expected subdomain to sort after apex")
	}
	if Compare(apex, apex) != 0 {
		t.Errorf("expected a record to compare equal to itself")
	}
}

func TestCompareOwnerIsCanonicalNotLexical(t *testing.T) {
	ns := mustRR(t, "ns.example.org. 3600 IN A 192.0.2.1")
	az := mustRR(t, "a.z.example.org. 3600 IN A 192.0.2.2")

	// Lexical string order would put "a.z.example.org." first ('a' < 'n').
	// Canonical order compares the third-from-root label ("ns" vs "z")
	// and puts ns.example.org. first instead.
	if Compare(ns, az) >= 0 {
		t.Errorf("expected ns.example.org. to sort before a.z.example.org. in canonical order")
	}
}

func TestCompareTypeOrder(t *testing.T) {
	a := mustRR(t, "example.org. 3600 IN A 192.0.2.1")
	aaaa := mustRR(t, "example.org. 3600 IN AAAA ::1")

	if dns.TypeA >= dns.TypeAAAA {
		t.Fatal("test assumption about type numbers broke")
	}
	if Compare(a, aaaa) >= 0 {
		t.Errorf("expected A to sort before AAAA by type number")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	rr := mustRR(t, "www.example.org. 3600 IN A 192.0.2.1")
	b, err := Bytes(rr)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Error("expected non-empty wire encoding")
	}
}
