// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/digest"
	"github.com/tsavola/zonedigest/signer"
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

func newTestZone(t *testing.T) store.Zone {
	z := store.NewFlat("example.org.")
	for _, s := range []string{
		"example.org. 3600 IN SOA ns.example.org. hostmaster.example.org. 17 3600 600 86400 3600",
		"example.org. 3600 IN NS ns.example.org.",
		"www.example.org. 3600 IN A 192.0.2.1",
	} {
		if err := z.Add(mustRR(t, s)); err != nil {
			t.Fatal(err)
		}
	}
	return z
}

func TestAddPlaceholdersThenCalculateThenVerify(t *testing.T) {
	z := newTestZone(t)
	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()

	if err := AddPlaceholders(z, codec, reg, []uint8{wire.AlgorithmSHA384}, nil); err != nil {
		t.Fatal(err)
	}
	if err := Calculate(z, codec, reg, nil, nil); err != nil {
		t.Fatal(err)
	}

	result, err := Verify(z, codec, reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed() {
		t.Errorf("expected verify to succeed right after calculate: %+v", result)
	}
}

func TestVerifyDetectsTamperedDigest(t *testing.T) {
	z := newTestZone(t)
	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()

	if err := AddPlaceholders(z, codec, reg, []uint8{wire.AlgorithmSHA384}, nil); err != nil {
		t.Fatal(err)
	}
	if err := Calculate(z, codec, reg, nil, nil); err != nil {
		t.Fatal(err)
	}

	// Tamper with the zone after the digest was computed.
	if err := z.Add(mustRR(t, "mail.example.org. 3600 IN A 192.0.2.99")); err != nil {
		t.Fatal(err)
	}

	result, err := Verify(z, codec, reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Failed() {
		t.Error("expected verify to fail after an undeclared zone change")
	}
	if len(result.DigestMismatches) != 1 {
		t.Errorf("expected exactly one digest mismatch, got %d", len(result.DigestMismatches))
	}
}

func TestVerifyWithoutDigestRecordFails(t *testing.T) {
	z := newTestZone(t)
	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()

	_, err := Verify(z, codec, reg, nil)
	if err != ErrNoDigestRecord {
		t.Errorf("expected ErrNoDigestRecord, got %v", err)
	}
}

// writeTestKey generates an RSA zone-signing key pair for a signer.Key,
// mirroring signer_test.go's helper.
func writeTestKey(t *testing.T, dir string) string {
	t.Helper()

	pub := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.org.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     256,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}
	priv, err := pub.Generate(1024)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	base := filepath.Join(dir, "example.org")
	if err := os.WriteFile(base+".key", []byte(pub.String()+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base+".private", []byte(pub.PrivateKeyString(priv)), 0o600); err != nil {
		t.Fatal(err)
	}
	return base
}

func TestCalculateReplacesExistingRRSIGAndWarns(t *testing.T) {
	z := newTestZone(t)
	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()

	key, err := signer.Load(writeTestKey(t, t.TempDir()), "example.org.")
	if err != nil {
		t.Fatal(err)
	}

	if err := AddPlaceholders(z, codec, reg, []uint8{wire.AlgorithmSHA384}, nil); err != nil {
		t.Fatal(err)
	}
	if err := Calculate(z, codec, reg, key, nil); err != nil {
		t.Fatal(err)
	}

	var warnings []string
	warn := wire.Warner(func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	})

	// Re-calculate: the digest record now already carries an RRSIG from
	// the first pass, so this run must replace it and warn about doing so.
	if err := Calculate(z, codec, reg, key, warn); err != nil {
		t.Fatal(err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about replacing an existing RRSIG")
	}

	sigs := 0
	for _, rr := range z.ApexRecords() {
		if sig, ok := rr.(*dns.RRSIG); ok && sig.TypeCovered == codec.Type() {
			sigs++
		}
	}
	if sigs != 1 {
		t.Errorf("expected exactly one RRSIG over the digest type after re-calculate, got %d", sigs)
	}
}

func TestAddPlaceholdersDeduplicates(t *testing.T) {
	z := newTestZone(t)
	codec := wire.NewCodec(wire.TypeFallback, false)
	reg := digest.DefaultRegistry()

	var warnings int
	warn := wire.Warner(func(format string, args ...interface{}) { warnings++ })

	if err := AddPlaceholders(z, codec, reg, []uint8{wire.AlgorithmSHA384, wire.AlgorithmSHA384}, warn); err != nil {
		t.Fatal(err)
	}

	if n := len(z.ApexRecords()); n != 3 {
		// SOA + NS + one placeholder; guard against a dedup bug inserting two.
		t.Errorf("expected exactly one placeholder to survive dedup, apex has %d records", n)
	}
	if warnings == 0 {
		t.Error("expected a warning about the duplicate placeholder request")
	}
}
