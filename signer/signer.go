// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package signer loads a zone-signing key and produces RRSIGs over the
// apex digest record set, delegating the actual signature math to
// miekg/dns.
package signer

import (
	"crypto"
	"fmt"
	"os"
	"time"

	"github.com/miekg/dns"
)

// Key is a loaded zone-signing key, its public half fixed to a particular
// zone origin.
type Key struct {
	pub  *dns.DNSKEY
	priv crypto.Signer
}

// validity is how long a produced signature is valid for. There's no flag
// for this; a re-sign is expected to happen well within it on every
// deployment that schedules calculate runs at all.
const validity = 30 * 24 * time.Hour

// Load reads file+".key" and file+".private" (the convention
// dnssec-keygen and dns.DNSKEY.ReadPrivateKey both use) and fixes the
// public key's owner to origin.
func Load(file, origin string) (*Key, error) {
	kf, err := os.Open(file + ".key")
	if err != nil {
		return nil, err
	}
	defer kf.Close()

	rr, err := dns.ReadRR(kf, file+".key")
	if err != nil {
		return nil, fmt.Errorf("signer: parsing %s.key: %w", file, err)
	}

	pub, ok := rr.(*dns.DNSKEY)
	if !ok {
		return nil, fmt.Errorf("signer: %s.key is a %T, not a DNSKEY", file, rr)
	}
	pub.Hdr.Name = dns.Fqdn(origin)

	pf, err := os.Open(file + ".private")
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	rawPriv, err := pub.ReadPrivateKey(pf, file+".private")
	if err != nil {
		return nil, fmt.Errorf("signer: parsing %s.private: %w", file, err)
	}

	priv, ok := rawPriv.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("signer: %s.private does not hold a signing key", file)
	}

	return &Key{pub: pub, priv: priv}, nil
}

// Sign produces one RRSIG covering rrset, which must be a single RR type
// sharing one owner (the apex digest record type, in every call site this
// package has).
func (k *Key) Sign(origin string, rrset []dns.RR) ([]dns.RR, error) {
	if len(rrset) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()

	sig := &dns.RRSIG{
		Hdr: dns.RR_Header{
			Name:   dns.Fqdn(origin),
			Rrtype: dns.TypeRRSIG,
			Class:  dns.ClassINET,
			Ttl:    rrset[0].Header().Ttl,
		},
		TypeCovered: rrset[0].Header().Rrtype,
		Algorithm:   k.pub.Algorithm,
		Labels:      uint8(dns.CountLabel(dns.Fqdn(origin))),
		OrigTtl:     rrset[0].Header().Ttl,
		Expiration:  uint32(now.Add(validity).Unix()),
		Inception:   uint32(now.Unix()),
		KeyTag:      k.pub.KeyTag(),
		SignerName:  dns.Fqdn(origin),
	}

	if err := sig.Sign(k.priv, rrset); err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}

	return []dns.RR{sig}, nil
}
