// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apex implements the small set of operations that look only at a
// zone's apex: finding the SOA, finding digest records, and finding the
// RRSIGs that cover a given type.
package apex

import (
	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/wire"
)

// FindSOA returns the first SOA record among the zone's apex records, or a
// store.NoSOAError if there is none (invariant I1). It does not check for a
// second SOA.
func FindSOA(z store.Zone) (*dns.SOA, error) {
	for _, rr := range z.ApexRecords() {
		if soa, ok := rr.(*dns.SOA); ok {
			return soa, nil
		}
	}
	return nil, store.NewNoSOAError(z.Origin())
}

// FindApexDigestRecords enumerates the apex and returns every record whose
// type is codec's digest type, in the order ApexRecords returned them.
func FindApexDigestRecords(z store.Zone, codec *wire.Codec) []dns.RR {
	var out []dns.RR
	for _, rr := range z.ApexRecords() {
		if codec.IsDigestRecord(rr) {
			out = append(out, rr)
		}
	}
	return out
}

// FindApexRRSIGs returns the apex RRSIGs covering typeCovered.
func FindApexRRSIGs(z store.Zone, typeCovered uint16) []*dns.RRSIG {
	var out []*dns.RRSIG
	for _, rr := range z.ApexRecords() {
		if sig, ok := rr.(*dns.RRSIG); ok && sig.TypeCovered == typeCovered {
			out = append(out, sig)
		}
	}
	return out
}
