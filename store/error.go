// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"net"
)

const (
	// Try to be informative without being misleading in an unexpected context.
	resolver = "zonedigest/store"
)

// existenceError reports that something the caller expected to find in the
// zone isn't there. It implements the informal net.DNSError-shaped
// interface (Temporary/Timeout/NotExist) so callers can branch on error
// kind without string matching.
type existenceError struct {
	net.DNSError
}

func (*existenceError) NotExist() bool {
	return true
}

// NoSOAError is returned when a zone has no SOA record at its origin
// (invariant I1).
type NoSOAError struct {
	existenceError
}

// NewNoSOAError reports that origin's zone has no SOA record at its apex.
func NewNoSOAError(origin string) error {
	return &NoSOAError{existenceError{
		DNSError: net.DNSError{
			Err:    "zone has no SOA record",
			Name:   origin,
			Server: resolver,
		},
	}}
}

// OutOfZoneError is returned by Add when a record's owner is neither the
// origin nor a subdomain of it (invariant I2). It carries the offending
// owner and record type for the caller's diagnostic.
type OutOfZoneError struct {
	net.DNSError
	Type uint16
}

func (*OutOfZoneError) NotExist() bool {
	return true
}

func newOutOfZoneError(owner string, rrtype uint16) error {
	return &OutOfZoneError{
		DNSError: net.DNSError{
			Err:    "record owner is outside the zone",
			Name:   owner,
			Server: resolver,
		},
		Type: rrtype,
	}
}
