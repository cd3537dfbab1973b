// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package digest computes a zone's digest for a given algorithm, dispatching
// to whichever hash construction the back-end (store.Flat or store.Tree)
// implements.
package digest

import (
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/wire"
)

// UnsupportedAlgorithmError is returned when an algorithm has no entry in
// the registry in use.
type UnsupportedAlgorithmError struct {
	Algorithm uint8
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("digest: unsupported algorithm %d", e.Algorithm)
}

// Registry maps a digest algorithm number to a constructor for its hash.
// It exists so a new algorithm is one registry entry, not a new code path
// through store's tree and flat back-ends.
type Registry map[uint8]func() hash.Hash

// DefaultRegistry returns the registry this module ships with: algorithm 1
// (SHA-384), matching wire.AlgorithmSHA384.
func DefaultRegistry() Registry {
	return Registry{
		wire.AlgorithmSHA384: sha512.New384,
	}
}

// Size returns the output length in bytes of algorithm's hash, or an
// *UnsupportedAlgorithmError if reg has no entry for it.
func (reg Registry) Size(algorithm uint8) (int, error) {
	newHash, ok := reg[algorithm]
	if !ok {
		return 0, &UnsupportedAlgorithmError{algorithm}
	}
	return newHash().Size(), nil
}

// Compute returns z's digest for algorithm, using codec to identify and
// zeroize the apex digest record during hashing and warn to report
// non-fatal conditions encountered along the way (duplicate records,
// typically).
func (reg Registry) Compute(z store.Zone, codec *wire.Codec, algorithm uint8, warn wire.Warner) ([]byte, error) {
	newHash, ok := reg[algorithm]
	if !ok {
		return nil, &UnsupportedAlgorithmError{algorithm}
	}
	return z.Digest(algorithm, codec, newHash, warn)
}
