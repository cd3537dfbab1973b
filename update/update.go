// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package update parses and applies an incremental update file: one
// directive per line, "add <rr>" or "del <rr>" in presentation format.
package update

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/miekg/dns"

	"github.com/tsavola/zonedigest/store"
	"github.com/tsavola/zonedigest/wire"
)

// Apply reads directives from r and applies them to z in order. del is the
// symmetric opposite of add: it removes the first record equal in
// owner/type/class/RDATA, warning if none matches (there is no separate
// "pending delete" bookkeeping).
//
// A line whose leading token isn't "add" or "del", or that has no RR body
// after it, is warned about and skipped. An RR body that dns.NewRR cannot
// parse, or a failure applying an add (such as an out-of-zone owner),
// aborts the whole update.
func Apply(z store.Zone, r io.Reader, warn wire.Warner) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		verb, body, ok := splitDirective(line)
		if !ok {
			warn.Warn("update line %d: not an add/del directive, skipping: %q", lineNo, line)
			continue
		}

		rr, err := dns.NewRR(body)
		if err != nil {
			return fmt.Errorf("update line %d: %w", lineNo, err)
		}
		if rr == nil {
			warn.Warn("update line %d: empty RR body, skipping", lineNo)
			continue
		}

		switch verb {
		case "add":
			if err := z.Add(rr); err != nil {
				return fmt.Errorf("update line %d: %w", lineNo, err)
			}
		case "del":
			if !z.Remove(rr) {
				warn.Warn("update line %d: no matching record to delete: %s", lineNo, rr.Header().Name)
			}
		}
	}

	return scanner.Err()
}

func splitDirective(line string) (verb, body string, ok bool) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return "", "", false
	}
	verb = strings.ToLower(line[:i])
	body = strings.TrimSpace(line[i+1:])
	if verb != "add" && verb != "del" {
		return "", "", false
	}
	if body == "" {
		return "", "", false
	}
	return verb, body, true
}
