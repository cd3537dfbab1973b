// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zonedigest

// DefaultWidth and DefaultDepth are the tree-variant fan-out parameters the
// CLI driver falls back to when -D/-W aren't given. Depth 0 degenerates to
// the flat variant's behavior (store.NewTree's own default, repeated here
// because it's the value cmd/zonedigest's flag defaults need too).
const (
	DefaultDepth = 0
	DefaultWidth = 13
)

// MaxPlaceholders is the cap on repeated -p flags (spec §6).
const MaxPlaceholders = 10
