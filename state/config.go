// Copyright 2024 The Strato Authors
// This file is part of Strato.
//
// Strato is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Strato is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Strato. If not, see <http://www.gnu.org/licenses/>.

package state

// ChangesTrieConfig is an opaque, comparable value describing how the
// changes trie downstream of this overlay is built. The overlay never reads
// its fields -- it only stores it, compares it for equality on
// reconfiguration, and uses its presence (installed or not) to decide
// whether writes need extrinsic attribution (see OverlayedValue).
type ChangesTrieConfig struct {
	// Interval is the number of blocks between changes trie digests.
	Interval uint32
	// Levels is the digest level depth built on top of Interval.
	Levels uint32
}
