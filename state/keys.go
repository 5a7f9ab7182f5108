// Copyright 2021 The Strato Authors
// (adapted from the erigon-lib kv table catalogue)
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

// Reserved keys understood by this overlay. The overlay treats them as
// ordinary keys for storage/rollback purposes -- they get no special
// casing in ChangeSet or ValueHistory -- but callers and CurrentExtrinsicIndex
// (see overlay.go) agree on their meaning.
var (
	// ExtrinsicIndexKey -
	// key   - well-known reserved key, written by the runtime driver before
	//         running each extrinsic
	// value - the active extrinsic's index, encoded as a big-endian uint32
	//         (see ExtrinsicDecoder)
	ExtrinsicIndexKey = []byte(":extrinsic_index")
)

// childKey returns the string form used to index ChangeSet.children. Child
// storage keys are namespaces, not data -- borrowing them as map keys is
// safe since the overlay never mutates a key slice it has already stored.
func childKey(storageKey []byte) string {
	return string(storageKey)
}
