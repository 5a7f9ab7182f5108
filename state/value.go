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

import "github.com/RoaringBitmap/roaring/v2"

// OverlayedValue is the storage value kept inside a ValueHistory. Value is
// nil for a deletion tombstone and non-nil (possibly pointing at a
// zero-length slice) for a present value -- a pointer rather than a plain
// []byte because a nil slice and an empty-but-present slice must stay
// distinguishable (scenario 3 in overlay_test.go checks an empty value).
//
// Extrinsics is nil for entries written while no ChangesTrieConfig is
// installed. Once a config is installed, every
// subsequent write to a key populates Extrinsics with at least the
// extrinsic index responsible for the write.
type OverlayedValue struct {
	Value      *[]byte
	Extrinsics *roaring.Bitmap
}

// PresentValue builds an OverlayedValue.Value for a present (non-deleted)
// value, distinct from nil (deleted).
func PresentValue(b []byte) *[]byte {
	return &b
}

// setWithExtrinsic is §4.2's write path. It is a free function rather than
// a ValueHistory[OverlayedValue] method because Go generics do not allow
// methods on a single instantiation of a generic type.
func setWithExtrinsic(h *ValueHistory[OverlayedValue], history LayerHistory, val *[]byte, extrinsicIndex *uint32) {
	if extrinsicIndex == nil {
		h.Set(history, OverlayedValue{Value: val})
		return
	}

	state := len(history) - 1
	idx := *extrinsicIndex
	if ptr, curIdx, ok := h.GetMut(history); ok {
		if curIdx == state {
			ptr.Value = val
			if ptr.Extrinsics == nil {
				ptr.Extrinsics = roaring.New()
			}
			ptr.Extrinsics.Add(idx)
			return
		}
		extrinsics := roaring.New()
		if ptr.Extrinsics != nil {
			extrinsics = ptr.Extrinsics.Clone()
		}
		extrinsics.Add(idx)
		h.Push(OverlayedValue{Value: val, Extrinsics: extrinsics}, state)
		return
	}

	extrinsics := roaring.New()
	extrinsics.Add(idx)
	h.Push(OverlayedValue{Value: val, Extrinsics: extrinsics}, state)
}
