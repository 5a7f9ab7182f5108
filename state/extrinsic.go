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

// NoExtrinsicIndex marks a write performed outside of any extrinsic (e.g.
// block initialization), distinct from every valid extrinsic index.
const NoExtrinsicIndex uint32 = ^uint32(0)

// ExtrinsicDecoder is the one piece of byte-layout knowledge this module
// needs: how to turn the reserved extrinsic-index key's stored value back
// into a uint32. The overlay never surfaces a decode error -- a failed
// decode just falls back to NoExtrinsicIndex, per the reserved key being
// advisory metadata the runtime driver owns, not something the overlay can
// validate.
type ExtrinsicDecoder interface {
	DecodeUint32(b []byte) (uint32, bool)
}
