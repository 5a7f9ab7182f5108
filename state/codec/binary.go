// Copyright 2017 The go-ethereum Authors
// (original work)
// Copyright 2024 The Strato Authors
// (adapted from erigon-lib/common/math/integer.go)
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

// Package codec provides the narrow decode collaborator the overlay consults
// to interpret the reserved extrinsic-index key. It is intentionally the
// only place in this module that knows a byte layout.
package codec

import "encoding/binary"

// BigEndianUint32 decodes b as a big-endian uint32, the same
// "(value, ok)" contract erigon-lib/common/math.ParseUint64 uses rather than
// a decode error the caller has to inspect. It is the reference decoder
// installed by default; runtimes speaking a real wire codec (RLP, SCALE, ...)
// supply their own and pass it to state.WithExtrinsicDecoder.
type BigEndianUint32 struct{}

// DecodeUint32 returns false if b is not exactly 4 bytes long.
func (BigEndianUint32) DecodeUint32(b []byte) (uint32, bool) {
	if len(b) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

// EncodeUint32 is the encoding counterpart, used by tests and by any driver
// writing the reserved key with this package's decoder installed.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
