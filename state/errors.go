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

import "errors"

// ErrIncompatibleChangesTrieConfig documents what SetChangesTrieConfig's
// boolean false return means. SetChangesTrieConfig never returns this as an
// error itself -- its contract stays a plain bool -- but a caller that wants
// to fold the rejection into its own error handling has something stable to
// errors.Is against.
var ErrIncompatibleChangesTrieConfig = errors.New("state: changes trie configuration already set to a different value")

// ErrProspectiveFramesRemain documents the condition IntoCommitted silently
// tolerates: prospective or transactional layers that were never committed
// or discarded before consumption. It is never returned by IntoCommitted --
// the caller's contract is to have called CommitProspective first -- but it
// is logged through it (see WithLogger) so the violation is visible.
var ErrProspectiveFramesRemain = errors.New("state: into_committed called with uncommitted prospective layers")
