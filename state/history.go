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

// LayerMarker is the state of one entry in a LayerHistory -- a rollback
// unit shared by every key the overlay has touched.
type LayerMarker uint8

const (
	// Pending is a layer still under change, droppable by a prospective or
	// transaction discard.
	Pending LayerMarker = iota
	// TxPending is the same as Pending, but additionally marks the start
	// of a transaction -- a frame DiscardTransaction/CommitTransaction
	// will stop unwinding at.
	TxPending
	// Prospective has been committed out of a transaction but is still
	// revertible by DiscardProspective.
	Prospective
	// Committed can no longer be dropped within this overlay's lifetime.
	Committed
	// Dropped is a transaction or prospective layer that was rolled back.
	// Entries pointing at a Dropped layer must not be returned as visible,
	// and are eligible for physical removal on next mutable access.
	Dropped
)

// LayerHistory is the global, indexed state-history vector `H` every value
// history is resolved against. It always ends in Pending or TxPending: the
// current layer is always open for writes.
type LayerHistory []LayerMarker

// NewLayerHistory returns the initial one-frame history of a fresh overlay.
func NewLayerHistory() LayerHistory {
	return LayerHistory{Pending}
}

// StartTransaction opens a new nested, independently revertible layer.
func (h *LayerHistory) StartTransaction() {
	*h = append(*h, TxPending)
}

// CommitTransaction folds the innermost transaction's writes into the
// enclosing prospective layer -- they remain droppable by DiscardProspective
// but are no longer tied to this transaction specifically.
func (h *LayerHistory) CommitTransaction() {
	s := *h
	for i := len(s); i > 0; {
		i--
		switch s[i] {
		case Dropped:
			// skip
		case Pending:
			s[i] = Prospective
		case TxPending:
			s[i] = Prospective
			*h = append(s, Pending)
			return
		case Prospective, Committed:
			*h = append(s, Pending)
			return
		}
	}
	*h = append(s, Pending)
}

// DiscardTransaction rewinds exactly one TxPending frame and everything
// layered above it.
func (h *LayerHistory) DiscardTransaction() {
	s := *h
	for i := len(s); i > 0; {
		i--
		switch s[i] {
		case Dropped:
			// skip
		case Pending, Prospective:
			s[i] = Dropped
		case TxPending:
			s[i] = Dropped
			*h = append(s, Pending)
			return
		case Committed:
			*h = append(s, Pending)
			return
		}
	}
	*h = append(s, Pending)
}

// CommitProspective hardens every pending/transactional/prospective frame
// into Committed. It does not compact the vector -- value histories
// rediscover the new markers lazily on next access (see ValueHistory.Get).
func (h *LayerHistory) CommitProspective() {
	s := *h
	for i := len(s); i > 0; {
		i--
		switch s[i] {
		case Dropped:
			// skip
		case Pending, TxPending, Prospective:
			s[i] = Committed
		case Committed:
			*h = append(s, Pending)
			return
		}
	}
	*h = append(s, Pending)
}

// DiscardProspective drops every non-committed frame. Committed frames are
// immutable and stop the scan.
func (h *LayerHistory) DiscardProspective() {
	s := *h
	for i := len(s); i > 0; {
		i--
		switch s[i] {
		case Dropped:
			// skip
		case Pending, TxPending, Prospective:
			s[i] = Dropped
		case Committed:
			*h = append(s, Pending)
			return
		}
	}
	*h = append(s, Pending)
}
