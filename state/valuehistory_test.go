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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueHistoryInlineThenSpill(t *testing.T) {
	var h ValueHistory[int]
	h.Push(1, 0)
	h.Push(2, 1)
	require.Equal(t, 2, h.Len())
	h.Push(3, 2)
	require.Equal(t, 3, h.Len())

	v, ok := h.Get(LayerHistory{Committed, Committed, Committed})
	require.True(t, ok)
	require.Equal(t, 3, *v)
}

func TestValueHistoryGetSkipsDropped(t *testing.T) {
	var h ValueHistory[int]
	h.Push(1, 0)
	h.Push(2, 1)
	history := LayerHistory{Committed, Dropped}

	v, ok := h.Get(history)
	require.True(t, ok)
	require.Equal(t, 1, *v)
	require.Equal(t, 2, h.Len(), "Get must not mutate")
}

func TestValueHistoryGetMutCompactsDropped(t *testing.T) {
	var h ValueHistory[int]
	h.Push(1, 0)
	h.Push(2, 1)
	history := LayerHistory{Committed, Dropped}

	v, idx, ok := h.GetMut(history)
	require.True(t, ok)
	require.Equal(t, 1, *v)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, h.Len(), "GetMut must pop the Dropped tail")
}

func TestValueHistoryIntoCommittedSkipsNonCommitted(t *testing.T) {
	var h ValueHistory[int]
	h.Push(1, 0) // Committed
	h.Push(2, 1) // Prospective, ignored by into_committed
	history := LayerHistory{Committed, Prospective}

	v, ok := h.IntoCommitted(history)
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestValueHistoryIntoCommittedNoneFound(t *testing.T) {
	var h ValueHistory[int]
	h.Push(1, 0)
	history := LayerHistory{Prospective}

	_, ok := h.IntoCommitted(history)
	require.False(t, ok)
}

func TestValueHistorySetCoalescesAtCurrentLayer(t *testing.T) {
	var h ValueHistory[int]
	history := LayerHistory{Pending}
	h.Set(history, 1)
	h.Set(history, 2)

	require.Equal(t, 1, h.Len(), "writes at the same layer must coalesce, not append")
	v, ok := h.Get(history)
	require.True(t, ok)
	require.Equal(t, 2, *v)
}

func TestValueHistorySetPushesNewLayer(t *testing.T) {
	var h ValueHistory[int]
	history := LayerHistory{Committed, Pending}
	h.Set(history[:1], 1)
	h.Set(history, 2)

	require.Equal(t, 2, h.Len())
}
