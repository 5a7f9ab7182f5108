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

	"github.com/strato-chain/overlay/state/codec"
)

// scenario 1 (spec.md §8): write, commit, overwrite, discard transaction ->
// the committed value survives.
func TestScenarioCommittedWriteSurvivesDiscardedTransaction(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("k"), []byte("v1"))
	o.CommitProspective()

	o.StartTransaction()
	o.SetStorage([]byte("k"), []byte("v2"))
	o.DiscardTransaction()

	v, ok := o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)
}

// scenario 2: a deletion written inside a transaction that is discarded must
// not mask the previously committed value.
func TestScenarioDiscardedDeletionDoesNotMask(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("k"), []byte("v1"))
	o.CommitProspective()

	o.StartTransaction()
	o.SetStorage([]byte("k"), nil)
	o.DiscardTransaction()

	v, ok := o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)
}

// scenario 3: an empty-but-present value is distinguishable from absent.
func TestScenarioEmptyPresentValueDistinctFromAbsent(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("k"), []byte{})

	v, ok := o.Storage([]byte("k"))
	require.True(t, ok)
	require.NotNil(t, v)
	require.Len(t, v, 0)

	_, ok = o.Storage([]byte("missing"))
	require.False(t, ok)
}

// scenario 4: nested transactions each roll back independently.
func TestScenarioNestedTransactionsRollBackIndependently(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("k"), []byte("v0"))
	o.CommitProspective()

	o.StartTransaction()
	o.SetStorage([]byte("k"), []byte("v1"))
	o.StartTransaction()
	o.SetStorage([]byte("k"), []byte("v2"))
	o.DiscardTransaction() // drop inner only

	v, ok := o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	o.DiscardTransaction() // drop outer
	v, ok = o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v0"), v)
}

// scenario 5: commit_transaction folds into prospective, still revertible by
// discard_prospective.
func TestScenarioCommitTransactionThenDiscardProspective(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("k"), []byte("v0"))
	o.CommitProspective()

	o.StartTransaction()
	o.SetStorage([]byte("k"), []byte("v1"))
	o.CommitTransaction()

	v, ok := o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	o.DiscardProspective()
	v, ok = o.Storage([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v0"), v)
}

// scenario 6: into_committed only ever surfaces committed entries.
func TestScenarioIntoCommittedSkipsUncommittedWrites(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage([]byte("a"), []byte("committed"))
	o.CommitProspective()
	o.SetStorage([]byte("b"), []byte("still-pending"))

	seen := map[string]string{}
	for k, v := range o.IntoCommittedTop() {
		if v != nil {
			seen[string(k)] = string(*v)
		}
	}
	require.Equal(t, "committed", seen["a"])
	_, ok := seen["b"]
	require.False(t, ok)
}

func TestChildStorageRoundTrip(t *testing.T) {
	o := NewOverlayedChanges()
	storageKey := []byte("contractA")
	o.SetChildStorage(storageKey, []byte("slot"), []byte("value"))

	v, ok := o.ChildStorage(storageKey, []byte("slot"))
	require.True(t, ok)
	require.Equal(t, []byte("value"), v)

	o.ClearChildStorage(storageKey)
	v, ok = o.ChildStorage(storageKey, []byte("slot"))
	require.True(t, ok)
	require.Nil(t, v)
}

func TestSetChangesTrieConfigRejectsIncompatible(t *testing.T) {
	o := NewOverlayedChanges()
	require.True(t, o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 4, Levels: 1}))
	require.True(t, o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 4, Levels: 1}), "reinstalling the same config is a no-op success")
	require.False(t, o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 8, Levels: 1}))
}

func TestRemoveChangesTrieConfig(t *testing.T) {
	o := NewOverlayedChanges()
	_, ok := o.RemoveChangesTrieConfig()
	require.False(t, ok)

	o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 4, Levels: 1})
	cfg, ok := o.RemoveChangesTrieConfig()
	require.True(t, ok)
	require.Equal(t, uint32(4), cfg.Interval)

	require.True(t, o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 16, Levels: 2}), "config slot must be free after removal")
}

func TestCurrentExtrinsicIndexFallsBackWhenUnset(t *testing.T) {
	o := NewOverlayedChanges()
	require.Equal(t, NoExtrinsicIndex, o.CurrentExtrinsicIndex())
}

func TestCurrentExtrinsicIndexDecodesReservedKey(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetStorage(ExtrinsicIndexKey, codec.EncodeUint32(7))
	require.Equal(t, uint32(7), o.CurrentExtrinsicIndex())
}

// Writes made while a ChangesTrieConfig is installed are attributed to the
// extrinsic index active at the time of the write.
func TestWritesAttributedToExtrinsicIndexWhenConfigInstalled(t *testing.T) {
	o := NewOverlayedChanges()
	o.SetChangesTrieConfig(ChangesTrieConfig{Interval: 1, Levels: 1})
	o.SetStorage(ExtrinsicIndexKey, codec.EncodeUint32(3))
	o.SetStorage([]byte("k"), []byte("v"))

	v, ok := o.changes.TopHistory([]byte("k"))
	require.True(t, ok)
	require.NotNil(t, v.Extrinsics)
	require.True(t, v.Extrinsics.Contains(3))
}

func TestIsEmpty(t *testing.T) {
	o := NewOverlayedChanges()
	require.True(t, o.IsEmpty())
	o.SetStorage([]byte("k"), []byte("v"))
	require.False(t, o.IsEmpty())
}
