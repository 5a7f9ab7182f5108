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
	"iter"

	"go.uber.org/zap"

	"github.com/strato-chain/overlay/state/codec"
)

// OverlayedChanges is the facade a runtime driver holds for the lifetime of
// one block: a ChangeSet plus the changes-trie configuration currently
// installed over it, with extrinsic attribution resolved through an
// injected ExtrinsicDecoder.
type OverlayedChanges struct {
	changes           *ChangeSet
	changesTrieConfig *ChangesTrieConfig
	decoder           ExtrinsicDecoder
	logger            *zap.Logger
}

// Option configures an OverlayedChanges at construction time.
type Option func(*OverlayedChanges)

// WithLogger installs a *zap.Logger for layer-transition and
// reconfiguration diagnostics. The default is zap.NewNop(): silent unless a
// caller opts in, matching the corpus's own constructors.
func WithLogger(logger *zap.Logger) Option {
	return func(o *OverlayedChanges) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtrinsicDecoder overrides the default big-endian uint32 decoder used
// to resolve CurrentExtrinsicIndex.
func WithExtrinsicDecoder(decoder ExtrinsicDecoder) Option {
	return func(o *OverlayedChanges) {
		if decoder != nil {
			o.decoder = decoder
		}
	}
}

// WithChangesTrieConfig pre-installs cfg, equivalent to calling
// SetChangesTrieConfig(cfg) once immediately after construction.
func WithChangesTrieConfig(cfg ChangesTrieConfig) Option {
	return func(o *OverlayedChanges) {
		c := cfg
		o.changesTrieConfig = &c
	}
}

// NewOverlayedChanges returns an empty overlay ready to accept writes at
// its single Pending layer.
func NewOverlayedChanges(opts ...Option) *OverlayedChanges {
	o := &OverlayedChanges{
		changes: NewChangeSet(),
		decoder: codec.BigEndianUint32{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsEmpty reports whether no key, top-level or child, has ever been
// touched through this overlay (original: changes.is_empty(), which also
// walks children -- see SPEC_FULL.md §10).
func (o *OverlayedChanges) IsEmpty() bool {
	return o.changes.IsEmpty()
}

// Storage returns the newest visible value for key: (value, true) if
// present, (nil, true) if present-but-deleted, (_, false) if the overlay
// has never seen this key or every write to it has been rolled back, and
// the caller must fall back to the backend.
func (o *OverlayedChanges) Storage(key []byte) (value []byte, ok bool) {
	v, ok := o.changes.TopHistory(key)
	if !ok {
		return nil, false
	}
	if v.Value == nil {
		return nil, true
	}
	return *v.Value, true
}

// ChildStorage is Storage scoped to one child namespace.
func (o *OverlayedChanges) ChildStorage(storageKey, key []byte) (value []byte, ok bool) {
	v, ok := o.changes.ChildHistory(storageKey, key)
	if !ok {
		return nil, false
	}
	if v.Value == nil {
		return nil, true
	}
	return *v.Value, true
}

// SetStorage writes value (nil deletes) at the current layer, attributed to
// CurrentExtrinsicIndex when a ChangesTrieConfig is installed.
func (o *OverlayedChanges) SetStorage(key, value []byte) {
	o.changes.Set(key, optionValue(value), o.extrinsicIndexPtr())
}

// SetChildStorage is SetStorage scoped to one child namespace.
func (o *OverlayedChanges) SetChildStorage(storageKey, key, value []byte) {
	o.changes.SetChild(storageKey, key, optionValue(value), o.extrinsicIndexPtr())
}

// ClearChildStorage tombstones every key currently known under storageKey.
func (o *OverlayedChanges) ClearChildStorage(storageKey []byte) {
	o.changes.ClearChild(storageKey, o.extrinsicIndexPtr())
}

// ClearPrefix tombstones every top-level key currently known to start with
// prefix.
func (o *OverlayedChanges) ClearPrefix(prefix []byte) {
	o.changes.ClearPrefix(prefix, o.extrinsicIndexPtr())
}

func optionValue(value []byte) *[]byte {
	if value == nil {
		return nil
	}
	return &value
}

// extrinsicIndexPtr resolves CurrentExtrinsicIndex, but only when a
// ChangesTrieConfig is installed -- writes made with no config installed
// carry no attribution at all, matching the original's
// "no_extrinsic_index... unless a config changes that" resolution logic.
func (o *OverlayedChanges) extrinsicIndexPtr() *uint32 {
	if o.changesTrieConfig == nil {
		return nil
	}
	idx := o.CurrentExtrinsicIndex()
	return &idx
}

// CurrentExtrinsicIndex resolves the active extrinsic index by reading the
// reserved ExtrinsicIndexKey out of top-level storage and decoding it with
// the configured ExtrinsicDecoder, falling back to NoExtrinsicIndex when the
// key is absent or fails to decode.
func (o *OverlayedChanges) CurrentExtrinsicIndex() uint32 {
	raw, ok := o.Storage(ExtrinsicIndexKey)
	if !ok || raw == nil {
		return NoExtrinsicIndex
	}
	idx, ok := o.decoder.DecodeUint32(raw)
	if !ok {
		return NoExtrinsicIndex
	}
	return idx
}

// SetChangesTrieConfig installs cfg. Reinstalling the same config is a
// no-op success; attempting to install a different config while one is
// already active is rejected and logged at Warn -- the caller must remove
// the existing config first.
func (o *OverlayedChanges) SetChangesTrieConfig(cfg ChangesTrieConfig) bool {
	if o.changesTrieConfig != nil {
		if *o.changesTrieConfig == cfg {
			return true
		}
		o.logger.Warn("rejected changes trie reconfiguration: incompatible config already installed",
			zap.Any("current", *o.changesTrieConfig), zap.Any("attempted", cfg))
		return false
	}
	c := cfg
	o.changesTrieConfig = &c
	return true
}

// RemoveChangesTrieConfig uninstalls the active ChangesTrieConfig,
// returning the removed value (or the zero value and false if none was
// installed). Supplemented from the original's remove_changes_trie_config
// (see SPEC_FULL.md §10).
func (o *OverlayedChanges) RemoveChangesTrieConfig() (ChangesTrieConfig, bool) {
	if o.changesTrieConfig == nil {
		return ChangesTrieConfig{}, false
	}
	cfg := *o.changesTrieConfig
	o.changesTrieConfig = nil
	return cfg, true
}

// StartTransaction opens a new nested, independently revertible layer.
func (o *OverlayedChanges) StartTransaction() {
	before := len(o.changes.history)
	o.changes.StartTransaction()
	o.logger.Debug("start_transaction", zap.Int("history_len_before", before), zap.Int("history_len_after", len(o.changes.history)))
}

// CommitTransaction folds the innermost transaction into the enclosing
// prospective layer.
func (o *OverlayedChanges) CommitTransaction() {
	before := len(o.changes.history)
	o.changes.CommitTransaction()
	o.logger.Debug("commit_transaction", zap.Int("history_len_before", before), zap.Int("history_len_after", len(o.changes.history)))
}

// DiscardTransaction rewinds the innermost transaction.
func (o *OverlayedChanges) DiscardTransaction() {
	before := len(o.changes.history)
	o.changes.DiscardTransaction()
	o.logger.Debug("discard_transaction", zap.Int("history_len_before", before), zap.Int("history_len_after", len(o.changes.history)))
}

// CommitProspective hardens every pending/transactional/prospective frame
// into Committed.
func (o *OverlayedChanges) CommitProspective() {
	before := len(o.changes.history)
	o.changes.CommitProspective()
	o.logger.Debug("commit_prospective", zap.Int("history_len_before", before), zap.Int("history_len_after", len(o.changes.history)))
}

// DiscardProspective drops every non-committed frame.
func (o *OverlayedChanges) DiscardProspective() {
	before := len(o.changes.history)
	o.changes.DiscardProspective()
	o.logger.Debug("discard_prospective", zap.Int("history_len_before", before), zap.Int("history_len_after", len(o.changes.history)))
}

// IntoCommittedTop consumes the top-level change set, yielding for each key
// the value of its newest Committed entry; keys with no Committed entry are
// left out. Entries still at a prospective or transactional layer are
// skipped and logged at Error -- see
// SPEC_FULL.md §11 for why this is a log, not a panic.
func (o *OverlayedChanges) IntoCommittedTop() iter.Seq2[[]byte, *[]byte] {
	o.warnIfProspectiveRemains()
	return o.changes.IntoCommittedTop()
}

// IntoCommittedChildren is IntoCommittedTop per child namespace.
func (o *OverlayedChanges) IntoCommittedChildren() iter.Seq2[[]byte, iter.Seq2[[]byte, *[]byte]] {
	o.warnIfProspectiveRemains()
	return o.changes.IntoCommittedChildren()
}

// warnIfProspectiveRemains logs at Error when any top-level or child key
// still holds an entry at a Pending, TxPending or Prospective layer. The
// history itself always ends in an open frame, so its markers alone cannot
// tell a committed overlay from one with uncommitted writes.
func (o *OverlayedChanges) warnIfProspectiveRemains() {
	remains := len(o.changes.ProspectiveTop()) > 0
	for _, ns := range o.changes.children {
		for _, ce := range ns.entries {
			if _, ok := ce.history.getProspective(o.changes.history); ok {
				remains = true
			}
		}
	}
	if remains {
		o.logger.Error(ErrProspectiveFramesRemain.Error())
	}
}

// ProspectiveTop and CommittedTop are debug-only snapshots; see
// SPEC_FULL.md §10.
func (o *OverlayedChanges) ProspectiveTop() map[string]OverlayedValue { return o.changes.ProspectiveTop() }
func (o *OverlayedChanges) CommittedTop() map[string]OverlayedValue   { return o.changes.CommittedTop() }

// TopIter and ChildIter surface the current view (each key's newest visible
// value, committed or not) for callers that need to enumerate the overlay
// without consuming it.
func (o *OverlayedChanges) TopIter() iter.Seq2[[]byte, *[]byte] { return o.changes.TopIter() }
func (o *OverlayedChanges) ChildIter(storageKey []byte) iter.Seq2[[]byte, *[]byte] {
	return o.changes.ChildIter(storageKey)
}
