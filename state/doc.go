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

// Package state implements the overlayed change set: an in-memory key-value
// overlay that buffers pending mutations to a persistent backend while a
// block's transactions execute.
//
// The overlay does not itself talk to any backend. Callers get a tri-state
// answer out of Storage/ChildStorage (unknown / known-deleted / known-value)
// and are expected to fall through to their own backend on "unknown". The
// overlay's only job is to remember, with full rollback fidelity, what has
// been written since the block started.
//
// Three nested rollback disciplines share one linear history: a prospective
// (block-level) layer, any number of nested transactional layers, and a
// committed floor that cannot be rolled back within the overlay's lifetime.
// Rather than stacking one map per layer, every key keeps its own short
// value history indexed into a single global layer-marker vector -- see
// ValueHistory and LayerHistory.
package state
