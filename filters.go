package grantkit

import "context"

// EntityIterator is a single-pass sequence of entities, consumed with
// interleaved HasNext/Next calls. Iterators are not restartable and do not
// support removal.
type EntityIterator interface {
	HasNext() bool
	Next() *Entity
}

// SliceIterator adapts a slice to the EntityIterator interface.
type SliceIterator struct {
	entities []*Entity
	pos      int
}

// NewSliceIterator creates an iterator over the given entities.
func NewSliceIterator(entities []*Entity) *SliceIterator {
	return &SliceIterator{entities: entities}
}

// HasNext reports whether another entity remains.
func (it *SliceIterator) HasNext() bool {
	return it.pos < len(it.entities)
}

// Next returns the next entity, or nil when the sequence is exhausted.
func (it *SliceIterator) Next() *Entity {
	if !it.HasNext() {
		return nil
	}
	e := it.entities[it.pos]
	it.pos++
	return e
}

// FilterByVisibility returns the subset of entities whose visibility is at
// least as permissive as the threshold. Eager form; the input is read once.
func (m *VisibilityManager) FilterByVisibility(ctx context.Context, entities []*Entity, threshold Visibility) []*Entity {
	filtered := make([]*Entity, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		if m.VisibilityOf(ctx, e).AtLeast(threshold) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FilterIterator lazily filters an entity sequence by a visibility
// threshold: a single pass over the input, no buffering beyond one
// looked-ahead element, interleaved HasNext/Next safe.
func (m *VisibilityManager) FilterIterator(ctx context.Context, source EntityIterator, threshold Visibility) EntityIterator {
	return &visibilityIterator{
		ctx:       ctx,
		manager:   m,
		source:    source,
		threshold: threshold,
	}
}

type visibilityIterator struct {
	ctx       context.Context
	manager   *VisibilityManager
	source    EntityIterator
	threshold Visibility
	next      *Entity
}

// HasNext advances the underlying sequence until a matching entity is found,
// holding it for the following Next call.
func (it *visibilityIterator) HasNext() bool {
	if it.next != nil {
		return true
	}
	for it.source.HasNext() {
		candidate := it.source.Next()
		if candidate == nil {
			continue
		}
		if it.manager.VisibilityOf(it.ctx, candidate).AtLeast(it.threshold) {
			it.next = candidate
			return true
		}
	}
	return false
}

// Next returns the next matching entity, or nil when the sequence is
// exhausted.
func (it *visibilityIterator) Next() *Entity {
	if !it.HasNext() {
		return nil
	}
	e := it.next
	it.next = nil
	return e
}
