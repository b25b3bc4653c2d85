package grantkit

import (
	"context"
	"sync"
)

// memDocument is one document's state: typed properties grouped by class,
// attached objects grouped by class.
type memDocument struct {
	props   map[string]map[string]string
	objects map[string][]PropertyBag
}

func newMemDocument() *memDocument {
	return &memDocument{
		props:   make(map[string]map[string]string),
		objects: make(map[string][]PropertyBag),
	}
}

func (d *memDocument) clone() *memDocument {
	c := newMemDocument()
	for class, props := range d.props {
		inner := make(map[string]string, len(props))
		for name, value := range props {
			inner[name] = value
		}
		c.props[class] = inner
	}
	for class, objects := range d.objects {
		copied := make([]PropertyBag, len(objects))
		for i, obj := range objects {
			bag := make(PropertyBag, len(obj))
			for k, v := range obj {
				bag[k] = v
			}
			copied[i] = bag
		}
		c.objects[class] = copied
	}
	return c
}

// SaveRecord captures one committed save for inspection.
type SaveRecord struct {
	DocRef  string
	Message string
}

// MemDocumentStore is an in-memory DocumentStore with the staged-change
// semantics of the interface: mutations go to a per-document draft, reads
// observe the draft, Save commits it, Discard drops it. Safe for concurrent
// use.
type MemDocumentStore struct {
	mu        sync.RWMutex
	committed map[string]*memDocument
	drafts    map[string]*memDocument
	saves     []SaveRecord
	saveErr   error
}

// NewMemDocumentStore creates an empty in-memory store.
func NewMemDocumentStore() *MemDocumentStore {
	return &MemDocumentStore{
		committed: make(map[string]*memDocument),
		drafts:    make(map[string]*memDocument),
	}
}

// draftFor returns the working copy for a document, creating it from the
// committed state on first mutation or read.
func (s *MemDocumentStore) draftFor(docRef string) *memDocument {
	if draft, ok := s.drafts[docRef]; ok {
		return draft
	}
	var draft *memDocument
	if committed, ok := s.committed[docRef]; ok {
		draft = committed.clone()
	} else {
		draft = newMemDocument()
	}
	s.drafts[docRef] = draft
	return draft
}

// view returns the current readable state: the draft when one exists,
// otherwise the committed document.
func (s *MemDocumentStore) view(docRef string) *memDocument {
	if draft, ok := s.drafts[docRef]; ok {
		return draft
	}
	return s.committed[docRef]
}

// GetProperty implements DocumentStore.
func (s *MemDocumentStore) GetProperty(ctx context.Context, docRef, class, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.view(docRef)
	if doc == nil {
		return "", nil
	}
	return doc.props[class][name], nil
}

// SetProperty implements DocumentStore.
func (s *MemDocumentStore) SetProperty(ctx context.Context, docRef, class, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.draftFor(docRef)
	if doc.props[class] == nil {
		doc.props[class] = make(map[string]string)
	}
	doc.props[class][name] = value
	return nil
}

// Objects implements DocumentStore.
func (s *MemDocumentStore) Objects(ctx context.Context, docRef, class string) ([]PropertyBag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.view(docRef)
	if doc == nil {
		return nil, nil
	}
	objects := doc.objects[class]
	out := make([]PropertyBag, len(objects))
	for i, obj := range objects {
		bag := make(PropertyBag, len(obj))
		for k, v := range obj {
			bag[k] = v
		}
		out[i] = bag
	}
	return out, nil
}

// SetObjects implements DocumentStore.
func (s *MemDocumentStore) SetObjects(ctx context.Context, docRef, class string, objects []PropertyBag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.draftFor(docRef)
	if objects == nil {
		delete(doc.objects, class)
		return nil
	}
	copied := make([]PropertyBag, len(objects))
	for i, obj := range objects {
		bag := make(PropertyBag, len(obj))
		for k, v := range obj {
			bag[k] = v
		}
		copied[i] = bag
	}
	doc.objects[class] = copied
	return nil
}

// HasObject implements DocumentStore.
func (s *MemDocumentStore) HasObject(ctx context.Context, docRef, class string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.view(docRef)
	if doc == nil {
		return false, nil
	}
	return len(doc.objects[class]) > 0, nil
}

// Save implements DocumentStore.
func (s *MemDocumentStore) Save(ctx context.Context, docRef, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		err := s.saveErr
		s.saveErr = nil
		return err
	}
	if draft, ok := s.drafts[docRef]; ok {
		s.committed[docRef] = draft
		delete(s.drafts, docRef)
	}
	s.saves = append(s.saves, SaveRecord{DocRef: docRef, Message: message})
	return nil
}

// Discard implements DocumentStore.
func (s *MemDocumentStore) Discard(ctx context.Context, docRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, docRef)
}

// FailNextSave makes the next Save call return err, for failure-path tests.
func (s *MemDocumentStore) FailNextSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns the committed save records, in order.
func (s *MemDocumentStore) Saves() []SaveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SaveRecord, len(s.saves))
	copy(out, s.saves)
	return out
}

// MarkUser attaches the user type-marker object to a profile document.
func (s *MemDocumentStore) MarkUser(ref string) {
	s.markAndCommit(ref, ClassUser)
}

// MarkGroup attaches the group type-marker object to a profile document.
func (s *MemDocumentStore) MarkGroup(ref string) {
	s.markAndCommit(ref, ClassGroup)
}

func (s *MemDocumentStore) markAndCommit(ref, class string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.committed[ref]
	if doc == nil {
		doc = newMemDocument()
		s.committed[ref] = doc
	}
	doc.objects[class] = append(doc.objects[class], PropertyBag{})
}

// MemGroupService is an in-memory GroupService backed by a parent-group
// adjacency list. Cycles are representable; the engine's traversal must
// handle them.
type MemGroupService struct {
	mu      sync.RWMutex
	parents map[string][]string
	errFor  map[string]error
}

// NewMemGroupService creates an empty membership graph.
func NewMemGroupService() *MemGroupService {
	return &MemGroupService{
		parents: make(map[string][]string),
		errFor:  make(map[string]error),
	}
}

// AddMember records ref as a direct member of group.
func (g *MemGroupService) AddMember(group, ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parents[ref] = append(g.parents[ref], group)
}

// FailFor makes lookups for ref return err.
func (g *MemGroupService) FailFor(ref string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errFor[ref] = err
}

// ParentGroups implements GroupService.
func (g *MemGroupService) ParentGroups(ctx context.Context, ref string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.errFor[ref]; err != nil {
		return nil, err
	}
	parents := g.parents[ref]
	out := make([]string, len(parents))
	copy(out, parents)
	return out, nil
}

// MemAuthorizer is an in-memory Authorizer granting administrative rights
// to an explicit set of principals.
type MemAuthorizer struct {
	mu     sync.RWMutex
	admins map[string]bool
	err    error
}

// NewMemAuthorizer creates an authorizer with no administrators.
func NewMemAuthorizer() *MemAuthorizer {
	return &MemAuthorizer{admins: make(map[string]bool)}
}

// Grant makes ref an administrator everywhere.
func (a *MemAuthorizer) Grant(ref string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.admins[ref] = true
}

// Fail makes all checks return err.
func (a *MemAuthorizer) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// HasAdminRight implements Authorizer.
func (a *MemAuthorizer) HasAdminRight(ctx context.Context, userRef, docRef string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.err != nil {
		return false, a.err
	}
	return a.admins[userRef], nil
}
