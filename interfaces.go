package grantkit

import "context"

// DocumentStore is the opaque document storage backing access-controlled
// entities. Mutations are staged per document and become durable only when
// Save commits them atomically; reads observe staged changes. Discard drops
// staged changes so a failed multi-step mutation leaves no partial state.
type DocumentStore interface {
	// GetProperty reads a typed scalar property of the given class on the
	// document. Missing properties read as empty string, not an error.
	GetProperty(ctx context.Context, docRef, class, name string) (string, error)

	// SetProperty stages a property write on the document.
	SetProperty(ctx context.Context, docRef, class, name, value string) error

	// Objects returns the attached objects of the given class, in order.
	Objects(ctx context.Context, docRef, class string) ([]PropertyBag, error)

	// SetObjects stages a wholesale replacement of the attached objects of
	// the given class. Passing nil removes them all.
	SetObjects(ctx context.Context, docRef, class string, objects []PropertyBag) error

	// HasObject reports whether at least one object of the given class is
	// attached to the document.
	HasObject(ctx context.Context, docRef, class string) (bool, error)

	// Save atomically commits all staged changes on the document, recording
	// the change message.
	Save(ctx context.Context, docRef, message string) error

	// Discard drops all staged, unsaved changes on the document.
	Discard(ctx context.Context, docRef string)
}

// GroupService answers group-membership queries. ParentGroups returns the
// immediate parent groups of a user or group; the result may contain cycles,
// callers must guard their own traversals.
type GroupService interface {
	ParentGroups(ctx context.Context, ref string) ([]string, error)
}

// Authorizer answers administrative-right checks against an external
// authorization service.
type Authorizer interface {
	HasAdminRight(ctx context.Context, userRef, docRef string) (bool, error)
}
