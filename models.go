package grantkit

// Class names for the typed objects attached to an entity's backing
// document. The document store treats these as opaque grouping keys.
const (
	ClassOwner         = "OwnerClass"
	ClassCollaborator  = "CollaboratorClass"
	ClassVisibility    = "VisibilityClass"
	ClassRights        = "RightsClass"
	ClassStudyBinding  = "StudyBindingClass"
	ClassConfiguration = "ConfigurationClass"
	ClassUser          = "UserClass"
	ClassGroup         = "GroupClass"
)

// Property and object field names used on the backing document.
const (
	PropOwner         = "owner"
	PropVisibility    = "visibility"
	PropStudy         = "studyReference"
	FieldCollaborator = "collaborator"
	FieldAccess       = "access"
	FieldLevels       = "levels"
	FieldAllow        = "allow"
	FieldUsers        = "users"
	FieldGroups       = "groups"
	FieldProperty     = "property"
	FieldValue        = "value"
)

// PrincipalKind classifies a principal reference.
type PrincipalKind string

const (
	KindUser    PrincipalKind = "user"
	KindGroup   PrincipalKind = "group"
	KindUnknown PrincipalKind = "unknown"
)

// Entity is a record subject to access control. Ref is the reference of the
// backing document in the store.
type Entity struct {
	Ref string
}

// Owner is the single owner slot of an entity. An empty Ref means the entity
// is unowned (public).
type Owner struct {
	Ref string
}

// IsEmpty reports whether the entity is unowned.
func (o Owner) IsEmpty() bool {
	return o.Ref == ""
}

// Is reports whether the owner slot holds the given principal.
func (o Owner) Is(ref string) bool {
	return !o.IsEmpty() && o.Ref == ref
}

// Collaborator is an explicit (principal, AccessLevel) grant on an entity.
type Collaborator struct {
	Ref   string
	Level AccessLevel
}

// PropertyBag is one typed object attached to a document: a flat set of
// string fields. The store keeps attached objects grouped per class, in
// insertion order.
type PropertyBag map[string]string

// Get returns the named field, or empty string when absent.
func (b PropertyBag) Get(name string) string {
	return b[name]
}
