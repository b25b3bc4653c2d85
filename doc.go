// Package grantkit provides an entity access-control engine: it resolves the
// effective permission level any user or group holds on a record, combining
// ownership, explicit collaborator grants, visibility-based default access,
// and transitive group membership.
//
// GrantKit is storage-agnostic: records live in an opaque document store
// supporting typed property read/write and transactional save. A
// Postgres-backed store and an in-memory store are included.
//
// # Core Concepts
//
// AccessLevel: a named, totally ordered permission tier
// (none < match < view < edit < manage < owner). Levels marked assignable may
// be granted to collaborators by end users.
//
// Visibility: a named, totally ordered exposure tier (private, matchable,
// public, open), each carrying the default AccessLevel granted to every
// principal. Visibility acts as a floor: explicit grants above it win,
// grants below it are invisible.
//
// Owner: the distinguished principal with implicit top-level access. An
// entity has exactly one owner slot, possibly empty (public/unowned).
//
// Collaborator: an explicit (principal, AccessLevel) grant attached to an
// entity. The owner never simultaneously appears as a collaborator; this
// invariant is enforced on every ownership change.
//
// # Basic Usage
//
//	// 1. Build the service against your store and directory services.
//	svc := grantkit.NewService(store, groups, authorizer)
//
//	// 2. Query effective access.
//	access := svc.Access(&grantkit.Entity{Ref: "data.P0000001"})
//	level := access.Level(ctx, "users.jdoe")
//	if level.AtLeast(svc.Levels().Resolve(grantkit.LevelEdit)) {
//	    // jdoe can edit this record
//	}
//
//	// 3. Mutate through the secured facade; callers below "manage" are
//	// rejected without touching the record.
//	secure := svc.SecureAccess(&grantkit.Entity{Ref: "data.P0000001"})
//	ctx = grantkit.WithCurrentUser(ctx, "users.jdoe")
//	ok := secure.SetOwner(ctx, "users.asmith")
//
// # Effective Access
//
// Access resolution walks the principal-and-its-groups graph breadth-first,
// taking the maximum of the owner level, collaborator grants and "none"
// across every reachable node. The traversal keeps a visited set, so cyclic
// group membership terminates. Lookup failures degrade toward least
// privilege: a partial result may under-grant, never over-grant.
//
// # Ownership Transfer
//
// SetOwner preserves the displaced owner's access by demoting them to a
// "manage" collaborator, and removes any stale collaborator entry held by
// the incoming owner. The whole sequence persists in a single save, or not
// at all.
//
// # Default Settings
//
// Event-driven reactions populate owner, collaborators, visibility and study
// assignment from configured preferences (user profile first, workgroup
// profile as fallback) when records are created or their rights change, and
// a rights projection step materializes the resolved model into three
// coarse-grained right groups (view / view,edit / view,edit,delete).
package grantkit
