package grantkit

import (
	"context"

	"github.com/rs/zerolog"
)

// Helper gives the engine read/write access to typed properties on an
// entity's backing document, and classifies principal references as users or
// groups by probing for type-marker objects on their profile documents.
type Helper struct {
	store DocumentStore
	log   zerolog.Logger
}

// NewHelper creates a Helper over the given store.
func NewHelper(store DocumentStore, log zerolog.Logger) *Helper {
	return &Helper{store: store, log: log}
}

// StringProperty reads a string property, degrading read failures to an
// empty value. The stored literal "null" is treated as empty, a legacy of
// serializing absent references.
func (h *Helper) StringProperty(ctx context.Context, docRef, class, name string) string {
	value, err := h.store.GetProperty(ctx, docRef, class, name)
	if err != nil {
		h.log.Warn().Err(err).Str("doc", docRef).Str("class", class).Str("name", name).
			Msg("failed to read property")
		return ""
	}
	if value == "null" {
		return ""
	}
	return value
}

// SetStringProperty stages a string property write on the document.
func (h *Helper) SetStringProperty(ctx context.Context, docRef, class, name, value string) error {
	return h.store.SetProperty(ctx, docRef, class, name, value)
}

// KindOf classifies a principal reference by querying the backing store for
// type-marker objects. Classification is computed freshly on each call; the
// store answers from the same request-scoped view, so no caching is done
// here. Empty references and lookup failures classify as unknown.
func (h *Helper) KindOf(ctx context.Context, ref string) PrincipalKind {
	if ref == "" {
		return KindUnknown
	}
	if isUser, err := h.store.HasObject(ctx, ref, ClassUser); err == nil && isUser {
		return KindUser
	} else if err != nil {
		h.log.Warn().Err(err).Str("ref", ref).Msg("failed to classify principal")
		return KindUnknown
	}
	if isGroup, err := h.store.HasObject(ctx, ref, ClassGroup); err == nil && isGroup {
		return KindGroup
	} else if err != nil {
		h.log.Warn().Err(err).Str("ref", ref).Msg("failed to classify principal")
	}
	return KindUnknown
}

// IsUser reports whether the reference points at a user profile.
func (h *Helper) IsUser(ctx context.Context, ref string) bool {
	return h.KindOf(ctx, ref) == KindUser
}

// IsGroup reports whether the reference points at a group profile.
func (h *Helper) IsGroup(ctx context.Context, ref string) bool {
	return h.KindOf(ctx, ref) == KindGroup
}
