package grantkit

import (
	"net/http"
)

// Middleware provides HTTP middleware gating handlers on entity access
// levels.
type Middleware struct {
	service      *Service
	getUserRef   func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := grantkit.NewMiddleware(service,
//	    grantkit.WithUserExtractor(func(r *http.Request) string {
//	        return r.Header.Get("X-User")
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getUserRef:   defaultGetUserRef,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserExtractor sets a custom function to extract the caller reference
// from the request. An empty result means an anonymous caller.
func WithUserExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserRef = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetUserRef(r *http.Request) string {
	return CurrentUser(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsNotFound(err) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if IsStorage(err) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// EntityExtractor extracts the target entity from an HTTP request.
type EntityExtractor func(*http.Request) (*Entity, error)

// EntityFromParam creates an EntityExtractor that reads the entity reference
// from a URL path parameter. Compatible with the standard library's route
// patterns and routers that expose PathValue.
//
// Example:
//
//	// For route /records/{recordID}
//	mw.RequireLevel("edit", grantkit.EntityFromParam("recordID"))
func EntityFromParam(paramName string) EntityExtractor {
	return func(r *http.Request) (*Entity, error) {
		ref := r.PathValue(paramName)
		if ref == "" {
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					ref = s
				}
			}
		}
		if ref == "" {
			return nil, NewError(ErrNotFound, "entity reference not found in request")
		}
		return &Entity{Ref: ref}, nil
	}
}

// EntityFromQuery creates an EntityExtractor that reads the entity reference
// from a query parameter.
//
// Example:
//
//	// For route /api/export?record=rec_123
//	mw.RequireLevel("view", grantkit.EntityFromQuery("record"))
func EntityFromQuery(queryParam string) EntityExtractor {
	return func(r *http.Request) (*Entity, error) {
		ref := r.URL.Query().Get(queryParam)
		if ref == "" {
			return nil, NewError(ErrNotFound, "entity reference not found in query")
		}
		return &Entity{Ref: ref}, nil
	}
}

// EntityFromHeader creates an EntityExtractor that reads the entity
// reference from a header.
func EntityFromHeader(headerName string) EntityExtractor {
	return func(r *http.Request) (*Entity, error) {
		ref := r.Header.Get(headerName)
		if ref == "" {
			return nil, NewError(ErrNotFound, "entity reference not found in header")
		}
		return &Entity{Ref: ref}, nil
	}
}

// StaticEntity creates an EntityExtractor that always returns the same
// entity. Useful for singleton resources.
func StaticEntity(ref string) EntityExtractor {
	return func(r *http.Request) (*Entity, error) {
		return &Entity{Ref: ref}, nil
	}
}

// RequireLevel creates middleware that requires at least the named access
// level on the extracted entity. The caller reference is placed into the
// request context for downstream handlers.
//
// Example:
//
//	router.With(mw.RequireLevel("edit", grantkit.EntityFromParam("recordID"))).
//	    Put("/records/{recordID}", updateRecordHandler)
func (m *Middleware) RequireLevel(level string, extractor EntityExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entity, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			userRef := m.getUserRef(r)
			ctx := WithCurrentUser(r.Context(), userRef)

			access := m.service.Access(entity)
			if !access.HasLevel(ctx, level) {
				m.errorHandler(w, r, NewError(ErrInvalidLevel, "missing required access level").
					WithEntity(entity.Ref).
					WithPrincipal(userRef))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner creates middleware that only admits the entity's owner or an
// administrator.
//
// Example:
//
//	router.With(mw.RequireOwner(grantkit.EntityFromParam("recordID"))).
//	    Delete("/records/{recordID}", deleteRecordHandler)
func (m *Middleware) RequireOwner(extractor EntityExtractor) func(http.Handler) http.Handler {
	return m.RequireLevel(LevelOwner, extractor)
}

// InjectCurrentUser creates middleware that extracts the caller reference
// and request ID from the request and adds them to the context, so handlers
// and the secure facade see the same identity.
//
// Example:
//
//	router.Use(mw.InjectCurrentUser())
func (m *Middleware) InjectCurrentUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userRef := m.getUserRef(r); userRef != "" {
				ctx = WithCurrentUser(ctx, userRef)
			}
			if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
