package routing

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

// Identity headers injected by the fronting SSO proxy. Session
// establishment happens upstream; this service only consumes the
// result.
const (
	headerUsername = "X-Operator-Username"
	headerFullName = "X-Operator-Fullname"
	headerPersonID = "X-Operator-Personid"
	headerAccess   = "X-Operator-Access"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity lifts the operator identity from the proxy headers into the
// request context. Requests without a username pass through without an
// identity; handlers that need one answer 401.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get(headerUsername)
		if username == "" {
			next.ServeHTTP(w, r)
			return
		}
		personID, _ := strconv.Atoi(r.Header.Get(headerPersonID))
		user := lockservice.User{
			Username: username,
			FullName: r.Header.Get(headerFullName),
			PersonID: personID,
			Access:   splitAccess(r.Header.Get(headerAccess)),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
	})
}

// WithIdentity returns ctx carrying the given operator identity.
func WithIdentity(ctx context.Context, user lockservice.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// IdentityFromContext extracts the operator identity set by the
// Identity middleware.
func IdentityFromContext(ctx context.Context) (lockservice.User, bool) {
	user, ok := ctx.Value(identityKey).(lockservice.User)
	return user, ok
}

func splitAccess(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	access := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			access = append(access, p)
		}
	}
	return access
}
