package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
)

// Session keys under which the logged-in identity is stored.
const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// LoadAndSave loads the session bound to the request cookie into the context
// and commits it back lazily, right before the first byte of the response is
// written. It also exposes the logged-in identity as claims on the context.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var token string
			if cookie, err := r.Cookie(session.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := session.Load(ctx, token)
			if err != nil {
				return err
			}

			if clm, ok := sessionClaims(ctx, session); ok {
				ctx = claims.Set(ctx, clm)
			}

			sw := &sessionWriter{ResponseWriter: w, session: session, ctx: ctx}
			w.Header().Add("Vary", "Cookie")

			if err := handler(ctx, sw, r); err != nil {
				return err
			}

			sw.commitSession()
			return nil
		}
		return h
	}
	return m
}

// Authenticate rejects requests that don't carry a logged-in session.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if _, ok := sessionClaims(ctx, session); !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin rejects requests whose session is not bound to an admin.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, ok := sessionClaims(ctx, session)
			if !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			if clm.Role != claims.RoleAdmin {
				return weberr.NotAuthorized(errors.New("user is not an admin"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func sessionClaims(ctx context.Context, session *scs.SessionManager) (claims.Claims, bool) {
	id := session.GetString(ctx, userIDKey)
	if id == "" {
		return claims.Claims{}, false
	}

	return claims.Claims{
		UserID: id,
		Role:   session.GetString(ctx, roleKey),
	}, true
}

// Login binds the session to the given identity, renewing the session token.
func Login(ctx context.Context, session *scs.SessionManager, userID string, role string) error {
	if err := session.RenewToken(ctx); err != nil {
		return err
	}

	session.Put(ctx, userIDKey, userID)
	session.Put(ctx, roleKey, role)
	return nil
}

// sessionWriter delays the session cookie write until the response starts, so
// handlers are free to mutate the session at any point.
type sessionWriter struct {
	http.ResponseWriter
	session   *scs.SessionManager
	ctx       context.Context
	committed bool
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commitSession()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commitSession()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) commitSession() {
	if sw.committed {
		return
	}
	sw.committed = true

	switch sw.session.Status(sw.ctx) {
	case scs.Modified:
		token, expiry, err := sw.session.Commit(sw.ctx)
		if err != nil {
			return
		}
		sw.session.WriteSessionCookie(sw.ctx, sw.ResponseWriter, token, expiry)

	case scs.Destroyed:
		sw.session.WriteSessionCookie(sw.ctx, sw.ResponseWriter, "", time.Time{})
	}
}
