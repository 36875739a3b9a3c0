package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const AdminKey ContextKey = "isAdmin"

const sessionAdminKey = "isAdmin"

// LoadAdmin copies the admin flag from the session into the request context.
func LoadAdmin(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAdmin := sessionManager.GetBool(r.Context(), sessionAdminKey)
			ctx := context.WithValue(r.Context(), AdminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sends anyone without the admin flag to the login page.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			if r.Method == http.MethodGet {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}
			http.Error(w, "Admin login required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(AdminKey).(bool)
	return isAdmin
}

func LogIn(ctx context.Context, sessionManager *scs.SessionManager) error {
	// new token on privilege change
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, sessionAdminKey, true)
	return nil
}

func LogOut(ctx context.Context, sessionManager *scs.SessionManager) error {
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Remove(ctx, sessionAdminKey)
	return nil
}
