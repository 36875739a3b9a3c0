package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(sessionManager *scs.SessionManager) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := LogIn(r.Context(), sessionManager); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := LogOut(r.Context(), sessionManager); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.Handle("/admin", RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	})))
	return sessionManager.LoadAndSave(LoadAdmin(sessionManager)(mux))
}

func do(t *testing.T, h http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdmin(t *testing.T) {
	sessionManager := scs.New()
	h := newTestHandler(sessionManager)

	rec := do(t, h, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fadmin", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPost, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	login := do(t, h, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = do(t, h, http.MethodGet, "/admin", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret", rec.Body.String())

	logout := do(t, h, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusOK, logout.Code)

	rec = do(t, h, http.MethodGet, "/admin", logout.Result().Cookies())
	assert.Equal(t, http.StatusFound, rec.Code)
}
