package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anihub/pkg/database"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"BEARER abc.def.ghi ", "abc.def.ghi"},
		{"Basic dXNlcjpwdw==", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bearerToken(tc.header), "header %q", tc.header)
	}
}

func newProtectedRouter(t *testing.T) (*gin.Engine, *Repo, TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))

	_, err = db.Exec(`
		INSERT INTO users (id, username, email_encrypted, email_hash, password_hash, token_version)
		VALUES ('u-1', 'alice', 'enc', 'hash', 'pw', 0)
	`)
	require.NoError(t, err)

	repo := NewRepo(db)
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "anihub", Duration: time.Hour}

	r := gin.New()
	g := r.Group("/api")
	g.Use(AuthMiddleware(tokens, repo))
	g.GET("/whoami", func(c *gin.Context) {
		claims := MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r, repo, tokens
}

func get(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	r, _, _ := newProtectedRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "Basic dXNlcjpwdw==").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "Bearer not-a-jwt").Code)
}

func TestMiddlewareAcceptsCurrentTokenVersion(t *testing.T) {
	r, _, tokens := newProtectedRouter(t)

	token, _, err := tokens.Sign(&User{ID: "u-1", Username: "alice", TokenVersion: 0})
	require.NoError(t, err)

	w := get(r, "/api/whoami", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestMiddlewareRejectsStaleTokenVersion(t *testing.T) {
	r, repo, tokens := newProtectedRouter(t)

	token, _, err := tokens.Sign(&User{ID: "u-1", Username: "alice", TokenVersion: 0})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(r, "/api/whoami", "Bearer "+token).Code)

	// a version bump (logout, password change) kills outstanding tokens
	require.NoError(t, repo.BumpTokenVersion(context.Background(), "u-1"))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "Bearer "+token).Code)
}
