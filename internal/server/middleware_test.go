package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltmesh/gridadmin/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func authTestRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &Server{verifier: auth.NewVerifier(testSecret)}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	handlers := append([]gin.HandlerFunc{s.AuthRequired()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := auth.UserFromContext(c.Request.Context())
		respondOK(c, gin.H{"userId": user.UserID})
	})
	engine.GET("/protected", handlers...)
	return engine
}

func get(router *gin.Engine, decorate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	router := authTestRouter(t)
	rec := get(router, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestAuthRequiredAcceptsHeaderToken(t *testing.T) {
	router := authTestRouter(t)
	token := signToken(t, "42")

	rec := get(router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"42"`)
}

func TestAuthRequiredAcceptsCookieToken(t *testing.T) {
	router := authTestRouter(t)
	token := signToken(t, "42")

	rec := get(router, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequiredAcceptsQueryToken(t *testing.T) {
	router := authTestRouter(t)
	token := signToken(t, "42")

	rec := get(router, func(req *http.Request) {
		q := req.URL.Query()
		q.Set("token", token)
		req.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHeaderWinsOverCookie(t *testing.T) {
	router := authTestRouter(t)
	header := signToken(t, "header-user")
	cookie := signToken(t, "cookie-user")

	rec := get(router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+header)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: cookie})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"header-user"`)
}

func TestAuthRequiredRejectsBadSignature(t *testing.T) {
	router := authTestRouter(t)
	claims := jwt.MapClaims{"sub": "42", "exp": time.Now().Add(time.Hour).Unix()}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec := get(router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+forged)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	router := authTestRouter(t, RequireRole("admin"))

	rec := get(router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signToken(t, "1", "admin"))
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signToken(t, "2", "operator"))
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
