package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, PrincipalFrom(c).Email)
}

func runAuth(t *testing.T, auth *Auth, header string, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, auth.RequireAuth(h)(c)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	auth := NewAuth("secret")
	token, err := auth.IssueToken("a@x.com", models.RoleStudent, time.Hour)
	require.NoError(t, err)

	rec, err := runAuth(t, auth, "Bearer "+token, okHandler)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", rec.Body.String())
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	_, err := runAuth(t, NewAuth("secret"), "", okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	_, err := runAuth(t, NewAuth("secret"), "Token abc", okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_BadSignature(t *testing.T) {
	token, err := NewAuth("other-secret").IssueToken("a@x.com", models.RoleStudent, time.Hour)
	require.NoError(t, err)

	_, err = runAuth(t, NewAuth("secret"), "Bearer "+token, okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequireAuth_Expired(t *testing.T) {
	auth := NewAuth("secret")
	token, err := auth.IssueToken("a@x.com", models.RoleStudent, -time.Minute)
	require.NoError(t, err)

	_, err = runAuth(t, auth, "Bearer "+token, okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequireRole(t *testing.T) {
	auth := NewAuth("secret")
	adminOnly := RequireRole(models.RoleAdmin)(okHandler)

	studentToken, _ := auth.IssueToken("s@x.com", models.RoleStudent, time.Hour)
	_, err := runAuth(t, auth, "Bearer "+studentToken, adminOnly)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	adminToken, _ := auth.IssueToken("root@x.com", models.RoleAdmin, time.Hour)
	rec, err := runAuth(t, auth, "Bearer "+adminToken, adminOnly)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandler_RendersMessage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.NewHTTPError(http.StatusConflict, "class is already in the cart"), c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"class is already in the cart"}`, rec.Body.String())
}
