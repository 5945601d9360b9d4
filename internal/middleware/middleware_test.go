package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/auth"
)

type staticAuthorizer struct {
	identity *auth.Identity
}

func (s staticAuthorizer) Authorize(*http.Request) *auth.Identity {
	return s.identity
}

func newRouter(authorizer Authorizer, seen **auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Identify(authorizer), RequestLogger())
	r.GET("/probe", func(c *gin.Context) {
		*seen = Identity(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestIdentifyStoresIdentity(t *testing.T) {
	want := &auth.Identity{ID: primitive.NewObjectID(), Role: "user"}
	var seen *auth.Identity
	r := newRouter(staticAuthorizer{identity: want}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, want, seen)
}

func TestIdentifyLetsAnonymousThrough(t *testing.T) {
	var seen *auth.Identity
	r := newRouter(staticAuthorizer{}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, seen)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	var seen *auth.Identity
	r := newRouter(staticAuthorizer{}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
