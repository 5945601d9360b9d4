package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billgen/internal/apperr"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("bad input", "name is required"), http.StatusBadRequest, "bad input"},
		{apperr.Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{apperr.Authentication("Not authorized"), http.StatusUnauthorized, "Not authorized"},
		{apperr.NotFound("Bill not found"), http.StatusNotFound, "Bill not found"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, "test", tc.err)

		assert.Equal(t, tc.status, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestRespondErrorHidesInternalMessagesWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() { ExposeInternalErrors = true })

	err := apperr.Internal("db error", errors.New("connection reset"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, "test", err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "db error: connection reset", decodeBody(t, w)["error"])

	ExposeInternalErrors = false
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondError(c, "test", errors.New("raw failure"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
}

func TestBindJSONReportsFieldDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var req SignupRequest
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"email":"a@b.c"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	err := bindJSON(c, &req)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.ElementsMatch(t, []string{"name is required", "password is required"}, appErr.Details)

	c.Request = httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{not json`))
	err = bindJSON(c, &req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalid body", appErr.Message)
}

func TestHandlePanicReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		defer handlePanic(c, "boom")
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "10")
	require.NoError(t, err)
	assert.Zero(t, page)
	assert.Zero(t, limit)

	page, limit, err = parsePaginationParams("3", "500")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)
	assert.Equal(t, int64(maxPageLimit), limit)

	_, _, err = parsePaginationParams("x", "10")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, _, err = parsePaginationParams("1", "-1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, _, err = parsePaginationParams("9223372036854775807", "100")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	page, limit, err = parsePaginationParams("92233720368547758", "100")
	require.NoError(t, err)
	assert.Equal(t, int64(92233720368547758), page)
	assert.Equal(t, int64(100), limit)

	assert.Equal(t, int64(2), totalPages(3, 2))
	assert.Equal(t, int64(0), totalPages(0, 2))
}
