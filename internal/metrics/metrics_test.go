package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/bills/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/bills/:id", "GET", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bills/abc", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("/bills/:id", "GET", "404"))
	assert.Equal(t, before+1, after)
}

func TestBillOperation(t *testing.T) {
	before := testutil.ToFloat64(billOperations.WithLabelValues("created"))
	BillOperation("created")
	assert.Equal(t, before+1, testutil.ToFloat64(billOperations.WithLabelValues("created")))
}
