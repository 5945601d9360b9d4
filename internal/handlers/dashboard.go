package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/dashboard"
)

func DashboardStats(agg *dashboard.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "dashboard.stats"
		defer handlePanic(c, route)

		summary, err := agg.Summary(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, summary)
	}
}
