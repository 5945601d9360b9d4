package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/handlers"
	"billgen/internal/logger"
	"billgen/internal/metrics"
	"billgen/internal/middleware"
)

func (a *App) Router() *gin.Engine {
	if a.Config.GinMode != "" {
		gin.SetMode(a.Config.GinMode)
	}
	handlers.ExposeInternalErrors = a.Config.ExposeInternalErrors

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log := logger.WithComponent("server")
		log.Error().Interface("panic", recovered).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}))
	r.Use(
		middleware.RequestID(),
		middleware.Identify(a.Auth),
		middleware.RequestLogger(),
		metrics.Middleware(),
	)

	r.GET("/healthz", handlers.Health(a.Store))
	r.GET("/metrics", metrics.Handler())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", handlers.Signup(a.Auth))
		authGroup.POST("/login", handlers.Login(a.Auth))
		authGroup.GET("/me", handlers.Me(a.Auth))
	}

	bills := r.Group("/bills")
	{
		bills.GET("", handlers.ListBills(a.Bills))
		bills.POST("", handlers.CreateBill(a.Bills))
		bills.GET("/next-number", handlers.NextBillNumber(a.Bills))
		bills.GET("/:id", handlers.GetBill(a.Bills))
		bills.PUT("/:id", handlers.UpdateBill(a.Bills))
		bills.DELETE("/:id", handlers.DeleteBill(a.Bills))
	}

	clientGroup := r.Group("/clients")
	{
		clientGroup.GET("", handlers.ListClients(a.Clients))
		clientGroup.POST("", handlers.CreateClient(a.Clients))
	}

	r.GET("/dashboard/stats", handlers.DashboardStats(a.Dashboard))

	return r
}
