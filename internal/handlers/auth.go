package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/auth"
	"billgen/internal/middleware"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Signup(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "auth.signup"
		defer handlePanic(c, route)

		var req SignupRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		session, err := svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   session.Token,
			"user":    session.User,
		})
	}
}

func Login(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "auth.login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		session, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   session.Token,
			"user":    session.User,
		})
	}
}

func Me(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "auth.me"
		defer handlePanic(c, route)

		user, err := svc.Me(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}
