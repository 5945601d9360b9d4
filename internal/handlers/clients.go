package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/apperr"
	"billgen/internal/clients"
	"billgen/internal/middleware"
)

var errNotAuthorized = apperr.Authentication("Not authorized")

func ListClients(svc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "clients.list"
		defer handlePanic(c, route)

		list, err := svc.List(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, list)
	}
}

func CreateClient(svc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "clients.create"
		defer handlePanic(c, route)

		identity := middleware.Identity(c)
		if identity == nil {
			respondError(c, route, errNotAuthorized)
			return
		}

		var input clients.ClientInput
		if err := bindJSON(c, &input); err != nil {
			respondError(c, route, err)
			return
		}

		client, err := svc.Create(c.Request.Context(), identity, input)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusCreated, client)
	}
}
