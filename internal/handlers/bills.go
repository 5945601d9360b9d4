package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/billing"
	"billgen/internal/middleware"
)

func ListBills(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.list"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		result, err := engine.List(c.Request.Context(), middleware.Identity(c), billing.ListFilter{
			Status: c.Query("status"),
			Search: c.Query("search"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		body := gin.H{"success": true, "data": result.Bills}
		if result.Paginated {
			body["pagination"] = gin.H{
				"page":       result.Page,
				"limit":      result.Limit,
				"total":      result.Total,
				"totalPages": totalPages(result.Total, result.Limit),
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

func CreateBill(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.create"
		defer handlePanic(c, route)

		identity := middleware.Identity(c)
		if identity == nil {
			respondError(c, route, errNotAuthorized)
			return
		}

		var input billing.BillInput
		if err := bindJSON(c, &input); err != nil {
			respondError(c, route, err)
			return
		}

		bill, err := engine.Create(c.Request.Context(), identity, input)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusCreated, bill)
	}
}

func GetBill(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.get"
		defer handlePanic(c, route)

		bill, err := engine.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, bill)
	}
}

func UpdateBill(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.update"
		defer handlePanic(c, route)

		var input billing.BillUpdate
		if err := bindJSON(c, &input); err != nil {
			respondError(c, route, err)
			return
		}

		bill, err := engine.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), input)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, bill)
	}
}

func DeleteBill(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.delete"
		defer handlePanic(c, route)

		if err := engine.Remove(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{})
	}
}

func NextBillNumber(engine *billing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "bills.nextNumber"
		defer handlePanic(c, route)

		if middleware.Identity(c) == nil {
			respondError(c, route, errNotAuthorized)
			return
		}

		number, err := engine.PreviewBillNumber(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"billNumber": number})
	}
}
