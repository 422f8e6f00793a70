// Package server wires the HTTP transport for the sales API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the per-context API handlers mounted on the router.
type ApiHandleFunctions struct {
	SalesAPI SalesAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the sales routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			Name:        "CreateSale",
			Method:      http.MethodPost,
			Pattern:     "/api/sales",
			HandlerFunc: handleFunctions.SalesAPI.CreateSale,
		},
		{
			Name:        "ListSales",
			Method:      http.MethodGet,
			Pattern:     "/api/sales",
			HandlerFunc: handleFunctions.SalesAPI.ListSales,
		},
		{
			Name:        "GetSaleById",
			Method:      http.MethodGet,
			Pattern:     "/api/sales/:saleId",
			HandlerFunc: handleFunctions.SalesAPI.GetSaleByID,
		},
		{
			Name:        "UpdateSale",
			Method:      http.MethodPut,
			Pattern:     "/api/sales/:saleId",
			HandlerFunc: handleFunctions.SalesAPI.UpdateSale,
		},
		{
			Name:        "DeleteSale",
			Method:      http.MethodDelete,
			Pattern:     "/api/sales/:saleId",
			HandlerFunc: handleFunctions.SalesAPI.DeleteSale,
		},
	}
}
