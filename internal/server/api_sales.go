package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	saleshttpmapper "github.com/Apurer/sales-api/internal/domains/sales/adapters/http/mapper"
	salesapp "github.com/Apurer/sales-api/internal/domains/sales/application"
	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-api/internal/shared/criteria"
	apierrors "github.com/Apurer/sales-api/internal/shared/errors"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Reserved query keys stripped before the rest becomes the filter map.
const (
	queryKeyPage  = "_page"
	queryKeySize  = "_size"
	queryKeyOrder = "_order"
)

// SalesAPI wires HTTP transport with the sales bounded context service and workflows.
type SalesAPI struct {
	service   salesports.Service
	workflows salesports.WorkflowOrchestrator
	responder *apierrors.ChainedResponder
}

// NewSalesAPI creates a SalesAPI backed by the provided service.
func NewSalesAPI(service salesports.Service, workflows salesports.WorkflowOrchestrator) SalesAPI {
	return SalesAPI{
		service:   service,
		workflows: workflows,
		responder: apierrors.NewChainedResponder("", salesErrorMapper),
	}
}

// Post /api/sales
// Create a new sale aggregate
func (api *SalesAPI) CreateSale(c *gin.Context) {
	var payload saleshttpmapper.MutationSale
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := types.CreateSaleInput{SaleInput: saleshttpmapper.ToSaleInput(payload)}
	created, err := api.createSale(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saleshttpmapper.FromDomainSale(created))
}

func (api *SalesAPI) createSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	if api.workflows != nil {
		return api.workflows.CreateSale(ctx, input)
	}
	return api.service.CreateSale(ctx, input)
}

// Put /api/sales/:saleId
// Replace an existing sale; the path id fills an empty body id and must match a set one
func (api *SalesAPI) UpdateSale(c *gin.Context) {
	id, ok := api.parseSaleID(c)
	if !ok {
		return
	}
	var payload saleshttpmapper.MutationSale
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if payload.ID == uuid.Nil {
		payload.ID = id
	} else if payload.ID != id {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("sale id in path does not match id in body"))
		return
	}
	input := types.UpdateSaleInput{SaleInput: saleshttpmapper.ToSaleInput(payload)}
	updated, err := api.service.UpdateSale(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromDomainSale(updated))
}

// Get /api/sales/:saleId
// Find sale by ID
func (api *SalesAPI) GetSaleByID(c *gin.Context) {
	id, ok := api.parseSaleID(c)
	if !ok {
		return
	}
	sale, err := api.service.GetSale(c.Request.Context(), types.SaleIdentifier{ID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromDomainSale(sale))
}

// Get /api/sales
// List sales with pagination, ordering, and field filters
func (api *SalesAPI) ListSales(c *gin.Context) {
	input, err := api.parseListQuery(c)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	result, err := api.service.ListSales(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromSaleList(result, input.Page, input.PageSize))
}

// Delete /api/sales/:saleId
// Deletes a sale aggregate with its items
func (api *SalesAPI) DeleteSale(c *gin.Context) {
	id, ok := api.parseSaleID(c)
	if !ok {
		return
	}
	if err := api.service.DeleteSale(c.Request.Context(), types.SaleIdentifier{ID: id}); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (api *SalesAPI) parseSaleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("saleId must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (api *SalesAPI) parseListQuery(c *gin.Context) (types.ListSalesInput, error) {
	input := types.ListSalesInput{
		Page:     defaultPage,
		PageSize: defaultPageSize,
		Filters:  map[string]string{},
	}
	for key, values := range c.Request.URL.Query() {
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		switch key {
		case queryKeyPage:
			page, err := strconv.Atoi(value)
			if err != nil || page <= 0 {
				return types.ListSalesInput{}, errors.New("_page must be a positive integer")
			}
			input.Page = page
		case queryKeySize:
			size, err := strconv.Atoi(value)
			if err != nil || size <= 0 {
				return types.ListSalesInput{}, errors.New("_size must be a positive integer")
			}
			input.PageSize = size
		case queryKeyOrder:
			input.Order = value
		default:
			input.Filters[key] = value
		}
	}
	return input, nil
}

func salesErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	var validationFailed *salesapp.ValidationFailedError
	if errors.As(err, &validationFailed) {
		fieldErrors := make([]apierrors.FieldError, 0, len(validationFailed.Errors))
		for _, fieldError := range validationFailed.Errors {
			fieldErrors = append(fieldErrors, apierrors.FieldError{Field: fieldError.Field, Message: fieldError.Message})
		}
		return apierrors.NewValidationProblem(fieldErrors), true
	}
	var unknownField *criteria.UnknownFieldError
	if errors.As(err, &unknownField) {
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	var invalidValue *criteria.InvalidValueError
	if errors.As(err, &invalidValue) {
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	switch {
	case errors.Is(err, salesports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrItemUnknown):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrItemSaleMismatch):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, salesports.ErrDuplicateSaleNumber):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
