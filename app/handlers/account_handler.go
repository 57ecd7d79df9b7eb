package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ameyapb/user-search-backend/app/dto"
	businessflow "github.com/ameyapb/user-search-backend/business_flow"
	"github.com/ameyapb/user-search-backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AccountHandlerInterface defines the contract for account handlers
type AccountHandlerInterface interface {
	ListAccounts(c fiber.Ctx) error
	GetAccount(c fiber.Ctx) error
	DeleteAccount(c fiber.Ctx) error

	CreateProvider(c fiber.Ctx) error
	GetProvider(c fiber.Ctx) error
	UpdateProvider(c fiber.Ctx) error
	DeleteProvider(c fiber.Ctx) error

	CreateConsumer(c fiber.Ctx) error
	GetConsumer(c fiber.Ctx) error
	UpdateConsumer(c fiber.Ctx) error
	DeleteConsumer(c fiber.Ctx) error

	AddServiceHistory(c fiber.Ctx) error
}

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	flow      businessflow.AccountFlow
	validator *validator.Validate
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(flow businessflow.AccountFlow) *AccountHandler {
	return &AccountHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AccountHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AccountHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListAccounts lists accounts with optional type and tag filters
// @Summary List accounts
// @Description List all accounts, optionally filtered by account_type and tags (OR semantics)
// @Tags Accounts
// @Produce json
// @Param account_type query string false "Account type code"
// @Param tags query []string false "Tags to match (any overlap)"
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Accounts retrieved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts [get]
func (h *AccountHandler) ListAccounts(c fiber.Ctx) error {
	req := dto.ListAccountsRequest{
		AccountType: c.Query("account_type"),
		Tags:        queryValues(c, "tags"),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts")
	defer cancel()

	res, err := h.flow.ListAccounts(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to list accounts", "LIST_ACCOUNTS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Accounts)
}

// GetAccount retrieves any account by id
// @Summary Get account
// @Description Retrieve an account of any variant by its id
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Account found"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/:id")
	defer cancel()

	res, err := h.flow.GetAccount(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to retrieve account", "GET_ACCOUNT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// DeleteAccount deletes any account by id
// @Summary Delete account
// @Description Delete an account of any variant; the variant record is removed with it
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse "Account deleted"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/:id")
	defer cancel()

	res, err := h.flow.DeleteAccount(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to delete account", "DELETE_ACCOUNT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{"id": res.ID})
}

// CreateProvider creates a new service provider
// @Summary Create service provider
// @Description Create a provider-typed account with its provider record
// @Tags Providers
// @Accept json
// @Produce json
// @Param request body dto.CreateProviderRequest true "Provider creation data"
// @Success 201 {object} dto.APIResponse{data=dto.AccountDTO} "Provider created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/providers [post]
func (h *AccountHandler) CreateProvider(c fiber.Ctx) error {
	var req dto.CreateProviderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/providers")
	defer cancel()

	res, err := h.flow.CreateProvider(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create ServiceProvider", "CREATE_PROVIDER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res.Account)
}

// GetProvider retrieves a provider by id
// @Summary Get service provider
// @Description Retrieve a provider-typed account; consumer ids are rejected
// @Tags Providers
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Provider found"
// @Failure 400 {object} dto.APIResponse "Account is not a provider"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/providers/{id} [get]
func (h *AccountHandler) GetProvider(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/providers/:id")
	defer cancel()

	res, err := h.flow.GetProvider(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to retrieve ServiceProvider", "GET_PROVIDER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// UpdateProvider partially updates a provider
// @Summary Update service provider
// @Description Update the provided fields of a provider-typed account; absent fields are untouched
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body dto.UpdateProviderRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Provider updated"
// @Failure 400 {object} dto.APIResponse "Validation error or wrong variant"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/providers/{id} [put]
func (h *AccountHandler) UpdateProvider(c fiber.Ctx) error {
	var req dto.UpdateProviderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/providers/:id")
	defer cancel()

	res, err := h.flow.UpdateProvider(ctx, c.Params("id"), &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update ServiceProvider", "UPDATE_PROVIDER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// DeleteProvider deletes a provider by id
// @Summary Delete service provider
// @Description Delete a provider-typed account; consumer ids are rejected
// @Tags Providers
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse "Provider deleted"
// @Failure 400 {object} dto.APIResponse "Account is not a provider"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/providers/{id} [delete]
func (h *AccountHandler) DeleteProvider(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/providers/:id")
	defer cancel()

	res, err := h.flow.DeleteProvider(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to delete ServiceProvider", "DELETE_PROVIDER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{"id": res.ID})
}

// CreateConsumer creates a new service consumer
// @Summary Create service consumer
// @Description Create a consumer-typed account with its consumer record
// @Tags Consumers
// @Accept json
// @Produce json
// @Param request body dto.CreateConsumerRequest true "Consumer creation data"
// @Success 201 {object} dto.APIResponse{data=dto.AccountDTO} "Consumer created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/consumers [post]
func (h *AccountHandler) CreateConsumer(c fiber.Ctx) error {
	var req dto.CreateConsumerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/consumers")
	defer cancel()

	res, err := h.flow.CreateConsumer(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create ServiceConsumer", "CREATE_CONSUMER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res.Account)
}

// GetConsumer retrieves a consumer by id
// @Summary Get service consumer
// @Description Retrieve a consumer-typed account; provider ids are rejected
// @Tags Consumers
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Consumer found"
// @Failure 400 {object} dto.APIResponse "Account is not a consumer"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/consumers/{id} [get]
func (h *AccountHandler) GetConsumer(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/consumers/:id")
	defer cancel()

	res, err := h.flow.GetConsumer(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to retrieve ServiceConsumer", "GET_CONSUMER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// UpdateConsumer partially updates a consumer
// @Summary Update service consumer
// @Description Update the provided fields of a consumer-typed account; absent fields are untouched
// @Tags Consumers
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body dto.UpdateConsumerRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Consumer updated"
// @Failure 400 {object} dto.APIResponse "Validation error or wrong variant"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/consumers/{id} [put]
func (h *AccountHandler) UpdateConsumer(c fiber.Ctx) error {
	var req dto.UpdateConsumerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/consumers/:id")
	defer cancel()

	res, err := h.flow.UpdateConsumer(ctx, c.Params("id"), &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update ServiceConsumer", "UPDATE_CONSUMER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// DeleteConsumer deletes a consumer by id
// @Summary Delete service consumer
// @Description Delete a consumer-typed account; provider ids are rejected
// @Tags Consumers
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse "Consumer deleted"
// @Failure 400 {object} dto.APIResponse "Account is not a consumer"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/consumers/{id} [delete]
func (h *AccountHandler) DeleteConsumer(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/consumers/:id")
	defer cancel()

	res, err := h.flow.DeleteConsumer(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to delete ServiceConsumer", "DELETE_CONSUMER_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{"id": res.ID})
}

// AddServiceHistory appends one service record to a consumer's history
// @Summary Add service to history
// @Description Append a single service entry to a consumer's history with a server-assigned added_at
// @Tags Consumers
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body object true "Service entry payload"
// @Success 200 {object} dto.APIResponse{data=dto.AccountDTO} "Service appended"
// @Failure 400 {object} dto.APIResponse "Empty payload or wrong variant"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/accounts/consumers/{id}/service-history [post]
func (h *AccountHandler) AddServiceHistory(c fiber.Ctx) error {
	var entry map[string]any
	if err := c.Bind().JSON(&entry); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/accounts/consumers/:id/service-history")
	defer cancel()

	res, err := h.flow.AddServiceHistory(ctx, c.Params("id"), entry)
	if err != nil {
		return h.flowError(c, err, "Failed to add service to history", "ADD_SERVICE_HISTORY_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Account)
}

// validationFailed renders request-shape validation errors with readable
// per-field messages
func (h *AccountHandler) validationFailed(c fiber.Ctx, err error) error {
	var validationErrors []string
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fieldErr := range fieldErrors {
			validationErrors = append(validationErrors, getValidationErrorMessage(fieldErr))
		}
	}
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
}

// flowError maps business errors onto the HTTP taxonomy: validation and
// type mismatch 400, not-found 404, everything else 500
func (h *AccountHandler) flowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	var businessErr *businessflow.BusinessError
	if errors.As(err, &businessErr) {
		switch businessErr.Code {
		case businessflow.CodeAccountNotFound:
			return h.ErrorResponse(c, fiber.StatusNotFound, businessErr.Message, businessErr.Code, nil)
		case businessflow.CodeAccountTypeMismatch, businessflow.CodeValidationError:
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
		}
	}

	log.Println(fallbackMessage, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

// createRequestContext builds the request-scoped context; callers must
// defer the cancel func so the timeout timer is released per request
func (h *AccountHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return newRequestContext(c.Get("X-Request-ID"), c.Get("User-Agent"), c.IP(), endpoint, 30*time.Second)
}

func newRequestContext(requestID, userAgent, ip, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID)
	ctx = context.WithValue(ctx, utils.UserAgentKey, userAgent)
	ctx = context.WithValue(ctx, utils.IPAddressKey, ip)
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

// queryValues returns all values of a repeated query parameter
func queryValues(c fiber.Ctx, key string) []string {
	var values []string
	c.RequestCtx().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) == key && len(v) > 0 {
			values = append(values, string(v))
		}
	})
	return values
}
