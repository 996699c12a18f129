// Package http exposes the dispatch operations over an echo HTTP surface.
// It coordinates between HTTP handlers and application use cases, mapping
// the error taxonomy onto status codes.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server implements the HTTP surface for the dispatch core.
type Server struct {
	acceptOrderHandler       commands.AcceptOrderCommandHandler
	rejectOrderHandler       commands.RejectOrderCommandHandler
	updateStatusHandler      commands.UpdateDeliveryStatusCommandHandler
	cancelOrderHandler       commands.CancelOrderCommandHandler
	generateOtpHandler       commands.GenerateOtpCommandHandler
	verifyOtpHandler         commands.VerifyOtpCommandHandler
	retryPendingHandler      commands.RetryPendingOrdersCommandHandler
	checkTimeoutsHandler     commands.CheckTimeoutsCommandHandler
	escalatedOrdersHandler   queries.GetEscalatedOrdersQueryHandler
	agentActiveOrdersHandler queries.GetAgentActiveOrdersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	acceptOrderHandler commands.AcceptOrderCommandHandler,
	rejectOrderHandler commands.RejectOrderCommandHandler,
	updateStatusHandler commands.UpdateDeliveryStatusCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	generateOtpHandler commands.GenerateOtpCommandHandler,
	verifyOtpHandler commands.VerifyOtpCommandHandler,
	retryPendingHandler commands.RetryPendingOrdersCommandHandler,
	checkTimeoutsHandler commands.CheckTimeoutsCommandHandler,
	escalatedOrdersHandler queries.GetEscalatedOrdersQueryHandler,
	agentActiveOrdersHandler queries.GetAgentActiveOrdersQueryHandler,
) *Server {
	return &Server{
		acceptOrderHandler:       acceptOrderHandler,
		rejectOrderHandler:       rejectOrderHandler,
		updateStatusHandler:      updateStatusHandler,
		cancelOrderHandler:       cancelOrderHandler,
		generateOtpHandler:       generateOtpHandler,
		verifyOtpHandler:         verifyOtpHandler,
		retryPendingHandler:      retryPendingHandler,
		checkTimeoutsHandler:     checkTimeoutsHandler,
		escalatedOrdersHandler:   escalatedOrdersHandler,
		agentActiveOrdersHandler: agentActiveOrdersHandler,
	}
}

// RegisterRoutes attaches the dispatch routes to an echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders/:orderID/accept", s.AcceptOrder)
	api.POST("/orders/:orderID/reject", s.RejectOrder)
	api.PATCH("/orders/:orderID/status", s.UpdateDeliveryStatus)
	api.POST("/orders/:orderID/cancel", s.CancelOrder)
	api.POST("/orders/:orderID/otp", s.GenerateOtp)
	api.POST("/orders/:orderID/otp/verify", s.VerifyOtp)
	api.POST("/dispatch/retry-pending", s.RetryPendingOrders)
	api.POST("/dispatch/check-timeouts", s.CheckTimeouts)
	api.GET("/orders/escalated", s.GetEscalatedOrders)
	api.GET("/agents/:agentID/orders/active", s.GetAgentActiveOrders)
}

// ErrorResponse is the error payload returned on failures.
type ErrorResponse struct {
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HasActiveOrder bool   `json:"hasActiveOrder,omitempty"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// AcceptOrder handles POST /api/v1/orders/:orderID/accept.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body struct {
		AgentID string `json:"agentId"`
	}
	if bindErr := ctx.Bind(&body); bindErr != nil {
		return badRequest(ctx, "Invalid request body")
	}

	agentID, err := kernel.UUIDFromString(body.AgentID)
	if err != nil {
		return badRequest(ctx, "Invalid agent id")
	}

	cmd, err := commands.NewAcceptOrderCommand(orderID, agentID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.acceptOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// RejectOrder handles POST /api/v1/orders/:orderID/reject.
func (s *Server) RejectOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body struct {
		AgentID string `json:"agentId"`
		Reason  string `json:"reason"`
	}
	if bindErr := ctx.Bind(&body); bindErr != nil {
		return badRequest(ctx, "Invalid request body")
	}

	agentID, err := kernel.UUIDFromString(body.AgentID)
	if err != nil {
		return badRequest(ctx, "Invalid agent id")
	}

	cmd, err := commands.NewRejectOrderCommand(orderID, agentID, body.Reason)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.rejectOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// UpdateDeliveryStatus handles PATCH /api/v1/orders/:orderID/status.
func (s *Server) UpdateDeliveryStatus(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body struct {
		AgentID string `json:"agentId"`
		Status  string `json:"status"`
	}
	if bindErr := ctx.Bind(&body); bindErr != nil {
		return badRequest(ctx, "Invalid request body")
	}

	agentID, err := kernel.UUIDFromString(body.AgentID)
	if err != nil {
		return badRequest(ctx, "Invalid agent id")
	}

	newStatus, err := order.StatusFromString(body.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status")
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(orderID, agentID, newStatus)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.updateStatusHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// CancelOrder handles POST /api/v1/orders/:orderID/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if bindErr := ctx.Bind(&body); bindErr != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, body.Reason)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// GenerateOtp handles POST /api/v1/orders/:orderID/otp.
func (s *Server) GenerateOtp(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewGenerateOtpCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	code, handleErr := s.generateOtpHandler.Handle(ctx.Request().Context(), cmd)
	if handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"otp": code})
}

// VerifyOtp handles POST /api/v1/orders/:orderID/otp/verify.
func (s *Server) VerifyOtp(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderID")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body struct {
		Code string `json:"code"`
	}
	if bindErr := ctx.Bind(&body); bindErr != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewVerifyOtpCommand(orderID, body.Code)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.verifyOtpHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// RetryPendingOrders handles POST /api/v1/dispatch/retry-pending.
// The cron job drives the same command; the endpoint exists for operators.
func (s *Server) RetryPendingOrders(ctx echo.Context) error {
	result, err := s.retryPendingHandler.Handle(
		ctx.Request().Context(), commands.NewRetryPendingOrdersCommand(),
	)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]int{
		"totalPending": result.TotalPending,
		"assigned":     result.Assigned,
		"skipped":      result.Skipped,
		"escalated":    result.Escalated,
	})
}

// CheckTimeouts handles POST /api/v1/dispatch/check-timeouts.
func (s *Server) CheckTimeouts(ctx echo.Context) error {
	result, err := s.checkTimeoutsHandler.Handle(
		ctx.Request().Context(), commands.NewCheckTimeoutsCommand(),
	)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]int{
		"timedOutOrders": result.TimedOutOrders,
		"reassigned":     result.ReassignedCount,
	})
}

// escalatedOrderView is the wire shape of one escalated order.
type escalatedOrderView struct {
	ID          string `json:"id"`
	SellerID    string `json:"sellerId"`
	Reason      string `json:"reason"`
	Attempts    int    `json:"attempts"`
	EscalatedAt string `json:"escalatedAt"`
}

// GetEscalatedOrders handles GET /api/v1/orders/escalated.
func (s *Server) GetEscalatedOrders(ctx echo.Context) error {
	rows, err := s.escalatedOrdersHandler.Handle(
		ctx.Request().Context(), queries.NewGetEscalatedOrdersQuery(),
	)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]escalatedOrderView, len(rows))
	for i, row := range rows {
		response[i] = escalatedOrderView{
			ID:          row.ID.String(),
			SellerID:    row.SellerID.String(),
			Reason:      row.Reason,
			Attempts:    row.Attempts,
			EscalatedAt: row.EscalatedAt.UTC().Format(time.RFC3339),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// activeOrderView is the wire shape of one order an agent is working.
type activeOrderView struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	DeliveryCharge  float64 `json:"deliveryCharge"`
	PickupAddress   string  `json:"pickupAddress"`
	DeliveryAddress string  `json:"deliveryAddress"`
	OtpVerified     bool    `json:"otpVerified"`
}

// GetAgentActiveOrders handles GET /api/v1/agents/:agentID/orders/active.
func (s *Server) GetAgentActiveOrders(ctx echo.Context) error {
	agentID, err := pathUUID(ctx, "agentID")
	if err != nil {
		return badRequest(ctx, "Invalid agent id")
	}

	query, err := queries.NewGetAgentActiveOrdersQuery(agentID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	rows, err := s.agentActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]activeOrderView, len(rows))
	for i, row := range rows {
		response[i] = activeOrderView{
			ID:              row.ID.String(),
			Status:          row.Status,
			DeliveryCharge:  row.DeliveryCharge,
			PickupAddress:   row.PickupAddress,
			DeliveryAddress: row.DeliveryAddress,
			OtpVerified:     row.OtpVerified,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// pathUUID parses a UUID path parameter.
func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param(name))
}

// badRequest writes a 400 with the given message.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps an application error onto the HTTP status taxonomy.
// The active-delivery conflict carries a flag so the agent app can surface
// the running delivery.
func writeError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, commands.ErrAgentHasActiveDelivery):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:           http.StatusConflict,
			Message:        err.Error(),
			HasActiveOrder: true,
		})
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, order.ErrOtpNotVerified):
		return ctx.JSON(http.StatusPreconditionFailed, ErrorResponse{
			Code:    http.StatusPreconditionFailed,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrPreconditionFailed):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
