package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/response"
	"github.com/eventful-services/services/event-lambda/usecase"
)

// EventHandler serves the catalog API.
type EventHandler struct {
	useCase *usecase.EventUseCase
}

func NewEventHandler(useCase *usecase.EventUseCase) *EventHandler {
	return &EventHandler{useCase: useCase}
}

// HandleListEvents handles GET /api/events
func (h *EventHandler) HandleListEvents(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return response.JSON(http.StatusOK, response.SuccessResponse(h.useCase.ListEvents(ctx)))
}

// HandleGetEvent handles GET /api/events/{id}
func (h *EventHandler) HandleGetEvent(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	idStr := request.PathParameters["id"]
	if idStr == "" {
		idStr = request.QueryStringParameters["id"]
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return response.FromError(apperrors.InvalidInput("id", "Invalid event id"))
	}

	event, err := h.useCase.GetEvent(ctx, id)
	if err != nil {
		return response.FromError(err)
	}
	return response.JSON(http.StatusOK, response.SuccessResponse(event))
}

// Handle routes a Lambda proxy request to list or detail.
func (h *EventHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod != "" && request.HTTPMethod != http.MethodGet {
		return response.Message(http.StatusMethodNotAllowed, "Method not allowed")
	}
	if request.PathParameters["id"] != "" || request.QueryStringParameters["id"] != "" {
		return h.HandleGetEvent(ctx, request)
	}
	return h.HandleListEvents(ctx, request)
}
