package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/response"
	"github.com/eventful-services/services/validation-lambda/models"
	"github.com/eventful-services/services/validation-lambda/usecase"
)

type ValidationHandler struct {
	useCase *usecase.ValidationUseCase
	log     *logger.Logger
}

func NewValidationHandler(useCase *usecase.ValidationUseCase) *ValidationHandler {
	return &ValidationHandler{
		useCase: useCase,
		log:     logger.Default().With("component", "data-validation-handler"),
	}
}

// Handle - POST /api/data-validation?eventId=1&type=VIP
// Always answers 200 with either {errors} or the echoed call parameters,
// except for unreadable payloads and internal faults which answer 500.
func (h *ValidationHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	if request.HTTPMethod != http.MethodPost {
		return response.JSON(http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.WithContext(ctx).Error("Callback validation panicked: %v", r)
			resp, err = serverError()
		}
	}()

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		raw, decodeErr := base64.StdEncoding.DecodeString(request.Body)
		if decodeErr != nil {
			h.log.WithError(decodeErr).Error("Callback body is not valid base64")
			return serverError()
		}
		body = raw
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		h.log.WithContext(ctx).Error("Callback payload is not a JSON object")
		return serverError()
	}
	var payload models.CallbackPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		h.log.WithContext(ctx).WithError(err).Error("Failed to decode callback payload")
		return serverError()
	}

	result := h.useCase.Validate(ctx, payload, usecase.Selection(request.QueryStringParameters))
	if !result.Valid() {
		return response.JSON(http.StatusOK, models.ErrorResponse{Errors: result.Errors})
	}
	return response.JSON(http.StatusOK, result.Response)
}

func serverError() (events.APIGatewayProxyResponse, error) {
	return response.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Errors: models.ValidationErrors{"server": models.ServerErrorMessage},
	})
}
