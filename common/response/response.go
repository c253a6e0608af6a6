package response

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/eventful-services/common/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// SuccessResponse creates a success response
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// ============================================================
// API Gateway proxy responses
// ============================================================

// JSONHeaders are attached to every JSON response.
func JSONHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json;charset=UTF-8",
	}
}

// JSON serializes data as the response body. HTML characters are not
// escaped, so echoed strings keep their original text.
func JSON(statusCode int, data interface{}) (events.APIGatewayProxyResponse, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    JSONHeaders(),
			Body:       `{"message":"Failed to serialize response"}`,
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    JSONHeaders(),
		Body:       strings.TrimSuffix(buf.String(), "\n"),
	}, nil
}

// Message returns {"message": ...}.
func Message(statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return JSON(statusCode, map[string]string{"message": message})
}

// FromError maps any error onto an APIResponse using its AppError status.
func FromError(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.ToAppError(err)
	return JSON(appErr.HTTPStatus, ErrorBody(appErr, nil))
}

// ErrorBody builds the failure envelope, optionally carrying data alongside.
func ErrorBody(appErr *apperrors.AppError, data interface{}) APIResponse {
	body := APIResponse{
		Success: false,
		Data:    data,
		Error:   appErr.Message,
		Code:    string(appErr.Code),
	}
	if len(appErr.Fields) > 0 {
		body.Fields = appErr.Fields
	}
	return body
}

// HTML returns a rendered page.
func HTML(statusCode int, body string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Body:       body,
	}, nil
}

// Redirect returns a 303 See Other to location.
func Redirect(location string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusSeeOther,
		Headers:    map[string]string{"Location": location},
	}, nil
}

// Binary returns a base64 encoded body, as API Gateway expects for binary media.
func Binary(contentType, filename string, data []byte) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{"Content-Type": contentType}
	if filename != "" {
		headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	}
	return events.APIGatewayProxyResponse{
		StatusCode:      http.StatusOK,
		Headers:         headers,
		Body:            base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded: true,
	}, nil
}

// WithCookie appends a Set-Cookie header to resp.
func WithCookie(resp events.APIGatewayProxyResponse, cookie *http.Cookie) events.APIGatewayProxyResponse {
	if resp.MultiValueHeaders == nil {
		resp.MultiValueHeaders = make(map[string][]string)
	}
	resp.MultiValueHeaders["Set-Cookie"] = append(resp.MultiValueHeaders["Set-Cookie"], cookie.String())
	return resp
}
