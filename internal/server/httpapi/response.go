package httpapi

import "github.com/labstack/echo/v4"

// APIError is the body of every 4xx and 5xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func sendAPIError(c echo.Context, httpStatus int, code, message string, details any) error {
	return c.JSON(httpStatus, APIError{Code: code, Message: message, Details: details})
}
