package utils

import (
	"time"

	"github.com/ddproperty/ddproperty-api/internal/query"
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends data in the standard success envelope
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// PagedResponse sends one page of results with its pagination meta
func PagedResponse(c *fiber.Ctx, data interface{}, meta query.Meta) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   data,
		"meta":   meta,
	})
}

// MessageResponse sends a success envelope carrying only a message
func MessageResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": message,
	})
}

// ErrorResponse sends the standard error envelope. stack is omitted when empty.
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType, stack string) error {
	body := fiber.Map{
		"status":     "error",
		"statusCode": status,
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"url":        c.OriginalURL(),
	}
	if errorType != "" {
		body["type"] = errorType
	}
	if stack != "" {
		body["stack"] = stack
	}
	return c.Status(status).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "not_found", "")
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status     string `json:"status" example:"error"`
	StatusCode int    `json:"statusCode" example:"404"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Timestamp  string `json:"timestamp"`
	URL        string `json:"url"`
	Stack      string `json:"stack,omitempty"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Status string      `json:"status" example:"success"`
	Data   interface{} `json:"data"`
}

// PagedResponseStruct defines the schema for paged list responses
type PagedResponseStruct struct {
	Status string      `json:"status" example:"success"`
	Data   interface{} `json:"data"`
	Meta   query.Meta  `json:"meta"`
}

// MessageResponseStruct defines the schema for message-only responses
type MessageResponseStruct struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}
