package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys populated by the authentication middleware.
const (
	contextAccountID = "account_id"
	contextRole      = "role"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes err as a JSON error response. Errors carrying their own HTTP
// status keep it; everything else is treated as a server error.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}

// AccountID returns the authenticated account identifier set by the auth
// middleware. The second return is false when the request is unauthenticated.
func AccountID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(contextAccountID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// AccountRole returns the role of the authenticated account, if any.
func AccountRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(contextRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
