package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps err to the HTTP status of its error code.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), ErrorResponse{
		Code:    code.String(),
		Message: err.Error(),
	})
}

//Personal.AI order the ending
