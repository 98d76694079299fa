// Package core holds the HTTP response helpers shared by the gin handlers.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/pkg/errorx"
	"github.com/kiosk404/brightchat/pkg/logger"
)

// ErrResponse is the body written for a failed request.
type ErrResponse struct {
	// Code is the registered errorx code.
	Code int `json:"code"`

	// Message is the user-facing message of the code.
	Message string `json:"message"`

	// Reference points at documentation for the code, when there is one.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes err as an ErrResponse with the status of its code,
// or data as a 200 JSON body when err is nil.
func WriteResponse(c *gin.Context, err error, data any) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		logger.Error("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
