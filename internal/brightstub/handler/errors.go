package handler

import (
	"net/http"

	"github.com/kiosk404/brightchat/pkg/errorx"
)

// Brightstub handler error codes.
// Code format: 3XXYYZ
//   - 3:  module prefix (brightstub handler)
//   - XX: resource group (00=common, 01=agent, 02=chat)
//   - YY: sequential error number

const (
	// Common request errors (300xxx).
	ErrBind       = 300001
	ErrValidation = 300002

	// Agent errors (3001xx).
	ErrAgentNotFound = 300101

	// Chat errors (3002xx).
	ErrStreamUnsupported = 300201
	ErrScenarioRender    = 300202
)

func init() {
	errorx.MustRegister(errorx.NewCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(errorx.NewCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	errorx.MustRegister(errorx.NewCoder(ErrAgentNotFound, http.StatusNotFound, "Agent not found"))

	errorx.MustRegister(errorx.NewCoder(ErrStreamUnsupported, http.StatusInternalServerError, "Streaming is not supported by the response writer"))
	errorx.MustRegister(errorx.NewCoder(ErrScenarioRender, http.StatusInternalServerError, "Scenario could not be rendered"))
}
