package client

import (
	"net/http"

	"github.com/kiosk404/brightchat/pkg/errorx"
)

// Client error codes.
// Code format: 2XXYYZ
//   - 2:  module prefix (brightctl client)
//   - XX: resource group (00=transport, 01=agent)
//   - YY: sequential error number
//   - Z:  reserved (0)
const (
	// Transport errors (200xxx).
	ErrRequestBuild     = 200001
	ErrRequestSend      = 200002
	ErrUnexpectedStatus = 200003
	ErrResponseDecode   = 200004
	ErrStreamBroken     = 200005
	ErrUnauthorized     = 200006

	// Agent errors (2001xx).
	ErrAgentNotFound = 200101
	ErrAgentFailed   = 200102
)

func init() {
	errorx.MustRegister(errorx.NewCoder(ErrRequestBuild, http.StatusBadRequest, "Failed to build request"))
	errorx.MustRegister(errorx.NewCoder(ErrRequestSend, http.StatusBadGateway, "Failed to reach agent server"))
	errorx.MustRegister(errorx.NewCoder(ErrUnexpectedStatus, http.StatusBadGateway, "Agent server returned an error status"))
	errorx.MustRegister(errorx.NewCoder(ErrResponseDecode, http.StatusBadGateway, "Failed to decode agent server response"))
	errorx.MustRegister(errorx.NewCoder(ErrStreamBroken, http.StatusBadGateway, "Execution stream broke off"))
	errorx.MustRegister(errorx.NewCoder(ErrUnauthorized, http.StatusUnauthorized, "Agent server rejected the credentials"))

	errorx.MustRegister(errorx.NewCoder(ErrAgentNotFound, http.StatusNotFound, "Agent not found"))
	errorx.MustRegister(errorx.NewCoder(ErrAgentFailed, http.StatusOK, "Agent execution failed"))
}
