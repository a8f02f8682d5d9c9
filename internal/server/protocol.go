// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/traylinx/addressLocal/internal/constant"
)

// Method names accepted on the wire.
const (
	MethodIdentifyAddresses = "identify_addresses"
	MethodListProviders     = "list_providers"
	MethodListModels        = "list_models"
	MethodPing              = "ping"
)

// NoContentNote is reported inside the result when the input yielded nothing to analyze.
const NoContentNote = "No content found or unable to read input"

// Response is one output line. Exactly one of Result or Error is set.
type Response struct {
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   int             `json:"code,omitempty"`
	ID     json.RawMessage `json:"id,omitempty"`
}

// Error is a protocol-level failure with a fixed code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func errParse() *Error {
	return &Error{Code: constant.CodeParseError, Message: "Parse error"}
}

func errMethodNotFound(method string) *Error {
	return &Error{Code: constant.CodeMethodNotFound, Message: fmt.Sprintf("Method '%s' not found", method)}
}

func errInvalidParams(format string, args ...any) *Error {
	return &Error{Code: constant.CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func errInternal(msg string) *Error {
	return &Error{Code: constant.CodeInternalError, Message: "Internal error: " + msg}
}

func errorResponse(e *Error) Response {
	return Response{Error: e.Message, Code: e.Code}
}

type identifyParams struct {
	Input    string `json:"input"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type listModelsParams struct {
	Provider string `json:"provider"`
}

// IdentifyResult is the identify_addresses payload.
type IdentifyResult struct {
	InputType string   `json:"input_type"`
	Provider  string   `json:"provider"`
	Model     *string  `json:"model"`
	Addresses []string `json:"addresses"`
	Count     int      `json:"count"`
	Error     string   `json:"error,omitempty"`
}

// ProvidersResult is the list_providers payload.
type ProvidersResult struct {
	AvailableProviders []string `json:"available_providers"`
	TotalCount         int      `json:"total_count"`
}

// ModelsResult is the list_models payload for a single provider.
type ModelsResult struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// decodeParams unmarshals raw params into v. Absent or null params leave v zero.
func decodeParams(raw []byte, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidParams("Invalid params: %v", err)
	}
	return nil
}
