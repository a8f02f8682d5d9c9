// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package constant defines provider names, protocol error codes and content
// limits shared across the addressLocal server, ensuring consistent naming
// between the registry and the protocol boundary.
package constant

const (
	// OpenAI represents the OpenAI provider identifier.
	OpenAI = "openai"

	// Ollama represents the local Ollama provider identifier.
	Ollama = "ollama"

	// Auto asks the registry to pick the best available provider.
	Auto = "auto"

	// NoProvider is reported when automatic selection found nothing available.
	NoProvider = "none"
)

// Protocol error codes. These are fixed for client compatibility.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const (
	// NoAddressesSentinel is the exact reply a model gives when nothing was found.
	NoAddressesSentinel = "No addresses found"

	// TruncationMarker is appended to content cut at a length limit.
	TruncationMarker = "... [content truncated]"

	// StructuredTextLimit caps HTML, plain text, markdown and JSON content.
	StructuredTextLimit = 10000

	// GenericTextLimit caps content of unknown type and degraded HTML extraction.
	GenericTextLimit = 8000

	// RawFallbackLimit is the prefix returned when HTML processing blows up.
	RawFallbackLimit = 5000
)
