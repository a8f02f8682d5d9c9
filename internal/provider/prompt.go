// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"strings"

	"github.com/traylinx/addressLocal/internal/constant"
)

const (
	// Temperature keeps replies close to deterministic.
	Temperature = 0.1
	// MaxOutputTokens bounds the reply size.
	MaxOutputTokens = 500
	// SystemMessage is sent ahead of the prompt by chat-style backends.
	SystemMessage = "You are a precise address extraction agent."
)

const promptTemplate = `You are an expert address identification agent that works with multiple languages and formats.

TASK: Extract ALL physical addresses from the text, regardless of language or format.

INSTRUCTIONS:
1. Look for addresses in ANY language (English, Spanish, French, German, Chinese, Japanese, Arabic, Hindi, etc.)
2. Recognize various address formats:
   - US format: 123 Main St, City, State ZIP
   - UK format: 123 High Street, City, Postcode
   - European format: Street Name 123, ZIP City
   - Asian formats with building/district names
   - Any format with street numbers, names, and location identifiers

3. Include addresses that contain:
   - Street numbers and names
   - Building names with numbers
   - Apartment/Unit numbers
   - City, state/province, postal/zip codes
   - Country names (if present)

4. IMPORTANT: Return ONLY the addresses, one per line, without any additional text, numbering, or formatting.
5. If no addresses are found, return exactly: "` + constant.NoAddressesSentinel + `"

TEXT TO ANALYZE:
{{text}}

ADDRESSES:`

// Prompt builds the extraction prompt for text.
func Prompt(text string) string {
	return strings.Replace(promptTemplate, "{{text}}", text, 1)
}

// ParseAddresses turns a model reply into one address per non-blank line.
// An empty reply or the exact no-address sentinel yields an empty slice.
func ParseAddresses(raw string) []string {
	raw = strings.TrimSpace(raw)
	addresses := []string{}
	if raw == "" || raw == constant.NoAddressesSentinel {
		return addresses
	}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			addresses = append(addresses, line)
		}
	}
	return addresses
}
