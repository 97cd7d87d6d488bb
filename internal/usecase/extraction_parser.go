package usecase

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
)

var amountPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// extractionPayload mirrors the JSON object the prompt asks for.
type extractionPayload struct {
	Amount        json.RawMessage `json:"amount"`
	TransactionID json.RawMessage `json:"transaction_id"`
	ReferenceCode json.RawMessage `json:"reference_code"`
	Datetime      json.RawMessage `json:"datetime"`
	Sender        json.RawMessage `json:"sender"`
	Receiver      json.RawMessage `json:"receiver"`
}

// ParseExtraction turns raw model output into validated fields. It fails with
// an EXTRACTION_FORMAT error when no balanced JSON object can be decoded.
func ParseExtraction(raw string) (*entity.ExtractedFields, error) {
	payload, ok := firstJSONObject(raw)
	if !ok {
		return nil, domainErrors.NewExtractionFormatError("no JSON object in model response", raw, nil)
	}

	return &entity.ExtractedFields{
		Amount:        parseAmount(payload.Amount),
		TransactionID: parseText(payload.TransactionID),
		ReferenceCode: NormalizeReferenceCode(parseText(payload.ReferenceCode)),
		Timestamp:     parseText(payload.Datetime),
		Sender:        parseText(payload.Sender),
		Receiver:      parseText(payload.Receiver),
	}, nil
}

// firstJSONObject returns the first balanced {...} substring that decodes.
func firstJSONObject(s string) (*extractionPayload, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := matchingBrace(s, start); end > start {
			var payload extractionPayload
			if err := json.Unmarshal([]byte(s[start:end+1]), &payload); err == nil {
				return &payload, true
			}
		}

		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
// Braces inside JSON strings are ignored.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// NormalizeReferenceCode upper-cases and strips everything outside [A-Z0-9].
// A result that is not exactly 24 characters is discarded.
func NormalizeReferenceCode(code *string) *string {
	if code == nil {
		return nil
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(*code) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if len(cleaned) != ReferenceLength {
		return nil
	}
	return &cleaned
}

// parseText accepts JSON strings and numbers. Anything else is absent.
func parseText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "null") {
		return nil
	}
	return &text
}

// parseAmount accepts a JSON number or a display string such as "GYD 3,762.00".
func parseAmount(raw json.RawMessage) *decimal.Decimal {
	text := parseText(raw)
	if text == nil {
		return nil
	}

	match := amountPattern.FindString(strings.ReplaceAll(*text, ",", ""))
	if match == "" {
		return nil
	}

	amount, err := decimal.NewFromString(match)
	if err != nil {
		return nil
	}
	return &amount
}
