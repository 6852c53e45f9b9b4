package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"monetra/internal/core"
)

// maxBodyBytes caps request bodies; every API payload is tiny.
const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseAmount converts a decimal amount string ("12.34" or "12,34") into
// Money, rejecting zero and negative values.
func parseAmount(raw string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(raw))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseBalance is parseAmount relaxed for entry create/edit, where an empty
// or zero amount is a legitimate balance.
func parseBalance(raw string) (core.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || isZeroDecimal(raw) {
		return core.Money{}, nil
	}
	return parseAmount(raw)
}

func isZeroDecimal(s string) bool {
	seenDigit := false
	seenSep := false
	for _, r := range s {
		switch {
		case r == '0':
			seenDigit = true
		case (r == '.' || r == ',') && !seenSep:
			seenSep = true
		default:
			return false
		}
	}
	return seenDigit
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// sectionPath splits the tail of /api/sections/ requests.
// Valid shapes: {section}, {section}/entries, {section}/entries/{id}.
func sectionPath(path string) (section core.SectionType, entryID string, hasEntries bool, err error) {
	tail := strings.TrimPrefix(path, "/api/sections/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		return "", "", false, errors.New("missing section")
	}

	parts := strings.Split(tail, "/")
	section, err = core.ParseSection(parts[0])
	if err != nil {
		return "", "", false, err
	}

	switch len(parts) {
	case 1:
		return section, "", false, nil
	case 2:
		if parts[1] != "entries" {
			return "", "", false, fmt.Errorf("unknown section resource %q", parts[1])
		}
		return section, "", true, nil
	case 3:
		if parts[1] != "entries" || parts[2] == "" {
			return "", "", false, fmt.Errorf("unknown section resource %q", parts[1])
		}
		return section, parts[2], true, nil
	default:
		return "", "", false, errors.New("unknown section path")
	}
}
