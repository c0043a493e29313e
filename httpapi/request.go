/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	storeerrors "github.com/suparena/arraywriter/errors"
)

// Field names of a write request body. They are matched exactly, so
// "arrayofvalues" does not stand in for ArrayOfValues.
const (
	keyField    = "key"
	valuesField = "ArrayOfValues"
)

// writeResponse is returned for an accepted write when disclosure is on.
type writeResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Value is one submitted integer. It accepts JSON numbers without a
// fractional part that fit in 32 bits, so 3, 3.0 and 1e2 are values while
// "3", 3.5, null and 2147483648 are not.
type Value int32

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return fmt.Errorf("%s is not a number", s)
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		*v = Value(n)
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("%s is not a 32-bit integer", s)
	}
	*v = Value(f)
	return nil
}

// parseWriteRequest reads the whole body and returns the key and values.
// Any problem with the body is a MalformedRequestError.
func parseWriteRequest(body io.Reader) (string, []int32, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", nil, storeerrors.NewMalformedRequestError("failed to read body", err)
	}
	if len(raw) == 0 {
		return "", nil, storeerrors.NewMalformedRequestError("body is empty", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, storeerrors.NewMalformedRequestError("body is not a JSON object", err)
	}

	rawValues, ok := fields[valuesField]
	if !ok || isNull(rawValues) {
		return "", nil, storeerrors.NewMalformedRequestError(valuesField+" is missing", nil)
	}
	var parsed []Value
	if err := json.Unmarshal(rawValues, &parsed); err != nil {
		return "", nil, storeerrors.NewMalformedRequestError(valuesField+" is not an array of integers", err)
	}

	key, err := keyText(fields[keyField])
	if err != nil {
		return "", nil, err
	}

	values := make([]int32, len(parsed))
	for i, v := range parsed {
		values[i] = int32(v)
	}
	return key, values, nil
}

// keyText reads the request key as a string. An absent or null key is
// empty and numbers and booleans keep their JSON text; only objects and
// arrays have no string form.
func keyText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", storeerrors.NewMalformedRequestError("key is not a valid string", err)
		}
		return s, nil
	case '{', '[':
		return "", storeerrors.NewMalformedRequestError("key has no string form", nil)
	default:
		return string(raw), nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
