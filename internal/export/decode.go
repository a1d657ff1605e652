// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

var (
	// ErrUnrecognizedFormat is returned when a file is neither a String.raw
	// assignment nor plain JSON.
	ErrUnrecognizedFormat = errors.New("unrecognized export file format")

	// ErrSchema is returned when a decoded record has the wrong shape.
	ErrSchema = errors.New("export record failed schema validation")
)

// ParseError reports a malformed or unrecognized export file.
type ParseError struct {
	File   string
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("parse %s: record %s: %v", e.File, e.Record, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const rawMarker = "String.raw`"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractJSON returns the JSON payload of an export data file.
//
// Files written as `window.x = String.raw` + "`{...}`" yield the text between
// the first backtick pair after the marker. Otherwise content whose trimmed
// form starts with '{' is returned as is.
func ExtractJSON(content []byte) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	if i := bytes.Index(content, []byte(rawMarker)); i >= 0 {
		body := content[i+len(rawMarker):]
		if end := bytes.IndexByte(body, '`'); end > 0 {
			return body[:end], nil
		}
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return trimmed, nil
	}
	return nil, ErrUnrecognizedFormat
}

// decode extracts and unmarshals one file's payload into v.
func decode(name string, content []byte, v any) error {
	payload, err := ExtractJSON(content)
	if err != nil {
		return &ParseError{File: name, Err: err}
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &ParseError{File: name, Err: err}
	}
	return nil
}

// Count is a non-negative counter from the export. It accepts JSON integers,
// floats with an integral value and numeric strings, and keeps the full
// 64-bit range.
type Count int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*c = Count(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return fmt.Errorf("invalid count %s", string(data))
	}
	*c = Count(int64(f))
	return nil
}

// Int64 returns a pointer copy of c, or nil when c is nil.
func (c *Count) Int64() *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}

// Text is a free-form scalar that may be written as a string or a number.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if raw[0] == '{' || raw[0] == '[' {
		return fmt.Errorf("invalid text value %s", string(raw))
	}
	*t = Text(raw)
	return nil
}

// Ptr returns a pointer copy of t, or nil when t is nil or empty.
func (t *Text) Ptr() *string {
	if t == nil || *t == "" {
		return nil
	}
	s := string(*t)
	return &s
}
