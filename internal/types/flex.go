// flex.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Form fields arrive as strings, JSON bodies as native values. The Flex
// types accept either so a submission is decoded by one path regardless of
// its content type.

// unquote returns the string content of a JSON string literal.
func unquote(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || string(data) == "null"
}

// FlexList is a slice that can be unmarshaled from a single JSON object, a JSON
// array, or a string holding either.
type FlexList[T any] []T

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if s, ok := unquote(data); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		data = []byte(s)
	}
	data = bytes.TrimSpace(data)

	// If it starts with '[', treat it as a normal array
	if data[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = FlexList[T](slice)
		return nil
	}

	// Otherwise, try to unmarshal as a single item and wrap it in a slice
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}

// Slice converts FlexList[T] back to []T.
func (f FlexList[T]) Slice() []T {
	return []T(f)
}

// FlexJSON holds a structured value sent either inline or as a JSON encoded string.
// A string that does not parse leaves the zero value.
type FlexJSON[T any] struct {
	Value T
	Set   bool
}

func (f *FlexJSON[T]) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if s, ok := unquote(data); ok {
		var v T
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil
		}
		f.Value, f.Set = v, true
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value, f.Set = v, true
	return nil
}

func (f FlexJSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// FlexInt is an optional integer from a JSON number or numeric string.
// An empty string counts as absent.
type FlexInt struct {
	Value int
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	raw := string(bytes.TrimSpace(data))
	if s, ok := unquote(data); ok {
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("FlexInt: invalid number %q", raw)
	}
	f.Value, f.Set = int(n), true
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil when the value was absent.
func (f FlexInt) Ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// FlexFloat is an optional float from a JSON number or numeric string.
type FlexFloat struct {
	Value float64
	Set   bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	raw := string(bytes.TrimSpace(data))
	if s, ok := unquote(data); ok {
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("FlexFloat: invalid number %q", raw)
	}
	f.Value, f.Set = n, true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f FlexFloat) Ptr() *float64 {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// FlexBool is a boolean decoded with Truthy semantics.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("FlexBool: %w", err)
	}
	*f = FlexBool(Truthy(v))
	return nil
}

func (f FlexBool) Bool() bool {
	return bool(f)
}

// Truthy reports whether a decoded JSON value counts as an enabled flag:
// true, any non-zero number, or one of "true", "1", "yes", "on".
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true
		}
	}
	return false
}
