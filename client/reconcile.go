// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-dify/dify"
)

// parseResult reconciles a response body against the expected payload type.
// It tries, in order: the success payload T, the service error shape, and
// finally a synthesized unknown error carrying the raw body. The HTTP status
// line is deliberately not consulted; the body alone decides the outcome.
//
// Members the struct does not model are ignored, so additive server fields
// never fail a well-formed success body. Disambiguation from the error shape
// comes from required members instead: the body must carry every member of T
// not marked omitempty for the success decode to count, which an error body
// cannot satisfy.
func parseResult[T any](body []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(body, &result); err == nil && hasRequiredMembers(body, reflect.TypeOf(result)) {
		return &result, nil
	}
	return nil, parseError(body)
}

// parseError decodes body as the service error shape, falling back to a
// synthesized unknown error when any of code, message or status is absent.
func parseError(body []byte) *dify.ErrorResponse {
	var serviceErr dify.ErrorResponse
	if err := json.Unmarshal(body, &serviceErr); err == nil && hasRequiredMembers(body, reflect.TypeOf(serviceErr)) {
		return &serviceErr
	}
	return dify.NewUnknownError(string(body))
}

// hasRequiredMembers reports whether the top-level JSON object in body
// carries every required member of the struct type t.
func hasRequiredMembers(body []byte, t reflect.Type) bool {
	names := requiredMembers(t)
	if len(names) == 0 {
		return true
	}
	var members map[string]jsontext.Value
	if err := json.Unmarshal(body, &members); err != nil {
		return false
	}
	for _, name := range names {
		if _, ok := members[name]; !ok {
			return false
		}
	}
	return true
}

// requiredMembers lists the JSON member names a body must carry to satisfy
// the wire contract of t: the names of fields not marked omitempty or
// omitzero. Embedded structs contribute their own fields.
func requiredMembers(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			names = append(names, requiredMembers(field.Type)...)
			continue
		}
		tag, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		if strings.Contains(opts, "omitempty") || strings.Contains(opts, "omitzero") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// reconcile drains the response body and runs it through parseResult.
func reconcile[T any](resp *http.Response) (*T, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading response body", Err: err}
	}
	return parseResult[T](body)
}
