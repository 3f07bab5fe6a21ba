// Package envelope decodes API response bodies.
//
// The API wraps payloads as {"status", "data", "message"}, but some endpoints
// answer with the payload at the top level. Every lookup prefers data.<key>,
// falls back to <key>, and finally to the zero value of the requested type.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Envelope is a response body together with its envelope fields.
type Envelope struct {
	Status  string
	Message string
	Body    []byte
}

// Parse wraps body. Bodies that are not JSON objects are kept as-is and
// resolve every lookup to its default.
func Parse(body []byte) *Envelope {
	e := &Envelope{Body: body}
	if gjson.ValidBytes(body) {
		e.Status = gjson.GetBytes(body, "status").String()
		e.Message = gjson.GetBytes(body, "message").String()
	}
	return e
}

// ErrorMessage returns the human readable message of an error body.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if m := gjson.GetBytes(body, "message"); m.Type == gjson.String && m.Str != "" {
		return m.Str
	}
	if m := gjson.GetBytes(body, "error"); m.Type == gjson.String {
		return m.Str
	}
	return ""
}

// Raw returns the raw JSON of the resolved value, or nil when absent.
func (e *Envelope) Raw(key string) []byte {
	r := e.resolve(key)
	if !r.Exists() {
		return nil
	}
	return []byte(r.Raw)
}

// Has reports whether key resolves to a non-null value.
func (e *Envelope) Has(key string) bool {
	return e.resolve(key).Exists()
}

// resolve picks data.<key>, then <key>. An empty key means data, then the whole body.
func (e *Envelope) resolve(key string) gjson.Result {
	if e == nil || !gjson.ValidBytes(e.Body) {
		return gjson.Result{}
	}

	nested, flat := "data."+key, key
	if key == "" {
		nested, flat = "data", "@this"
	}

	if r := gjson.GetBytes(e.Body, nested); present(r) {
		return r
	}
	if r := gjson.GetBytes(e.Body, flat); present(r) {
		return r
	}
	return gjson.Result{}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// List decodes the collection under key. A missing or non-array value yields
// an empty, non-nil slice.
func List[T any](e *Envelope, key string) ([]T, error) {
	r := e.resolve(key)
	if !r.IsArray() {
		return []T{}, nil
	}

	out := make([]T, 0, len(r.Array()))
	if err := json.Unmarshal([]byte(r.Raw), &out); err != nil {
		return []T{}, fmt.Errorf("decode %s: %w", describe(key), err)
	}
	return out, nil
}

// Object decodes the object under key. A missing or non-object value yields
// the zero value of T.
func Object[T any](e *Envelope, key string) (T, error) {
	var out T
	r := e.resolve(key)
	if !r.IsObject() {
		return out, nil
	}
	if err := json.Unmarshal([]byte(r.Raw), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", describe(key), err)
	}
	return out, nil
}

// String returns the string under key, or "".
func String(e *Envelope, key string) string {
	return e.resolve(key).String()
}

func describe(key string) string {
	if key == "" {
		return "data"
	}
	return key
}
