package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "workshop/internal/errors"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func ok(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, "ok", data)
}

func created(c echo.Context, message string, data interface{}) error {
	return respond(c, http.StatusCreated, message, data)
}

// bind decodes the request body and runs the struct validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("invalid %s", name)
	}
	return uint(id), nil
}

func queryID(c echo.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, apperrors.BadRequest("invalid %s", name)
	}
	v := uint(id)
	return &v, nil
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, apperrors.BadRequest("invalid %s", name)
	}
	return &t, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 as well as the shorter forms HTML date and
// datetime-local inputs send. Values without a zone are taken as UTC.
func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// OptionalID is an id field of a PATCH body that can also be cleared:
// absent leaves the value alone, null removes it, a number replaces it.
type OptionalID struct {
	Set   bool
	Value *uint
}

// UnmarshalJSON implements json.Unmarshaler. It is called for null too.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return apperrors.BadRequest("ids must be positive integers or null")
	}
	o.Value = &id
	return nil
}

// Cleared reports whether the request sent an explicit null.
func (o OptionalID) Cleared() bool {
	return o.Set && o.Value == nil
}

// Timestamp is a request time field that accepts several layouts.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return apperrors.BadRequest("time values must be strings")
	}
	parsed, err := parseTime(strings.TrimSpace(s))
	if err != nil {
		return apperrors.BadRequest("invalid time %q", s)
	}
	t.Time = parsed
	return nil
}

// Ptr returns the time or nil when t is nil.
func (t *Timestamp) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
