// Package entity defines the request and response shapes of the HTTP API and
// the explicit validation run on inbound payloads.
package entity

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	msgNotBlank = "must not be blank"
	msgEmail    = "must be a well-formed email address"
)

var validate = newValidator()

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// check runs the validate tags of obj and returns one message per failing field.
func check(obj any) map[string]string {
	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if err := validate.Struct(obj); errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return msgNotBlank
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return fmt.Sprintf("size must be between 0 and %s", fe.Param())
	case "email":
		return msgEmail
	default:
		return "is invalid"
	}
}

// PlayerRequest is the payload of add and update. Nil stats are absent.
type PlayerRequest struct {
	PlayerName    string   `json:"playerName" validate:"notblank"`
	Team          string   `json:"team" validate:"notblank"`
	Age           int      `json:"age" validate:"gt=0"`
	Min           *float64 `json:"min"`
	Pts           *float64 `json:"pts"`
	FgPercent     *float64 `json:"fgPercent"`
	ThreePPercent *float64 `json:"threePPercent"`
	FtPercent     *float64 `json:"ftPercent"`
	Dreb          *float64 `json:"dreb"`
	Reb           *float64 `json:"reb"`
	Ast           *float64 `json:"ast"`
	Stl           *float64 `json:"stl"`
	Blk           *float64 `json:"blk"`
}

// Validate returns a field name to message map; empty when the payload is valid.
func (r *PlayerRequest) Validate() map[string]string {
	return check(r)
}

type PlayerResponse struct {
	Id            int64    `json:"id"`
	PlayerName    string   `json:"playerName"`
	Team          string   `json:"team"`
	Age           int      `json:"age"`
	Min           *float64 `json:"min"`
	Pts           *float64 `json:"pts"`
	FgPercent     *float64 `json:"fgPercent"`
	ThreePPercent *float64 `json:"threePPercent"`
	FtPercent     *float64 `json:"ftPercent"`
	Dreb          *float64 `json:"dreb"`
	Reb           *float64 `json:"reb"`
	Ast           *float64 `json:"ast"`
	Stl           *float64 `json:"stl"`
	Blk           *float64 `json:"blk"`
}

// Page is one slice of an ordered result set. Number is zero-based.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage fills in the derived metadata for content taken from page number of size.
func NewPage[T any](content []T, number, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 && total > 0 {
		totalPages = int((total-1)/int64(size) + 1)
	}
	return Page[T]{
		Content:          content,
		Number:           number,
		Size:             size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            number == 0,
		Last:             number >= totalPages-1,
		Empty:            len(content) == 0,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// NewErrorResponse builds the body for status with the standard reason phrase as label.
func NewErrorResponse(status int, message, path string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      path,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest limits are counted in characters, not bytes.
type SignupRequest struct {
	Username string   `json:"username" validate:"notblank,max=20"`
	Email    string   `json:"email" validate:"notblank,max=50,email"`
	Password string   `json:"password" validate:"notblank,max=120"`
	Role     []string `json:"role"`
}

func (r *SignupRequest) Validate() map[string]string {
	return check(r)
}

// UserInfoResponse describes the signed-in user. Token is only set by sign in.
type UserInfoResponse struct {
	Id       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token,omitempty"`
}
