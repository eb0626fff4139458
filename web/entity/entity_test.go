package entity

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerRequestValidate(t *testing.T) {
	valid := PlayerRequest{PlayerName: "Alperen Sengun", Team: "HOU", Age: 22}
	assert.Empty(t, valid.Validate())

	invalid := PlayerRequest{PlayerName: "  ", Age: 0}
	errs := invalid.Validate()
	assert.Equal(t, map[string]string{
		"playerName": msgNotBlank,
		"team":       msgNotBlank,
		"age":        "must be greater than 0",
	}, errs)
}

func TestSignupRequestValidate(t *testing.T) {
	valid := SignupRequest{Username: "ersan", Email: "ersan@example.com", Password: "secret"}
	assert.Empty(t, valid.Validate())

	tests := []struct {
		name  string
		req   SignupRequest
		field string
	}{
		{"blank username", SignupRequest{Email: "a@b.co", Password: "p"}, "username"},
		{"long username", SignupRequest{Username: strings.Repeat("u", 21), Email: "a@b.co", Password: "p"}, "username"},
		{"bad email", SignupRequest{Username: "u", Email: "not-an-email", Password: "p"}, "email"},
		{"display name email", SignupRequest{Username: "u", Email: "Bob <bob@b.co>", Password: "p"}, "email"},
		{"long email", SignupRequest{Username: "u", Email: strings.Repeat("a", 45) + "@b.com", Password: "p"}, "email"},
		{"blank password", SignupRequest{Username: "u", Email: "a@b.co"}, "password"},
		{"long password", SignupRequest{Username: "u", Email: "a@b.co", Password: strings.Repeat("p", 121)}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestSignupRequestCountsCharacters(t *testing.T) {
	req := SignupRequest{
		Username: strings.Repeat("é", 20),
		Email:    "zoe@example.com",
		Password: strings.Repeat("ß", 120),
	}
	assert.Empty(t, req.Validate())

	req.Username = strings.Repeat("é", 21)
	assert.Equal(t, map[string]string{"username": "size must be between 0 and 20"}, req.Validate())
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 0, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.First)
	assert.False(t, p.Last)
	assert.Equal(t, 2, p.NumberOfElements)

	last := NewPage([]int{5}, 2, 2, 5)
	assert.True(t, last.Last)
	assert.False(t, last.First)

	empty := NewPage[int](nil, 3, 10, 0)
	assert.NotNil(t, empty.Content)
	assert.True(t, empty.Empty)
	assert.True(t, empty.Last)
	assert.Zero(t, empty.TotalPages)

	huge := NewPage[int](nil, 0, math.MaxInt, 3)
	assert.Equal(t, 1, huge.TotalPages)
	assert.True(t, huge.Last)

	far := NewPage[int](nil, math.MaxInt, 1, 3)
	assert.True(t, far.Last)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(404, "Player not found!", "/api/v1/delete/9")
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, "/api/v1/delete/9", resp.Path)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Nil(t, resp.ValidationErrors)
}
