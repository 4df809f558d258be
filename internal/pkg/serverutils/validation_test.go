package serverutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Query  string `validate:"required,min=1,max=20"`
	Rating int    `validate:"omitempty,min=1,max=5"`
}

func TestValidateRequestPasses(t *testing.T) {
	err := ValidateRequest(sampleRequest{Query: "hello", Rating: 3})
	assert.NoError(t, err)
}

func TestValidateRequestMissingField(t *testing.T) {
	err := ValidateRequest(sampleRequest{})
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed"))
	assert.Contains(t, err.Error(), "Query")
}

func TestValidateRequestCollectsAllFailures(t *testing.T) {
	err := ValidateRequest(sampleRequest{Query: strings.Repeat("x", 30), Rating: 9})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Query")
	assert.Contains(t, err.Error(), "Rating")
}
