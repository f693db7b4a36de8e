package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPII(t *testing.T) {
	in := map[string]interface{}{
		"name":         "Jane Doe",
		"passwordHash": "$2a$14$abc",
		"iban":         "DE89370400440532013000",
	}

	out := RedactPII(in)

	assert.Equal(t, "Jane Doe", out["name"])
	assert.Equal(t, "[REDACTED]", out["passwordHash"])
	assert.Equal(t, "[REDACTED]", out["iban"])

	// Input map stays untouched.
	assert.Equal(t, "$2a$14$abc", in["passwordHash"])
}

func TestGenerateRandomPassword(t *testing.T) {
	p := GenerateRandomPassword(16)
	assert.Len(t, p, 16)
	assert.NotEqual(t, p, GenerateRandomPassword(16))
}
