package ident

import (
	"strings"

	"github.com/google/uuid"
)

const randomLen = 12

// NewSessionID returns an identifier like "sess_3fa85f64cafe".
func NewSessionID() string { return "sess_" + randomHex(randomLen) }

// NewJobID returns an identifier like "job_9b1deb4d3b7d".
func NewJobID() string { return "job_" + randomHex(randomLen) }

func randomHex(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}
