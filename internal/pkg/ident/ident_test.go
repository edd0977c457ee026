package ident

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^sess_[0-9a-f]{12}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, NewSessionID())
	}
}

func TestNewJobIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^job_[0-9a-f]{12}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, NewJobID())
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewSessionID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
