package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequiredFiles_DedupKeepsOrder(t *testing.T) {
	got := NewRequiredFiles([]string{"b.log", "a.log", "b.log", "", "c.log", "a.log"})
	assert.Equal(t, RequiredFiles{"b.log", "a.log", "c.log"}, got)
}

func TestNewKeywords_CaseVariantsStayDistinct(t *testing.T) {
	got := NewKeywords([]string{"error", "Error", "ERROR", "error"})
	assert.Equal(t, Keywords{"error", "Error", "ERROR"}, got)
}
