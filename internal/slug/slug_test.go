package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMake_Basic tests slug generation for plain names
func TestMake_Basic(t *testing.T) {
	assert.Equal(t, "acme-corp", Make("Acme Corp"))
	assert.Equal(t, "senior-go-engineer", Make("Senior Go Engineer"))
}

// TestMake_SpecialCharacters tests that punctuation collapses into single hyphens
func TestMake_SpecialCharacters(t *testing.T) {
	assert.Equal(t, "c-developer", Make("C++ Developer"))
	assert.Equal(t, "backend-node-js", Make("Backend (Node.js)"))
	assert.Equal(t, "ai-ml-engineer", Make("AI / ML  Engineer!"))
}

// TestMake_TrimsHyphens tests leading/trailing separator handling
func TestMake_TrimsHyphens(t *testing.T) {
	assert.Equal(t, "findr", Make("  --findr--  "))
	assert.Equal(t, "", Make("!!!"))
	assert.Equal(t, "", Make(""))
}

// TestMake_PreservesDigits tests that digits survive
func TestMake_PreservesDigits(t *testing.T) {
	assert.Equal(t, "web3-engineer-l4", Make("Web3 Engineer L4"))
}

// TestForLink tests the combined company/job key
func TestForLink(t *testing.T) {
	assert.Equal(t, "acme-corp/senior-go-engineer", ForLink("Acme Corp", "Senior Go Engineer"))
}
