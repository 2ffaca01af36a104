package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCustomer(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
	}{
		{"meeting with stops at weekday", "schedule a meeting with john next tuesday at 4pm", "John", "meeting_with"},
		{"meeting with stops at on", "meeting with mary ann on friday", "Mary Ann", "meeting_with"},
		{"meeting with at end of text", "set up a meeting with bob", "Bob", "meeting_with"},
		{"customer is", "customer is alice", "Alice", "customer_is"},
		{"client is", "the client is jane doe for tomorrow", "Jane Doe", "client_is"},
		{"customer name is", "customer name is carlos", "Carlos", "customer_name_is"},
		{"change customer to", "change customer to bob", "Bob", "set_customer"},
		{"set the customer name as", "set the customer name as dana", "Dana", "set_customer"},
		{"filler stripped", "customer is is eve", "Eve", "customer_is"},
		{"stops at and", "customer is tom and schedule it", "Tom", "customer_is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractCustomer(Normalize(tt.text))
			m, ok := res.Get()
			require.True(t, ok, "expected a customer in %q", tt.text)
			assert.Equal(t, tt.want, m.Name)
			assert.Equal(t, tt.wantRule, m.Rule)
		})
	}
}

func TestExtractCustomerSpan(t *testing.T) {
	text := Normalize("Schedule a meeting with John Smith at 4pm")
	m, ok := ExtractCustomer(text).Get()
	require.True(t, ok)
	assert.Equal(t, "john smith", text[m.Start:m.End])
}

func TestExtractCustomerNone(t *testing.T) {
	for _, text := range []string{
		"schedule a meeting tomorrow at 3pm",
		"meeting with at 4pm",
		"yes",
		"",
	} {
		t.Run(text, func(t *testing.T) {
			res := ExtractCustomer(Normalize(text))
			assert.Equal(t, StatusUnresolved, res.Status)
		})
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Mary Ann", CleanName("  mary   ann "))
	assert.Equal(t, "Alice", CleanName("ALICE"))
}
