package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("returned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		strictOK bool
	}{
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusShipped, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.NoError(t, CheckTransition(tt.from, tt.to, false))
			if tt.strictOK {
				assert.NoError(t, CheckTransition(tt.from, tt.to, true))
			} else {
				assert.ErrorIs(t, CheckTransition(tt.from, tt.to, true), ErrInvalidTransition)
			}
		})
	}
}

func TestFilterMatches(t *testing.T) {
	o := Order{ID: "doc1", OrderNumber: "ORD2503070042", UserID: "u1", Status: StatusShipped}
	o.Billing.FullName = "Jane Doe"
	o.Billing.Email = "jane@example.com"

	assert.True(t, Filter{}.Matches(o))
	assert.True(t, Filter{Query: "jane"}.Matches(o))
	assert.True(t, Filter{Query: "0042"}.Matches(o))
	assert.False(t, Filter{Query: "bob"}.Matches(o))
	assert.True(t, Filter{Statuses: []Status{StatusPending, StatusShipped}}.Matches(o))
	assert.False(t, Filter{Statuses: []Status{StatusPending}}.Matches(o))
	assert.False(t, Filter{UserID: "u2"}.Matches(o))
}
