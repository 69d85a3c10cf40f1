package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "demo-123")
	assert.Equal(t, "demo-123", CorrelationID(ctx))
}

func TestCorrelationIDMissing(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}
