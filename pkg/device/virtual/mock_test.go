package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMockCountsSends(t *testing.T) {
	m := Mock(zap.NewNop())

	assert.NoError(t, m.Send([]byte{1, 2}))
	assert.NoError(t, m.Send([]byte{3}))
	assert.Equal(t, int64(2), m.Sent())
	assert.NoError(t, m.Close())
}
