package minicluster

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreePortIsBindable(t *testing.T) {
	t.Parallel()

	for range 3 {
		port, err := FreePort()
		require.NoError(t, err)
		assert.Greater(t, port, 0)
		assert.LessOrEqual(t, port, 65535)

		// Free at allocation time means binding right away succeeds.
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		require.NoError(t, err)
		require.NoError(t, listener.Close())
	}
}
