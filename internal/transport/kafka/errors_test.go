package kafka

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermanent(t *testing.T) {
	t.Parallel()

	require.NoError(t, Permanent(nil))

	cause := errors.New("bad payload")
	err := Permanent(cause)
	require.ErrorIs(t, err, cause)
	require.True(t, IsPermanent(err))
	require.True(t, IsPermanent(fmt.Errorf("handle: %w", err)))
	require.Equal(t, "permanent: bad payload", err.Error())

	require.False(t, IsPermanent(cause))
	require.False(t, IsPermanent(nil))
	require.Equal(t, "permanent failure", PermanentError{}.Error())
}
