package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafePartitionFuncRecoversPanic(t *testing.T) {
	fn := SafePartitionFunc(func(key int32, size int) int {
		if key < 0 {
			panic(fmt.Errorf("negative key"))
		}
		return int(key) % size
	})
	dest, err := fn(7, 4)
	require.Nil(t, err)
	require.Equal(t, 3, dest)
	_, err = fn(-1, 4)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "negative key")
	require.Contains(t, err.Error(), "Key: -1")
}

func TestFormatMultiError(t *testing.T) {
	msg := FormatMultiError([]error{fmt.Errorf("a"), fmt.Errorf("b")})
	require.Equal(t, "a\nb\n", msg)
}
