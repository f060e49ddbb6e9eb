package util

import (
	"fmt"
)

// PartitionFunc maps a join key to a destination rank in [0, size)
type PartitionFunc = func(key int32, size int) int

// SafePartitionFunc wraps a PartitionFunc such that panics are recovered and nice error messages are constructed
func SafePartitionFunc(fn PartitionFunc) func(key int32, size int) (int, error) {
	return func(key int32, size int) (dest int, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Partition Panic: %w\nKey: %d\n%s", anErr, key, GetTrace())
				} else {
					err = fmt.Errorf("Partition Panic: %v\nKey: %d\n%s", r, key, GetTrace())
				}
			}
		}()
		dest = fn(key, size)
		return
	}
}
