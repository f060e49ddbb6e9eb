// Package partition computes which contiguous slice of a globally-indexed array belongs to each
// rank. Every rank receives ceil(total/size) elements, except trailing ranks which absorb the
// remainder and may be empty.
package partition

// chunkSize returns ceil(total/size)
func chunkSize(total int64, size int) int64 {
	if size <= 0 {
		panic("partition: size must be positive")
	}
	s := int64(size)
	return (total + s - 1) / s
}

// Start returns the first global index owned by rank in an array of length total
func Start(total int64, size int, rank int) int64 {
	return min(total, int64(rank)*chunkSize(total, size))
}

// End returns one past the last global index owned by rank in an array of length total
func End(total int64, size int, rank int) int64 {
	return min(total, int64(rank+1)*chunkSize(total, size))
}

// Portion returns the number of elements owned by rank
func Portion(total int64, size int, rank int) int64 {
	return End(total, size, rank) - Start(total, size, rank)
}

// Range returns the half-open interval [start, end) owned by rank
func Range(total int64, size int, rank int) (start int64, end int64) {
	return Start(total, size, rank), End(total, size, rank)
}

// Slice returns the portion of a global array owned by rank. The result aliases global.
func Slice[T any](global []T, size int, rank int) []T {
	start, end := Range(int64(len(global)), size, rank)
	return global[start:end:end]
}
