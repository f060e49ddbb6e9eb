// Package stats tracks runtime statistics of a distributed join on a single rank
package stats
