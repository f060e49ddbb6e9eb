package jsonl

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

type row struct {
	line int
	text string
}

func (r row) lookup(path string) (gjson.Result, error) {
	if !gjson.Valid(r.text) {
		return gjson.Result{}, fmt.Errorf("line %d is not valid JSON", r.line)
	}
	val := gjson.Get(r.text, path)
	if !val.Exists() || val.Type == gjson.Null {
		return val, fmt.Errorf("line %d has no value at %s", r.line, path)
	}
	if val.Type != gjson.Number {
		return val, fmt.Errorf("value at %s on line %d was not a number. Was: %s", path, r.line, val.Raw)
	}
	return val, nil
}

func scanInt32(r row, path string) (int32, error) {
	val, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	f := val.Float()
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("value at %s on line %d is not a 32-bit integer. Was: %s", path, r.line, val.Raw)
	}
	return int32(f), nil
}

func scanFloat64(r row, path string) (float64, error) {
	val, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	return val.Float(), nil
}
