// Package api holds the data model shared by encoders, mixers and the accuracy evaluator.
package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
)

// PredictionsField is the column of a predictions Frame holding the predicted values.
const PredictionsField = "predictions"

// TypeDistKey is the key of Output.Typing holding the dtypes detected inside array cells.
const TypeDistKey = "data_type_dist"

// Column is an ordered sequence of raw values. It is not modified once handed to an encoder.
type Column []interface{}

// Frame is a minimal column-oriented table.
type Frame map[string]Column

// Len returns the number of rows of the named column.
func (f Frame) Len(name string) int {
	return len(f[name])
}

// ConfidenceRangeField returns the Frame column holding the [lower, upper] interval
// predicted for each row of column.
func ConfidenceRangeField(column string) string {
	return column + "_confidence_range"
}

// Output describes the target column of a predictor.
type Output struct {
	Name      string                 `json:"name" yaml:"name"`
	DataDtype dtype.Dtype            `json:"data_dtype" yaml:"data_dtype"`
	Typing    map[string]interface{} `json:"typing,omitempty" yaml:"typing,omitempty"`
}

// SubtypeDist returns the set of dtypes recorded under Typing[TypeDistKey]. The entry may be a
// name->count map or a list of names.
func (o Output) SubtypeDist() map[dtype.Dtype]bool {
	out := make(map[dtype.Dtype]bool)
	add := func(name string) {
		if d, ok := dtype.FromName(name); ok {
			out[d] = true
		}
	}
	switch dist := o.Typing[TypeDistKey].(type) {
	case map[string]int:
		for name := range dist {
			add(name)
		}
	case map[string]interface{}:
		for name := range dist {
			add(name)
		}
	case map[interface{}]interface{}:
		for name := range dist {
			add(fmt.Sprint(name))
		}
	case []string:
		for _, name := range dist {
			add(name)
		}
	case []interface{}:
		for _, name := range dist {
			add(fmt.Sprint(name))
		}
	}
	return out
}

// AsFloat converts a numeric or numeric-string cell to float64.
func AsFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// AsSlice returns the elements of a slice or array cell. Strings are not slices.
func AsSlice(v interface{}) ([]interface{}, bool) {
	switch x := v.(type) {
	case nil, string:
		return nil, false
	case []interface{}:
		return x, true
	case Column:
		return []interface{}(x), true
	case []float64:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, true
	case []string:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Key returns the string identity of a categorical cell. Numbers with the same value share a key
// so that 1 and 1.0 are the same class.
func Key(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := AsFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
