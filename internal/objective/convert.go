package objective

import (
	"fmt"

	"go.starlark.net/starlark"
)

// floatList converts v to a frozen starlark list.
func floatList(v []float64) *starlark.List {
	elems := make([]starlark.Value, len(v))
	for i, x := range v {
		elems[i] = starlark.Float(x)
	}
	l := starlark.NewList(elems)
	l.Freeze()
	return l
}

// numberList converts a list or tuple of ints and floats.
func numberList(v starlark.Value) ([]float64, error) {
	seq, ok := v.(starlark.Indexable)
	if _, isString := v.(starlark.String); !ok || isString {
		return nil, fmt.Errorf("want list or tuple of numbers, got %s", v.Type())
	}
	out := make([]float64, seq.Len())
	for i := range out {
		f, ok := starlark.AsFloat(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("index %d: want number, got %s", i, seq.Index(i).Type())
		}
		out[i] = f
	}
	return out, nil
}

// stringList converts a list or tuple of strings. None gives nil.
func stringList(v starlark.Value) ([]string, error) {
	if v == nil || v == starlark.None {
		return nil, nil
	}
	seq, ok := v.(starlark.Indexable)
	if _, isString := v.(starlark.String); !ok || isString {
		return nil, fmt.Errorf("want list of strings, got %s", v.Type())
	}
	out := make([]string, seq.Len())
	for i := range out {
		s, ok := starlark.AsString(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("index %d: want string, got %s", i, seq.Index(i).Type())
		}
		out[i] = s
	}
	return out, nil
}
