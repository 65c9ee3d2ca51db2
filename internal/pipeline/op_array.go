package pipeline

import (
	"encoding/json"
	"fmt"
)

type arrayIndexOp struct {
	Index int `json:"index"`
}

func buildArrayIndex(raw json.RawMessage) (Operator, error) {
	var op arrayIndexOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.Index < 0 {
		return nil, fmt.Errorf("index must be non-negative")
	}
	return op, nil
}

func (o arrayIndexOp) Name() string { return "ArrayIndex" }

func (o arrayIndexOp) Apply(v Value) (Value, error) {
	items, err := v.AsArray()
	if err != nil {
		return Null(), err
	}
	if o.Index >= len(items) {
		return Null(), fmt.Errorf("index %d out of range for array of %d", o.Index, len(items))
	}
	return items[o.Index], nil
}

type arrayOp struct {
	name string
}

func (o arrayOp) Name() string { return o.name }

func (o arrayOp) Apply(v Value) (Value, error) {
	items, err := v.AsArray()
	if err != nil {
		return Null(), err
	}
	switch o.name {
	case "ArrayFirst":
		if len(items) == 0 {
			return Null(), fmt.Errorf("array is empty")
		}
		return items[0], nil
	case "ArrayLast":
		if len(items) == 0 {
			return Null(), fmt.Errorf("array is empty")
		}
		return items[len(items)-1], nil
	case "ArrayLength":
		return Number(float64(len(items))), nil
	}
	return Null(), fmt.Errorf("unknown array operator %q", o.name)
}
