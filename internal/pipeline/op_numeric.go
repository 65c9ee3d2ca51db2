package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
)

type arithmeticOp struct {
	name    string
	operand float64
}

func buildArithmetic(name string, raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Value *float64 `json:"value"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Value == nil {
		return nil, fmt.Errorf("value is required")
	}
	return arithmeticOp{name: name, operand: *cfg.Value}, nil
}

func (o arithmeticOp) Name() string { return o.name }

func (o arithmeticOp) Apply(v Value) (Value, error) {
	f, err := v.AsNumber()
	if err != nil {
		return Null(), err
	}
	switch o.name {
	case "Add":
		return Number(f + o.operand), nil
	case "Subtract":
		return Number(f - o.operand), nil
	case "Multiply":
		return Number(f * o.operand), nil
	case "Divide":
		if o.operand == 0 {
			return Null(), fmt.Errorf("division by zero")
		}
		return Number(f / o.operand), nil
	case "Modulo":
		if o.operand == 0 {
			return Null(), fmt.Errorf("modulo by zero")
		}
		return Number(math.Mod(f, o.operand)), nil
	}
	return Null(), fmt.Errorf("unknown arithmetic operator %q", o.name)
}

type roundOp struct {
	Decimals int `json:"decimals"`
}

func buildRound(raw json.RawMessage) (Operator, error) {
	var op roundOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.Decimals < 0 {
		return nil, fmt.Errorf("decimals must be non-negative")
	}
	return op, nil
}

func (o roundOp) Name() string { return "Round" }

// Apply rounds half away from zero (2.5 -> 3, -2.5 -> -3).
func (o roundOp) Apply(v Value) (Value, error) {
	f, err := v.AsNumber()
	if err != nil {
		return Null(), err
	}
	shift := math.Pow(10, float64(o.Decimals))
	return Number(math.Round(f*shift) / shift), nil
}

type unaryMathOp struct {
	name string
}

func (o unaryMathOp) Name() string { return o.name }

func (o unaryMathOp) Apply(v Value) (Value, error) {
	f, err := v.AsNumber()
	if err != nil {
		return Null(), err
	}
	switch o.name {
	case "Floor":
		return Number(math.Floor(f)), nil
	case "Ceiling":
		return Number(math.Ceil(f)), nil
	case "Abs":
		return Number(math.Abs(f)), nil
	}
	return Null(), fmt.Errorf("unknown math operator %q", o.name)
}
