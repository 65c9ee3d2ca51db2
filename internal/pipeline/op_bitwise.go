package pipeline

import (
	"encoding/json"
	"fmt"
)

type bitwiseOp struct {
	name string
	mask int64
}

func buildBitwise(name string, raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Mask *int64 `json:"mask"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Mask == nil {
		return nil, fmt.Errorf("mask is required")
	}
	return bitwiseOp{name: name, mask: *cfg.Mask}, nil
}

func (o bitwiseOp) Name() string { return o.name }

func (o bitwiseOp) Apply(v Value) (Value, error) {
	i, err := v.AsInt()
	if err != nil {
		return Null(), err
	}
	switch o.name {
	case "BitwiseAnd":
		return Number(float64(i & o.mask)), nil
	case "BitwiseOr":
		return Number(float64(i | o.mask)), nil
	case "BitwiseXor":
		return Number(float64(i ^ o.mask)), nil
	}
	return Null(), fmt.Errorf("unknown bitwise operator %q", o.name)
}

type shiftOp struct {
	name      string
	positions uint
}

func buildShift(name string, raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Positions *int `json:"positions"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Positions == nil {
		return nil, fmt.Errorf("positions is required")
	}
	if *cfg.Positions < 0 || *cfg.Positions > 63 {
		return nil, fmt.Errorf("positions must be in [0,63]")
	}
	return shiftOp{name: name, positions: uint(*cfg.Positions)}, nil
}

func (o shiftOp) Name() string { return o.name }

func (o shiftOp) Apply(v Value) (Value, error) {
	i, err := v.AsInt()
	if err != nil {
		return Null(), err
	}
	if o.name == "ShiftLeft" {
		return Number(float64(i << o.positions)), nil
	}
	return Number(float64(i >> o.positions)), nil
}

type extractBitsOp struct {
	StartBit int `json:"startBit"`
	BitCount int `json:"bitCount"`
}

func buildExtractBits(raw json.RawMessage) (Operator, error) {
	var op extractBitsOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.StartBit < 0 || op.StartBit > 62 {
		return nil, fmt.Errorf("startBit must be in [0,62]")
	}
	if op.BitCount < 1 || op.StartBit+op.BitCount > 63 {
		return nil, fmt.Errorf("bitCount must keep the range inside [0,63)")
	}
	return op, nil
}

func (o extractBitsOp) Name() string { return "ExtractBits" }

func (o extractBitsOp) Apply(v Value) (Value, error) {
	i, err := v.AsInt()
	if err != nil {
		return Null(), err
	}
	mask := int64(1)<<uint(o.BitCount) - 1
	return Number(float64((i >> uint(o.StartBit)) & mask)), nil
}
