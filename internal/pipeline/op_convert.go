package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

type convertOp struct {
	name string
}

func (o convertOp) Name() string { return o.name }

func (o convertOp) Apply(v Value) (Value, error) {
	switch o.name {
	case "ToInteger":
		f, err := v.AsNumber()
		if err != nil {
			return Null(), err
		}
		return Number(math.Trunc(f)), nil
	case "ToDecimal":
		f, err := v.AsNumber()
		if err != nil {
			return Null(), err
		}
		return Number(f), nil
	case "ToString":
		return String(v.Text()), nil
	}
	return Null(), fmt.Errorf("unknown conversion %q", o.name)
}

var (
	defaultTrueValues  = []string{"1", "true", "yes"}
	defaultFalseValues = []string{"0", "false", "no"}
)

type toBooleanOp struct {
	trueValues  []string
	falseValues []string
}

func buildToBoolean(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		TrueValues  []string `json:"trueValues"`
		FalseValues []string `json:"falseValues"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	op := toBooleanOp{trueValues: cfg.TrueValues, falseValues: cfg.FalseValues}
	if len(op.trueValues) == 0 {
		op.trueValues = defaultTrueValues
	}
	if len(op.falseValues) == 0 {
		op.falseValues = defaultFalseValues
	}
	return op, nil
}

func (o toBooleanOp) Name() string { return "ToBoolean" }

// Apply matches case-insensitively against the configured value sets.
func (o toBooleanOp) Apply(v Value) (Value, error) {
	if v.Kind() == KindBool {
		return v, nil
	}
	s := strings.ToLower(strings.TrimSpace(v.Text()))
	for _, t := range o.trueValues {
		if strings.ToLower(t) == s {
			return Bool(true), nil
		}
	}
	for _, f := range o.falseValues {
		if strings.ToLower(f) == s {
			return Bool(false), nil
		}
	}
	return Null(), fmt.Errorf("value %q matches neither true nor false set", v.Text())
}

type toDateTimeOp struct {
	layout string
}

func buildToDateTime(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Format string `json:"format"`
		// Culture is accepted for configuration compatibility; Go layouts
		// are culture-neutral so it has no effect here.
		Culture string `json:"culture"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Format == "" {
		return nil, fmt.Errorf("format is required")
	}
	return toDateTimeOp{layout: convertDateTimeFormat(cfg.Format)}, nil
}

func (o toDateTimeOp) Name() string { return "ToDateTime" }

func (o toDateTimeOp) Apply(v Value) (Value, error) {
	if v.Kind() == KindTime {
		return v, nil
	}
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	t, err := time.Parse(o.layout, strings.TrimSpace(s))
	if err != nil {
		return Null(), fmt.Errorf("cannot parse %q with format %q", s, o.layout)
	}
	return Time(t), nil
}
