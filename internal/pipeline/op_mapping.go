package pipeline

import (
	"encoding/json"
	"fmt"
)

type mappingRange struct {
	min, max float64
	output   Value
}

type rangeMappingOp struct {
	ranges []mappingRange
}

func buildRangeMapping(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Ranges []struct {
			Min    float64         `json:"min"`
			Max    float64         `json:"max"`
			Output json.RawMessage `json:"output"`
		} `json:"ranges"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Ranges) == 0 {
		return nil, fmt.Errorf("ranges is required")
	}
	op := rangeMappingOp{}
	for i, r := range cfg.Ranges {
		out, err := jsonToValue(r.Output)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		op.ranges = append(op.ranges, mappingRange{min: r.Min, max: r.Max, output: out})
	}
	return op, nil
}

func (o rangeMappingOp) Name() string { return "RangeMapping" }

// Apply returns the output of the first range containing the value
// (bounds inclusive). A value outside every range is an error.
func (o rangeMappingOp) Apply(v Value) (Value, error) {
	f, err := v.AsNumber()
	if err != nil {
		return Null(), err
	}
	for _, r := range o.ranges {
		if f >= r.min && f <= r.max {
			return r.output, nil
		}
	}
	return Null(), fmt.Errorf("value %s matches no configured range", FormatNumber(f))
}

type valueMappingOp struct {
	mappings map[string]Value
	def      *Value
}

func buildValueMapping(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Mappings map[string]json.RawMessage `json:"mappings"`
		Default  json.RawMessage            `json:"default"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Mappings) == 0 {
		return nil, fmt.Errorf("mappings is required")
	}
	op := valueMappingOp{mappings: make(map[string]Value, len(cfg.Mappings))}
	for k, rawOut := range cfg.Mappings {
		out, err := jsonToValue(rawOut)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", k, err)
		}
		op.mappings[k] = out
	}
	if len(cfg.Default) != 0 {
		def, err := jsonToValue(cfg.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		op.def = &def
	}
	return op, nil
}

func (o valueMappingOp) Name() string { return "ValueMapping" }

func (o valueMappingOp) Apply(v Value) (Value, error) {
	key := v.Text()
	if out, ok := o.mappings[key]; ok {
		return out, nil
	}
	if o.def != nil {
		return *o.def, nil
	}
	return Null(), fmt.Errorf("value %q has no mapping and no default", key)
}

type conditionalOp struct {
	condition   string
	operand     float64
	trueResult  Value
	falseResult Value
}

func buildConditional(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Condition   string          `json:"condition"`
		Value       *float64        `json:"value"`
		TrueResult  json.RawMessage `json:"trueResult"`
		FalseResult json.RawMessage `json:"falseResult"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	switch cfg.Condition {
	case "greaterThan", "lessThan", "equals", "notEquals":
	default:
		return nil, fmt.Errorf("unsupported condition %q", cfg.Condition)
	}
	if cfg.Value == nil {
		return nil, fmt.Errorf("value is required")
	}
	trueRes, err := jsonToValue(cfg.TrueResult)
	if err != nil {
		return nil, fmt.Errorf("trueResult: %w", err)
	}
	falseRes, err := jsonToValue(cfg.FalseResult)
	if err != nil {
		return nil, fmt.Errorf("falseResult: %w", err)
	}
	return conditionalOp{
		condition:   cfg.Condition,
		operand:     *cfg.Value,
		trueResult:  trueRes,
		falseResult: falseRes,
	}, nil
}

func (o conditionalOp) Name() string { return "Conditional" }

func (o conditionalOp) Apply(v Value) (Value, error) {
	f, err := v.AsNumber()
	if err != nil {
		return Null(), err
	}
	var matched bool
	switch o.condition {
	case "greaterThan":
		matched = f > o.operand
	case "lessThan":
		matched = f < o.operand
	case "equals":
		matched = f == o.operand
	case "notEquals":
		matched = f != o.operand
	}
	if matched {
		return o.trueResult, nil
	}
	return o.falseResult, nil
}
