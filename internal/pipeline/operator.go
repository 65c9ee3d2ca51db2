package pipeline

import (
	"encoding/json"
	"fmt"

	"telemetry-ingest/internal/models"
)

// Operator is one pure transformation step. Apply never mutates state; a
// failed Apply fails the whole pipeline for the current field only.
type Operator interface {
	Name() string
	Apply(v Value) (Value, error)
}

// Build parses serialized pipeline steps into executable operators.
// Structurally invalid configuration and unknown operator types fail here,
// before any value is touched.
func Build(steps []models.PipelineStep) ([]Operator, error) {
	ops := make([]Operator, 0, len(steps))
	for i, step := range steps {
		op, err := buildOperator(step.Type, step.Config)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Type, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func buildOperator(opType string, raw json.RawMessage) (Operator, error) {
	switch opType {
	case "None", "":
		return noneOp{}, nil
	case "HexDecode":
		return buildHexDecode(raw)
	case "Base64Decode":
		return buildBase64Decode(raw)
	case "Split":
		return buildSplit(raw)
	case "Substring":
		return buildSubstring(raw)
	case "RegexMatch":
		return buildRegexMatch(raw)
	case "Replace":
		return buildReplace(raw)
	case "Trim":
		return buildTrim(raw)
	case "Add", "Subtract", "Multiply", "Divide", "Modulo":
		return buildArithmetic(opType, raw)
	case "Round":
		return buildRound(raw)
	case "Floor", "Ceiling", "Abs":
		return unaryMathOp{name: opType}, nil
	case "ArrayIndex":
		return buildArrayIndex(raw)
	case "ArrayFirst", "ArrayLast", "ArrayLength":
		return arrayOp{name: opType}, nil
	case "ToInteger", "ToDecimal", "ToString":
		return convertOp{name: opType}, nil
	case "ToBoolean":
		return buildToBoolean(raw)
	case "ToDateTime":
		return buildToDateTime(raw)
	case "RangeMapping":
		return buildRangeMapping(raw)
	case "ValueMapping":
		return buildValueMapping(raw)
	case "Conditional":
		return buildConditional(raw)
	case "UnixTimestamp":
		return buildUnixTimestamp(raw)
	case "AddTimeSpan":
		return buildAddTimeSpan(raw)
	case "FormatDateTime":
		return buildFormatDateTime(raw)
	case "BitwiseAnd", "BitwiseOr", "BitwiseXor":
		return buildBitwise(opType, raw)
	case "ShiftLeft", "ShiftRight":
		return buildShift(opType, raw)
	case "ExtractBits":
		return buildExtractBits(raw)
	case "ValidateChecksum":
		return buildValidateChecksum(raw)
	}
	return nil, fmt.Errorf("unknown transformation type %q", opType)
}

// decodeConfig unmarshals an operator config blob, treating a missing blob
// as an empty object so operators with all-optional settings still build.
func decodeConfig(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// jsonToValue converts a configured output literal (Conditional results,
// mapping outputs) into a pipeline value.
func jsonToValue(raw json.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return Null(), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Null(), fmt.Errorf("invalid output literal: %w", err)
	}
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	}
	return Null(), fmt.Errorf("unsupported output literal %s", string(raw))
}

type noneOp struct{}

func (noneOp) Name() string                 { return "None" }
func (noneOp) Apply(v Value) (Value, error) { return v, nil }

// requireString coerces the current value for string operators.
func requireString(v Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("value is null")
	}
	if v.Kind() == KindComposite {
		return "", fmt.Errorf("value is composite, not text")
	}
	return v.Text(), nil
}
