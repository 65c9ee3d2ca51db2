package pipeline

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type decodeConfigBlob struct {
	Encoding   string `json:"encoding"`
	OutputType string `json:"outputType"`
}

type decodeOp struct {
	name       string
	decode     func(string) ([]byte, error)
	outputType string
}

func buildHexDecode(raw json.RawMessage) (Operator, error) {
	var cfg decodeConfigBlob
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	return decodeOp{
		name: "HexDecode",
		decode: func(s string) ([]byte, error) {
			return hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
		},
		outputType: cfg.OutputType,
	}, nil
}

func buildBase64Decode(raw json.RawMessage) (Operator, error) {
	var cfg decodeConfigBlob
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	return decodeOp{
		name: "Base64Decode",
		decode: func(s string) ([]byte, error) {
			return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		},
		outputType: cfg.OutputType,
	}, nil
}

func (o decodeOp) Name() string { return o.name }

func (o decodeOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	data, err := o.decode(s)
	if err != nil {
		return Null(), fmt.Errorf("decode failed: %w", err)
	}
	// Decoded bytes are reinterpreted as text (utf8 and ascii collapse to the
	// same byte-to-rune handling here) before the output coercion.
	text := string(data)
	switch o.outputType {
	case "", "string":
		return String(text), nil
	case "integer":
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Null(), fmt.Errorf("decoded value %q is not an integer", text)
		}
		return Number(float64(i)), nil
	case "decimal":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Null(), fmt.Errorf("decoded value %q is not a decimal", text)
		}
		return Number(f), nil
	}
	return Null(), fmt.Errorf("unsupported output type %q", o.outputType)
}

type splitOp struct {
	Delimiter string `json:"delimiter"`
	Position  int    `json:"position"`
}

func buildSplit(raw json.RawMessage) (Operator, error) {
	var op splitOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.Delimiter == "" {
		return nil, fmt.Errorf("delimiter is required")
	}
	if op.Position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	return op, nil
}

func (o splitOp) Name() string { return "Split" }

func (o splitOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	parts := strings.Split(s, o.Delimiter)
	// A position past the last segment yields an absent value, not an error.
	if o.Position >= len(parts) {
		return Null(), nil
	}
	return String(parts[o.Position]), nil
}

type substringOp struct {
	StartIndex int  `json:"startIndex"`
	Length     *int `json:"length"`
}

func buildSubstring(raw json.RawMessage) (Operator, error) {
	var op substringOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.StartIndex < 0 {
		return nil, fmt.Errorf("startIndex must be non-negative")
	}
	if op.Length != nil && *op.Length < 0 {
		return nil, fmt.Errorf("length must be non-negative")
	}
	return op, nil
}

func (o substringOp) Name() string { return "Substring" }

func (o substringOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	runes := []rune(s)
	if o.StartIndex > len(runes) {
		return Null(), fmt.Errorf("startIndex %d out of range for length %d", o.StartIndex, len(runes))
	}
	if o.Length == nil {
		return String(string(runes[o.StartIndex:])), nil
	}
	end := o.StartIndex + *o.Length
	if end > len(runes) {
		return Null(), fmt.Errorf("substring [%d,%d) out of range for length %d", o.StartIndex, end, len(runes))
	}
	return String(string(runes[o.StartIndex:end])), nil
}

type regexMatchOp struct {
	re    *regexp.Regexp
	group int
}

func buildRegexMatch(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Pattern string `json:"pattern"`
		Group   *int   `json:"group"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	group := 1
	if cfg.Group != nil {
		group = *cfg.Group
	}
	return regexMatchOp{re: re, group: group}, nil
}

func (o regexMatchOp) Name() string { return "RegexMatch" }

func (o regexMatchOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	m := o.re.FindStringSubmatch(s)
	if m == nil || o.group >= len(m) || o.group < 0 {
		return Null(), nil
	}
	return String(m[o.group]), nil
}

type replaceOp struct {
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

func buildReplace(raw json.RawMessage) (Operator, error) {
	var op replaceOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	if op.OldValue == "" {
		return nil, fmt.Errorf("oldValue is required")
	}
	return op, nil
}

func (o replaceOp) Name() string { return "Replace" }

func (o replaceOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	return String(strings.ReplaceAll(s, o.OldValue, o.NewValue)), nil
}

type trimOp struct {
	Characters string `json:"characters"`
}

func buildTrim(raw json.RawMessage) (Operator, error) {
	var op trimOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	return op, nil
}

func (o trimOp) Name() string { return "Trim" }

func (o trimOp) Apply(v Value) (Value, error) {
	s, err := requireString(v)
	if err != nil {
		return Null(), err
	}
	if o.Characters == "" {
		return String(strings.TrimSpace(s)), nil
	}
	return String(strings.Trim(s, o.Characters)), nil
}
