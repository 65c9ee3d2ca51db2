package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type unixTimestampOp struct {
	Unit string `json:"unit"`
}

func buildUnixTimestamp(raw json.RawMessage) (Operator, error) {
	var op unixTimestampOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	switch op.Unit {
	case "", "seconds", "milliseconds":
	default:
		return nil, fmt.Errorf("unsupported unit %q", op.Unit)
	}
	return op, nil
}

func (o unixTimestampOp) Name() string { return "UnixTimestamp" }

func (o unixTimestampOp) Apply(v Value) (Value, error) {
	i, err := v.AsInt()
	if err != nil {
		return Null(), err
	}
	if o.Unit == "milliseconds" {
		return Time(time.UnixMilli(i).UTC()), nil
	}
	return Time(time.Unix(i, 0).UTC()), nil
}

type addTimeSpanOp struct {
	Hours   float64 `json:"hours"`
	Minutes float64 `json:"minutes"`
}

func buildAddTimeSpan(raw json.RawMessage) (Operator, error) {
	var op addTimeSpanOp
	if err := decodeConfig(raw, &op); err != nil {
		return nil, err
	}
	return op, nil
}

func (o addTimeSpanOp) Name() string { return "AddTimeSpan" }

func (o addTimeSpanOp) Apply(v Value) (Value, error) {
	t, err := v.AsTime()
	if err != nil {
		return Null(), err
	}
	d := time.Duration(o.Hours*float64(time.Hour)) +
		time.Duration(o.Minutes*float64(time.Minute))
	return Time(t.Add(d)), nil
}

type formatDateTimeOp struct {
	layout string
}

func buildFormatDateTime(raw json.RawMessage) (Operator, error) {
	var cfg struct {
		Format  string `json:"format"`
		Culture string `json:"culture"`
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Format == "" {
		return nil, fmt.Errorf("format is required")
	}
	return formatDateTimeOp{layout: convertDateTimeFormat(cfg.Format)}, nil
}

func (o formatDateTimeOp) Name() string { return "FormatDateTime" }

func (o formatDateTimeOp) Apply(v Value) (Value, error) {
	t, err := v.AsTime()
	if err != nil {
		return Null(), err
	}
	return String(t.Format(o.layout)), nil
}

// dotnetTokens maps yyyy-MM-dd style format tokens (the shape mapping
// configs were written in) onto Go reference-time layouts. Longest token
// wins; unrecognized characters pass through so native Go layouts also work.
var dotnetTokens = []struct {
	from, to string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"fff", "000"},
	{"ff", "00"},
	{"f", "0"},
	{"tt", "PM"},
	{"zzz", "-07:00"},
	{"zz", "-07"},
}

func convertDateTimeFormat(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range dotnetTokens {
			if strings.HasPrefix(format[i:], tok.from) {
				b.WriteString(tok.to)
				i += len(tok.from)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
