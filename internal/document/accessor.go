// Package document locates raw values inside heterogeneous telemetry
// payloads. JSON, XML and plain text all resolve into the same pipeline
// value union so downstream transformation steps never see the source shape.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/tidwall/gjson"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
)

// ErrPathNotFound reports a path segment missing from the document.
var ErrPathNotFound = errors.New("path not found")

// Extract resolves a dot-separated path against a raw payload. An empty
// path returns the raw payload unchanged for every format; plain text
// ignores a configured path entirely.
func Extract(raw string, format models.DataFormat, path string) (pipeline.Value, error) {
	if format == models.FormatPlainText {
		return pipeline.String(raw), nil
	}
	if path == "" {
		return pipeline.String(raw), nil
	}
	switch format {
	case models.FormatJSON:
		return extractJSON(raw, path)
	case models.FormatXML:
		return extractXML(raw, path)
	}
	return pipeline.Null(), fmt.Errorf("unsupported data format %q", format)
}

func extractJSON(raw, path string) (pipeline.Value, error) {
	if !gjson.Valid(raw) {
		return pipeline.Null(), fmt.Errorf("invalid json payload")
	}
	res := gjson.Get(raw, path)
	if !res.Exists() {
		return pipeline.Null(), fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	return jsonValue(res), nil
}

func jsonValue(res gjson.Result) pipeline.Value {
	switch res.Type {
	case gjson.String:
		return pipeline.String(res.Str)
	case gjson.Number:
		return pipeline.Number(res.Num)
	case gjson.True:
		return pipeline.Bool(true)
	case gjson.False:
		return pipeline.Bool(false)
	case gjson.Null:
		return pipeline.Null()
	}
	// Arrays and objects stay composite so array operators can act on them.
	if res.IsArray() {
		elems := res.Array()
		items := make([]pipeline.Value, 0, len(elems))
		for _, e := range elems {
			items = append(items, jsonValue(e))
		}
		return pipeline.Array(items, res.Raw)
	}
	return pipeline.Object(res.Raw)
}

func extractXML(raw, path string) (pipeline.Value, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return pipeline.Null(), fmt.Errorf("invalid xml payload: %w", err)
	}
	cur := doc.Root()
	if cur == nil {
		return pipeline.Null(), fmt.Errorf("invalid xml payload: no root element")
	}
	for _, segment := range strings.Split(path, ".") {
		next := cur.SelectElement(segment)
		if next == nil {
			return pipeline.Null(), fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		cur = next
	}
	return pipeline.String(cur.Text()), nil
}
