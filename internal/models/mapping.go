package models

import "encoding/json"

// PipelineStep is one serialized transformation step as stored in
// configuration: an operator type tag plus an operator-specific config blob.
type PipelineStep struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// FieldMapping binds a device field to a source path and a transformation
// pipeline, scoped to one data format. SourceFieldPath == "" means the whole
// raw payload is the extracted value. An empty pipeline is identity.
type FieldMapping struct {
	MappingID       string
	FieldID         string
	DataFormat      DataFormat
	SourceFieldPath string
	Pipeline        []PipelineStep
	IsActive        bool
}

// MeasurementDateMapping resolves the measurement timestamp instead of a
// field value; same shape as FieldMapping but owned by the device.
type MeasurementDateMapping struct {
	MappingID       string
	DeviceID        string
	DataFormat      DataFormat
	SourceFieldPath string
	Pipeline        []PipelineStep
	IsActive        bool
}

// DecodePipeline parses the stored pipeline JSON. Null or empty input is a
// valid identity pipeline.
func DecodePipeline(raw []byte) ([]PipelineStep, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var steps []PipelineStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
