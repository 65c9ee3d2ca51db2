package models

import "time"

// DeviceMeasurement is one ingested payload with its resolution outcome.
// Created once per ingestion and not mutated by the pipeline afterwards.
type DeviceMeasurement struct {
	MeasurementID      string
	DeviceID           string
	RawData            string
	DataFormat         DataFormat
	CreatedOn          time.Time
	MeasurementDate    time.Time
	ParsedSuccessfully bool
	ParsingErrors      string
}

// FieldMeasurementValue is one resolved field value. The value is stored as
// its string representation regardless of the field's declared data type;
// consumers reapply the type on read.
type FieldMeasurementValue struct {
	ValueID       string
	MeasurementID string
	FieldID       string
	FieldName     string
	Value         string
}

// ThresholdLevel classifies a measured value against its field's bounds.
type ThresholdLevel string

const (
	LevelNormal   ThresholdLevel = "Normal"
	LevelWarning  ThresholdLevel = "Warning"
	LevelCritical ThresholdLevel = "Critical"
)

// ThresholdStatus is a derived, non-persisted classification result.
type ThresholdStatus struct {
	FieldID        string         `json:"field_id"`
	FieldName      string         `json:"field_name"`
	Status         ThresholdLevel `json:"status"`
	Value          float64        `json:"value"`
	ThresholdValue float64        `json:"threshold_value"`
	Unit           string         `json:"unit"`
}
