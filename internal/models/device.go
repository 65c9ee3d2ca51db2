package models

import "time"

// DataFormat identifies the wire format of a raw telemetry payload.
type DataFormat string

const (
	FormatJSON      DataFormat = "Json"
	FormatXML       DataFormat = "Xml"
	FormatPlainText DataFormat = "PlainText"
)

// ParseDataFormat validates a client-supplied format string.
func ParseDataFormat(s string) (DataFormat, bool) {
	switch DataFormat(s) {
	case FormatJSON, FormatXML, FormatPlainText:
		return DataFormat(s), true
	}
	return "", false
}

// DataType is the declared type of a device field's resolved value.
type DataType string

const (
	TypeInteger  DataType = "Integer"
	TypeDecimal  DataType = "Decimal"
	TypeBoolean  DataType = "Boolean"
	TypeString   DataType = "String"
	TypeDateTime DataType = "DateTime"
)

// Device is a registered telemetry source.
type Device struct {
	DeviceID  string
	Name      string
	IsActive  bool
	APIKey    string
	CreatedOn time.Time
}

// DeviceField is one configured measurement channel of a device.
// Threshold bounds are independent; any subset may be set.
type DeviceField struct {
	FieldID      string
	DeviceID     string
	FieldName    string
	DisplayName  string
	DataType     DataType
	Unit         string
	DisplayOrder int
	IsActive     bool

	WarningMin  *float64
	WarningMax  *float64
	CriticalMin *float64
	CriticalMax *float64
}

// HasThresholds reports whether at least one bound is configured.
func (f *DeviceField) HasThresholds() bool {
	return f.WarningMin != nil || f.WarningMax != nil ||
		f.CriticalMin != nil || f.CriticalMax != nil
}

// IsNumeric reports whether threshold evaluation applies to this field.
func (f *DeviceField) IsNumeric() bool {
	return f.DataType == TypeInteger || f.DataType == TypeDecimal
}
