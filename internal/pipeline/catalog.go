package pipeline

// ConfigProperty documents one configurable setting of a transformation
// type. Purely informational, consumed by the configuration UI.
type ConfigProperty struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Required      bool     `json:"required"`
	Default       string   `json:"default,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

// TransformationType is a static descriptor of one operator.
type TransformationType struct {
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Config      []ConfigProperty `json:"config,omitempty"`
}

// Catalog returns the descriptors for every supported transformation type.
// The pipeline itself never reads this table; it exists for documentation
// and mapping editors.
func Catalog() []TransformationType {
	return transformationCatalog
}

var transformationCatalog = []TransformationType{
	{Type: "None", Name: "Passthrough", Category: "general",
		Description: "Returns the value unchanged."},
	{Type: "HexDecode", Name: "Hex decode", Category: "encoding",
		Description: "Decodes a hex string into bytes and reinterprets them as text.",
		Config: []ConfigProperty{
			{Name: "encoding", Type: "string", Default: "utf8", AllowedValues: []string{"utf8", "ascii"}},
			{Name: "outputType", Type: "string", Default: "string", AllowedValues: []string{"string", "integer", "decimal"}},
		}},
	{Type: "Base64Decode", Name: "Base64 decode", Category: "encoding",
		Description: "Decodes a base64 string into bytes and reinterprets them as text.",
		Config: []ConfigProperty{
			{Name: "encoding", Type: "string", Default: "utf8", AllowedValues: []string{"utf8", "ascii"}},
			{Name: "outputType", Type: "string", Default: "string", AllowedValues: []string{"string", "integer", "decimal"}},
		}},
	{Type: "Split", Name: "Split", Category: "string",
		Description: "Splits on a delimiter and picks one segment; a position past the end yields an absent value.",
		Config: []ConfigProperty{
			{Name: "delimiter", Type: "string", Required: true},
			{Name: "position", Type: "integer", Required: true},
		}},
	{Type: "Substring", Name: "Substring", Category: "string",
		Description: "Extracts a character range; omitting length takes the rest of the string.",
		Config: []ConfigProperty{
			{Name: "startIndex", Type: "integer", Required: true},
			{Name: "length", Type: "integer"},
		}},
	{Type: "RegexMatch", Name: "Regex match", Category: "string",
		Description: "Returns a capture group of the first match, or an absent value when nothing matches.",
		Config: []ConfigProperty{
			{Name: "pattern", Type: "string", Required: true},
			{Name: "group", Type: "integer", Default: "1"},
		}},
	{Type: "Replace", Name: "Replace", Category: "string",
		Description: "Replaces every occurrence of a literal substring.",
		Config: []ConfigProperty{
			{Name: "oldValue", Type: "string", Required: true},
			{Name: "newValue", Type: "string"},
		}},
	{Type: "Trim", Name: "Trim", Category: "string",
		Description: "Trims whitespace, or the configured character set, from both ends.",
		Config: []ConfigProperty{
			{Name: "characters", Type: "string"},
		}},
	{Type: "Add", Name: "Add", Category: "numeric",
		Description: "Adds a constant to the numeric value.",
		Config: []ConfigProperty{{Name: "value", Type: "decimal", Required: true}}},
	{Type: "Subtract", Name: "Subtract", Category: "numeric",
		Description: "Subtracts a constant from the numeric value.",
		Config: []ConfigProperty{{Name: "value", Type: "decimal", Required: true}}},
	{Type: "Multiply", Name: "Multiply", Category: "numeric",
		Description: "Multiplies the numeric value by a constant.",
		Config: []ConfigProperty{{Name: "value", Type: "decimal", Required: true}}},
	{Type: "Divide", Name: "Divide", Category: "numeric",
		Description: "Divides the numeric value by a constant; dividing by zero fails the pipeline.",
		Config: []ConfigProperty{{Name: "value", Type: "decimal", Required: true}}},
	{Type: "Modulo", Name: "Modulo", Category: "numeric",
		Description: "Remainder of dividing the numeric value by a constant; zero fails the pipeline.",
		Config: []ConfigProperty{{Name: "value", Type: "decimal", Required: true}}},
	{Type: "Round", Name: "Round", Category: "numeric",
		Description: "Rounds half away from zero to the configured number of decimals.",
		Config: []ConfigProperty{{Name: "decimals", Type: "integer", Default: "0"}}},
	{Type: "Floor", Name: "Floor", Category: "numeric",
		Description: "Largest integer not greater than the value."},
	{Type: "Ceiling", Name: "Ceiling", Category: "numeric",
		Description: "Smallest integer not less than the value."},
	{Type: "Abs", Name: "Absolute value", Category: "numeric",
		Description: "Absolute value."},
	{Type: "ArrayIndex", Name: "Array index", Category: "array",
		Description: "Picks one element of an array value; out of range is an error.",
		Config: []ConfigProperty{{Name: "index", Type: "integer", Required: true}}},
	{Type: "ArrayFirst", Name: "Array first", Category: "array",
		Description: "First element of an array value."},
	{Type: "ArrayLast", Name: "Array last", Category: "array",
		Description: "Last element of an array value."},
	{Type: "ArrayLength", Name: "Array length", Category: "array",
		Description: "Number of elements in an array value."},
	{Type: "ToInteger", Name: "To integer", Category: "conversion",
		Description: "Coerces to a number and truncates toward zero."},
	{Type: "ToDecimal", Name: "To decimal", Category: "conversion",
		Description: "Coerces to a decimal number."},
	{Type: "ToBoolean", Name: "To boolean", Category: "conversion",
		Description: "Matches the value case-insensitively against true/false sets.",
		Config: []ConfigProperty{
			{Name: "trueValues", Type: "string[]", Default: `["1","true","yes"]`},
			{Name: "falseValues", Type: "string[]", Default: `["0","false","no"]`},
		}},
	{Type: "ToString", Name: "To string", Category: "conversion",
		Description: "Renders the value as its string representation."},
	{Type: "ToDateTime", Name: "To date/time", Category: "conversion",
		Description: "Parses the value with an exact date format; parse failure fails the pipeline.",
		Config: []ConfigProperty{
			{Name: "format", Type: "string", Required: true},
			{Name: "culture", Type: "string"},
		}},
	{Type: "RangeMapping", Name: "Range mapping", Category: "mapping",
		Description: "Maps the first inclusive numeric range containing the value to its output.",
		Config: []ConfigProperty{{Name: "ranges", Type: "range[]", Required: true}}},
	{Type: "ValueMapping", Name: "Value mapping", Category: "mapping",
		Description: "Maps exact string keys to outputs, with an optional default.",
		Config: []ConfigProperty{
			{Name: "mappings", Type: "map", Required: true},
			{Name: "default", Type: "any"},
		}},
	{Type: "Conditional", Name: "Conditional", Category: "mapping",
		Description: "Compares the numeric value against a constant and picks one of two results.",
		Config: []ConfigProperty{
			{Name: "condition", Type: "string", Required: true,
				AllowedValues: []string{"greaterThan", "lessThan", "equals", "notEquals"}},
			{Name: "value", Type: "decimal", Required: true},
			{Name: "trueResult", Type: "any", Required: true},
			{Name: "falseResult", Type: "any", Required: true},
		}},
	{Type: "UnixTimestamp", Name: "Unix timestamp", Category: "datetime",
		Description: "Interprets the integer value as a Unix epoch timestamp.",
		Config: []ConfigProperty{
			{Name: "unit", Type: "string", Default: "seconds",
				AllowedValues: []string{"seconds", "milliseconds"}},
		}},
	{Type: "AddTimeSpan", Name: "Add time span", Category: "datetime",
		Description: "Shifts a timestamp value by hours and minutes.",
		Config: []ConfigProperty{
			{Name: "hours", Type: "decimal", Default: "0"},
			{Name: "minutes", Type: "decimal", Default: "0"},
		}},
	{Type: "FormatDateTime", Name: "Format date/time", Category: "datetime",
		Description: "Renders a timestamp value as text using an exact format.",
		Config: []ConfigProperty{
			{Name: "format", Type: "string", Required: true},
			{Name: "culture", Type: "string"},
		}},
	{Type: "BitwiseAnd", Name: "Bitwise AND", Category: "bitwise",
		Description: "ANDs the integer value with a mask.",
		Config: []ConfigProperty{{Name: "mask", Type: "integer", Required: true}}},
	{Type: "BitwiseOr", Name: "Bitwise OR", Category: "bitwise",
		Description: "ORs the integer value with a mask.",
		Config: []ConfigProperty{{Name: "mask", Type: "integer", Required: true}}},
	{Type: "BitwiseXor", Name: "Bitwise XOR", Category: "bitwise",
		Description: "XORs the integer value with a mask.",
		Config: []ConfigProperty{{Name: "mask", Type: "integer", Required: true}}},
	{Type: "ShiftLeft", Name: "Shift left", Category: "bitwise",
		Description: "Shifts the integer value left.",
		Config: []ConfigProperty{{Name: "positions", Type: "integer", Required: true}}},
	{Type: "ShiftRight", Name: "Shift right", Category: "bitwise",
		Description: "Shifts the integer value right.",
		Config: []ConfigProperty{{Name: "positions", Type: "integer", Required: true}}},
	{Type: "ExtractBits", Name: "Extract bits", Category: "bitwise",
		Description: "Extracts a contiguous bit range from the integer value.",
		Config: []ConfigProperty{
			{Name: "startBit", Type: "integer", Required: true},
			{Name: "bitCount", Type: "integer", Required: true},
		}},
	{Type: "ValidateChecksum", Name: "Validate checksum", Category: "checksum",
		Description: "Recomputes the checksum of a hex frame and passes the value through when it matches.",
		Config: []ConfigProperty{
			{Name: "algorithm", Type: "string", Required: true,
				AllowedValues: []string{"crc16", "crc32", "xor"}},
			{Name: "expectedPosition", Type: "integer", Default: "-1"},
		}},
}
