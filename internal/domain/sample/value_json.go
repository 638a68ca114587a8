package sample

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes a Value as a plain JSON number or string, matching
// the on-disk fragment format: there is no wrapper object, just whichever
// native JSON type the Kind implies.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes a plain JSON number or string into a Value,
// preferring an integer representation when the JSON number has no
// fractional or exponent part.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}

	if bytes.ContainsAny(trimmed, ".eE") {
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return err
		}
		*v = FloatValue(f)
		return nil
	}

	var i int64
	if err := json.Unmarshal(trimmed, &i); err == nil {
		*v = IntValue(i)
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return err
	}
	*v = FloatValue(f)
	return nil
}
