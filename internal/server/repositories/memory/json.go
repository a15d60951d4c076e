package memory

import "encoding/json"

// numberField reads a top-level numeric field of a JSON object. Missing or
// non-numeric values count as zero, like a NULL cast in SQL.
func numberField(body []byte, field string) float64 {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0
	}
	var f float64
	if err := json.Unmarshal(doc[field], &f); err != nil {
		return 0
	}
	return f
}
