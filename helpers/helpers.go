package helpers

import "encoding/json"

// ToJsonString converts any value to a JSON string, empty on failure. Used
// for debug logging of outbound queries.
func ToJsonString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
