package mysql

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// jsonList marshals a string slice for a JSON column; nil becomes []
func jsonList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// parseList unmarshals a JSON column back into a string slice
func parseList(raw string) []string {
	var list []string
	if json.Unmarshal([]byte(raw), &list) != nil || list == nil {
		return []string{}
	}
	return list
}
