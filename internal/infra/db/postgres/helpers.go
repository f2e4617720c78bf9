package postgres

import (
	"encoding/json"
	"strings"
)

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func jsonList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func parseList(raw string) []string {
	var list []string
	if json.Unmarshal([]byte(raw), &list) != nil || list == nil {
		return []string{}
	}
	return list
}
