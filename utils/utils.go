package utils

import "strings"

// GetLeadingStringInBetweenSquareBrackets splits an elasticsearch
// client response string into its prepended "[<status>]" marker and
// the JSON body that follows. A bracket anywhere past index 0 opens
// an array inside the body, not a status marker, so nothing is split
// off in that case.
func GetLeadingStringInBetweenSquareBrackets(str string) (bracketString string, theRestString string) {
	var (
		start = "["
		end   = "]"
	)
	s := strings.Index(str, start)
	if s != 0 {
		return
	}

	e := strings.Index(str[s:], end)
	if e == -1 {
		return
	}

	return strings.Trim(str[s:e+1], " "), strings.Trim(str[e+1:], " ")
}
