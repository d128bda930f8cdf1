package feature

import (
	"regexp"
	"strings"
)

// clockRe matches times such as "07:05pm", "7:05 PM" or "11:30 am".
var clockRe = regexp.MustCompile(`^\s*0?(\d{1,2}):(\d{2})\s*([aApP])\.?\s*[mM]\.?\s*$`)

// FormatTime drops a leading zero from the hour and writes the meridiem as
// a lowercase suffix with no space. Input it does not recognise is
// returned unchanged.
func FormatTime(s string) string {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[1] + ":" + m[2] + strings.ToLower(m[3]) + "m"
}

// TimeRange formats "start - stop". A missing side leaves its half of the
// range blank; with both missing the result is empty.
func TimeRange(start, stop string) string {
	start, stop = FormatTime(start), FormatTime(stop)
	if start == "" && stop == "" {
		return ""
	}
	return strings.TrimSpace(start + " - " + stop)
}
