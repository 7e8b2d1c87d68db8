package tracker

import (
	"strconv"
	"strings"
	"time"
)

// FormatDate: YYYY-MM-DD в MM/DD/YYYY, остальное без изменений.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return s
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return s
	}
	return parts[1] + "/" + parts[2] + "/" + parts[0]
}

// FallbackSubject: "<title> - MM/DD/YYYY" для отправки без темы.
func FallbackSubject(title string, now time.Time) string {
	return title + " - " + now.Format("01/02/2006")
}
