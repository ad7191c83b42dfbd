package metadata

import "strconv"

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatFloat renders 4.0 as "4" and 2.8 as "2.8".
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
