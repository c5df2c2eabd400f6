package application

import "strings"

// NormalizeLog strips the job and step prefix columns that gh prepends to
// every log line, leaving the timestamp and message. The columns are
// tab-separated, so everything through the second tab goes. Lines with fewer
// than two tabs pass through untouched, and the line count and order are
// always preserved.
func NormalizeLog(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		first := strings.IndexByte(line, '\t')
		if first < 0 {
			continue
		}
		rest := line[first+1:]
		second := strings.IndexByte(rest, '\t')
		if second < 0 {
			continue
		}
		lines[i] = rest[second+1:]
	}
	return strings.Join(lines, "\n")
}
