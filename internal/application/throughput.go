package application

import (
	"regexp"
	"strconv"
)

// throughputPattern matches the total row of the vllm benchmark summary table,
// e.g. "Output Token Throughput │ total   │ 123.4500 token/s". The box-drawing
// separator is part of the table format.
var throughputPattern = regexp.MustCompile(`Output Token Throughput │ total\s+│ (\d+\.\d+) token/s`)

// ExtractThroughput scans a normalized log body for the benchmark summary and
// returns the output token throughput in tokens per second. Only the first
// occurrence counts. A log without the summary, or with a value that does not
// parse, yields nil; a missing metric is an expected outcome, not an error.
func ExtractThroughput(body string) *float64 {
	m := throughputPattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
