package common

import (
	"fmt"
	"testing"
)

// spreadsheetHeaders mimics an exported report: blanks, repeats and labels
// that need cleaning before they can be SQL columns.
func spreadsheetHeaders(n int) []string {
	labels := []string{"Order ID", "Customer Name", "", "Amount ($)", "Amount ($)", "Date", "select", "2024 Q1"}
	headers := make([]string, n)
	for i := range headers {
		headers[i] = labels[i%len(labels)]
		if i >= len(labels) {
			headers[i] = fmt.Sprintf("%s %d", headers[i], i/len(labels))
		}
	}
	return headers
}

func BenchmarkHeaderNames(b *testing.B) {
	raw := spreadsheetHeaders(500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		HeaderNames(raw)
	}
}

func BenchmarkGenColumnNames(b *testing.B) {
	named := HeaderNames(spreadsheetHeaders(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenColumnNames(named)
	}
}
