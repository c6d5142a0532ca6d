package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

// backendColumns is the fixed presentation order for backend columns. Keys a
// run did not produce are skipped.
var backendColumns = []string{
	BackendAccelGPU,
	BackendAccelGPUCompiled,
	BackendAccelCPU,
	BackendCPU,
	BackendUnifiedGPU,
	BackendDiscrete,
}

func presentBackends(detailed TimingSet) []string {
	seen := map[string]bool{}
	for _, times := range detailed {
		for backend := range times {
			seen[backend] = true
		}
	}
	columns := make([]string, 0, len(backendColumns))
	for _, backend := range backendColumns {
		if seen[backend] {
			columns = append(columns, backend)
		}
	}
	return columns
}

func newReportTable() *lgtable.Table {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})
}

// DetailedReport renders one row per operation, in catalogue order, with mean
// durations in milliseconds.
func DetailedReport(ops []Operation, results Results) string {
	columns := presentBackends(results.Detailed)
	table := newReportTable()
	table.Headers(append([]string{"operation"}, columns...)...)
	for _, op := range ops {
		times := results.Detailed[OperationLabel(op)]
		row := make([]string, 0, 1+len(columns))
		row = append(row, OperationLabel(op))
		for _, backend := range columns {
			if duration, ok := times[backend]; ok {
				row = append(row, fmt.Sprintf("%.3f", duration*1000))
			} else {
				row = append(row, "")
			}
		}
		table.Row(row...)
	}
	return table.String()
}

// AverageReport renders the per-backend mean over every operation.
func AverageReport(results Results) string {
	columns := presentBackends(results.Detailed)
	table := newReportTable()
	table.Headers("backend", "mean ms")
	for _, backend := range columns {
		table.Row(backend, fmt.Sprintf("%.3f", results.Average[backend]*1000))
	}
	return table.String()
}
