package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// Chart is a neutral chart description for the caller to render;
// styling is a presentation concern and stays out of the core.
type Chart struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

var chartKeywords = []string{
	"chart", "graph", "plot", "visualize", "visualization",
	"show", "display", "trend", "comparison",
}

// Series extraction patterns, tried in order until one yields at least
// two data points.
var (
	bulletSeriesPattern = regexp.MustCompile(`(?m)^[-*]\s*([A-Za-z][A-Za-z\s]*):\s*([\d,\.]+)\s*$`)
	plainSeriesPattern  = regexp.MustCompile(`(?m)^([A-Za-z][A-Za-z\s]*):\s*([\d,\.]+)\s*$`)
	tableSeriesPattern  = regexp.MustCompile(`\|\s*([A-Za-z][A-Za-z\s]*)\s*\|\s*([\d,\.]+)\s*\|`)
)

// labels that look like series entries but are answer scaffolding.
var skipLabels = []string{
	"output", "format", "context", "question",
	"totals", "summary", "note", "status", "retrieved",
}

// DetectChartType infers the chart type the query is asking for.
func DetectChartType(query string) string {
	lowered := strings.ToLower(query)

	typeKeywords := []struct {
		chartType string
		keywords  []string
	}{
		{"pie", []string{"pie", "donut", "doughnut"}},
		{"line", []string{"line", "trend", "over time", "timeline"}},
		{"scatter", []string{"scatter", "correlation", "relationship"}},
		{"bar", []string{"bar", "column", "vertical"}},
	}
	for _, entry := range typeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.chartType
			}
		}
	}

	switch {
	case containsAny(lowered, "breakdown", "composition", "percentage", "share", "split"):
		return "pie"
	case containsAny(lowered, "monthly", "yearly", "quarterly", "daily", "weekly"):
		return "line"
	}
	return "bar"
}

// BuildCharts extracts chart payloads from the answer when the query
// asked for a visualization. Anything it cannot parse yields no charts,
// never an error.
func BuildCharts(query, answer string) []Chart {
	if !containsAny(strings.ToLower(query), chartKeywords...) {
		return nil
	}

	labels, values := extractSeries(answer)
	if len(labels) < 2 {
		return nil
	}

	return []Chart{{
		Type:   DetectChartType(query),
		Title:  chartTitle(query),
		XLabel: "Category",
		YLabel: "Value",
		Labels: labels,
		Values: values,
	}}
}

func extractSeries(answer string) ([]string, []float64) {
	for _, pattern := range []*regexp.Regexp{bulletSeriesPattern, plainSeriesPattern, tableSeriesPattern} {
		matches := pattern.FindAllStringSubmatch(answer, -1)
		labels, values := collectSeries(matches)
		if len(labels) >= 2 {
			return labels, values
		}
	}
	return nil, nil
}

func collectSeries(matches [][]string) ([]string, []float64) {
	var labels []string
	var values []float64
	for _, match := range matches {
		label := strings.TrimSpace(match[1])
		if label == "" || len(label) > 50 || containsAny(strings.ToLower(label), skipLabels...) {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
		if err != nil {
			continue
		}
		labels = append(labels, label)
		values = append(values, value)
	}
	return labels, values
}

func chartTitle(query string) string {
	lowered := strings.ToLower(query)

	titles := []struct {
		title    string
		keywords []string
	}{
		{"Revenue Analysis", []string{"revenue", "sales", "income"}},
		{"Profit Analysis", []string{"profit", "margin", "earnings"}},
		{"Cost Analysis", []string{"cost", "expense", "expenditure"}},
		{"Regional Analysis", []string{"region", "territory", "area", "location"}},
		{"Tally Financial Analysis", []string{"tally", "ledger", "account"}},
	}
	for _, entry := range titles {
		if containsAny(lowered, entry.keywords...) {
			return entry.title
		}
	}
	return "Data Visualization"
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
