package chat

import "testing"

func TestBuildChartsRequiresChartIntent(t *testing.T) {
	answer := "North: 45000\nSouth: 30000\n"

	if charts := BuildCharts("what were the figures", answer); len(charts) != 0 {
		t.Errorf("no chart keyword in query, got %d charts", len(charts))
	}
	if charts := BuildCharts("plot the regional figures", answer); len(charts) != 1 {
		t.Fatalf("expected one chart, got %d", len(charts))
	}
}

func TestBuildChartsFromBullets(t *testing.T) {
	answer := "Here is the revenue split:\n- North: 45,000\n- South: 30000\n- East: 12500.50\n"

	charts := BuildCharts("visualize revenue by region", answer)
	if len(charts) != 1 {
		t.Fatalf("expected one chart, got %d", len(charts))
	}

	chart := charts[0]
	if chart.Title != "Revenue Analysis" {
		t.Errorf("Title = %q, want Revenue Analysis", chart.Title)
	}
	if len(chart.Labels) != 3 || len(chart.Values) != 3 {
		t.Fatalf("got %d labels / %d values, want 3/3", len(chart.Labels), len(chart.Values))
	}
	if chart.Labels[0] != "North" || chart.Values[0] != 45000 {
		t.Errorf("first point = %s/%v, want North/45000", chart.Labels[0], chart.Values[0])
	}
	if chart.Values[2] != 12500.50 {
		t.Errorf("third value = %v, want 12500.50", chart.Values[2])
	}
}

func TestBuildChartsFromTable(t *testing.T) {
	answer := "| Product | Units |\n| Widgets | 1200 |\n| Gadgets | 800 |\n"

	charts := BuildCharts("chart the product units", answer)
	if len(charts) != 1 {
		t.Fatalf("expected one chart, got %d", len(charts))
	}
	if len(charts[0].Labels) < 2 {
		t.Errorf("expected at least 2 table rows, got %v", charts[0].Labels)
	}
}

func TestBuildChartsNeedsTwoPoints(t *testing.T) {
	if charts := BuildCharts("chart the balance", "Cash: 5000\n"); len(charts) != 0 {
		t.Errorf("single data point should not produce a chart, got %d", len(charts))
	}
	if charts := BuildCharts("chart the outcome", "no numbers here"); len(charts) != 0 {
		t.Errorf("unparseable answer should produce no charts, got %d", len(charts))
	}
}

func TestDetectChartType(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"show a pie chart of expenses", "pie"},
		{"expense breakdown by category", "pie"},
		{"revenue trend over time", "line"},
		{"monthly sales figures", "line"},
		{"correlation between cost and revenue", "scatter"},
		{"compare balances", "bar"},
		{"just the numbers", "bar"},
	}
	for _, tc := range cases {
		if got := DetectChartType(tc.query); got != tc.want {
			t.Errorf("DetectChartType(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}
