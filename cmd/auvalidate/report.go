package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dto "github.com/prometheus/client_model/go"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			PaddingLeft(4)

	metricStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func (v *validator) report() string {
	var b strings.Builder
	info := v.desc.Info()
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s %s (%s %s %s)",
		info.Name, info.Version, info.Type, info.SubType, info.Manufacturer)))

	failed, skipped := 0, 0
	for _, r := range v.results {
		var line string
		switch {
		case r.err == nil:
			line = passStyle.Render("PASS") + "  " + r.name
		case errors.Is(r.err, errSkipped):
			skipped++
			line = skipStyle.Render("SKIP") + "  " + r.name
		default:
			failed++
			line = failStyle.Render("FAIL") + "  " + r.name + ": " + r.err.Error()
		}
		fmt.Fprintln(&b, line)
		for _, n := range r.notes {
			fmt.Fprintln(&b, noteStyle.Render(n))
		}
	}

	if v.opts.showMetrics {
		fmt.Fprintln(&b)
		for _, line := range v.metricLines() {
			fmt.Fprintln(&b, metricStyle.Render(line))
		}
	}

	fmt.Fprintln(&b)
	summary := fmt.Sprintf("%d checks, %d failed, %d skipped", len(v.results), failed, skipped)
	if failed > 0 {
		fmt.Fprintln(&b, failStyle.Render(summary))
	} else {
		fmt.Fprintln(&b, passStyle.Render(summary))
	}
	return b.String()
}

// metricLines renders the gathered bridge metrics in exposition-like form.
func (v *validator) metricLines() []string {
	families, err := v.reg.Gather()
	if err != nil {
		return []string{"gather metrics: " + err.Error()}
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels(m), value(m)))
		}
	}
	sort.Strings(lines)
	return lines
}

func labels(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for k, p := range pairs {
		parts[k] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.GetCounter().GetValue()
	case m.Gauge != nil:
		return m.GetGauge().GetValue()
	}
	return 0
}
