// Package report prints a daily insulin breakdown for terminal use.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
)

type Options struct {
	NoColor bool
}

type palette struct {
	heading *color.Color
	rate    *color.Color
	bolus   *color.Color
	total   *color.Color
	muted   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		heading: color.New(color.Bold),
		rate:    color.New(color.FgCyan),
		bolus:   color.New(color.FgYellow),
		total:   color.New(color.FgGreen, color.Bold),
		muted:   color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range []*color.Color{p.heading, p.rate, p.bolus, p.total, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

// Render writes the adjusted schedule, the hourly vectors, the bolus list and
// the totals of result to w.
func Render(w io.Writer, result *aggregate.Result, opts Options) error {
	p := newPalette(opts.NoColor)

	if result.NoData {
		_, err := p.muted.Fprintf(w, "No relevant treatments found for %s\n", result.Date)
		return err
	}

	var b strings.Builder

	p.heading.Fprintln(&b, "Adjusted Basal Schedule (UTC):")
	for _, seg := range result.Schedule.Segments() {
		fmt.Fprintf(&b, "%02d:00 -> %02d:59: ", seg.StartHour, seg.EndHour)
		p.rate.Fprintf(&b, "%s U/hr", formatFloat(seg.Value))
		b.WriteString("\n")
	}

	p.heading.Fprint(&b, "Hourly Basal Rates:")
	fmt.Fprintf(&b, " %s\n", formatList(result.DefaultHourly[:]))

	p.heading.Fprint(&b, "Hourly Basal Delivery:")
	fmt.Fprintf(&b, " %s\n", formatList(result.Hourly[:]))

	p.heading.Fprint(&b, "Bolus Events:")
	b.WriteString(" ")
	p.bolus.Fprint(&b, formatList(result.Boluses))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total Bolus Insulin: %.2f U\n", result.TotalBolus)
	fmt.Fprintf(&b, "Basal Insulin: %.2f U\n", result.TotalBasal)
	p.total.Fprintf(&b, "Total Daily Insulin (TDD): %.2f U", result.TotalDose)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func formatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatFloat prints the shortest representation that round-trips, always
// with a fractional part.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
