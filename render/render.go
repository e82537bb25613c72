// Package render turns a drain's Tables into the human-readable table
// format specified in spec.md §6: an ASCII box-drawn Summary table and a
// per-call-site Detail listing. Ported from original_source/include/
// ctrack.hpp's BeautifulTable (box-drawing, optional ANSI color scheme,
// auto-scaled time units) into the teacher's plain io.Writer-based
// rendering idiom (nettrace/sampler/renderer.go writes straight to an
// io.Writer with fmt.Fprintf, no intermediate buffer type).
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Compaile/ctrack/internal/result"
	"github.com/Compaile/ctrack/internal/stats"
)

// ColorScheme holds the ANSI escape codes BeautifulTable applies to a
// table's border, header row, and data rows. The zero value renders
// without color.
type ColorScheme struct {
	Enabled    bool
	BorderCode string
	HeaderCode string
	RowCode    string
}

const resetCode = "\x1b[0m"

// DefaultColors renders without any ANSI escapes, matching a plain
// terminal or a redirected-to-file invocation.
var DefaultColors = ColorScheme{}

// AlternateColors mirrors ctrack.hpp's alternate_colors: cyan borders,
// bold headers, plain rows.
var AlternateColors = ColorScheme{
	Enabled:    true,
	BorderCode: "\x1b[36m",
	HeaderCode: "\x1b[1m",
	RowCode:    "",
}

// Options configures table rendering.
type Options struct {
	Colors        ColorScheme
	MaxPathLength int
}

// DefaultOptions returns the Options used by ctrack.Print and
// ctrack.ResultAsString.
func DefaultOptions() Options {
	return Options{Colors: DefaultColors, MaxPathLength: 48}
}

var numberPrinter = message.NewPrinter(language.English)

// Summary writes the Summary table: one row per retained call-site, in
// t.Summary's order (descending by TimeAEAll), with the exact column
// order from spec.md §6.
func Summary(w io.Writer, t result.Tables, opts Options) error {
	headers := []string{"File", "Function", "Line", "Calls", "%AE bracket", "%AE all", "Time AE", "Time A"}
	rows := make([][]string, 0, len(t.Summary))
	for _, row := range t.Summary {
		rows = append(rows, []string{
			shortenPath(row.CallSite.File, opts.MaxPathLength),
			row.CallSite.Function,
			fmt.Sprintf("%d", row.CallSite.Line),
			formatCount(row.Calls),
			formatPercent(row.PercentAEBracket),
			formatPercent(row.PercentAEAll),
			FormatDuration(row.TimeAEAll),
			FormatDuration(row.TimeAAll),
		})
	}
	drawTable(w, opts.Colors, headers, rows)
	_, err := fmt.Fprintf(w, "time_total=%s time_tracked=%s\n", FormatDuration(t.TimeTotal), FormatDuration(t.TimeTracked))
	return err
}

// Detail writes, for each call-site in t.Detail's order, a header
// identifying the site followed by its fastest/center/slowest windows
// and its global fields (spec.md §6's Detail table format).
func Detail(w io.Writer, t result.Tables, opts Options) error {
	for _, d := range t.Detail {
		cs := d.CallSite
		header := fmt.Sprintf("%s:%d %s", shortenPath(cs.File, opts.MaxPathLength), cs.Line, cs.Function)
		if opts.Colors.Enabled {
			header = opts.Colors.HeaderCode + header + resetCode
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		fmt.Fprintf(w, "  calls=%s threads=%d time=%s sd=%s cv=%.3f\n",
			formatCount(d.Stats.Count), d.Stats.ThreadCount,
			FormatDuration(d.Stats.SumInclusive), FormatDuration(int64(d.Stats.StdDev)), d.Stats.CV)
		writeWindow(w, "fastest", d.Stats.Fastest, false)
		writeWindow(w, "center", d.Stats.Center, true)
		if d.Stats.Center.Present {
			fmt.Fprintf(w, "    active=%s active_exclusive=%s\n",
				FormatDuration(d.Stats.CenterActive), FormatDuration(d.Stats.CenterActiveExclusive))
		}
		writeWindow(w, "slowest", d.Stats.Slowest, false)
	}
	return nil
}

func writeWindow(w io.Writer, label string, win stats.Window, withMedian bool) {
	if !win.Present {
		fmt.Fprintf(w, "  %-7s  (empty)\n", label)
		return
	}
	fmt.Fprintf(w, "  %-7s  min=%s mean=%s max=%s", label, FormatDuration(win.Min), FormatDuration(int64(win.Mean)), FormatDuration(win.Max))
	if withMedian {
		fmt.Fprintf(w, " median=%s", FormatDuration(win.Median))
	}
	fmt.Fprintln(w)
}

// FormatDuration renders ns with the auto-scaled unit rule from spec.md
// §6: ns, mcs, ms, or s, chosen to keep the leading number in [1, 999]
// whenever possible.
func FormatDuration(ns int64) string {
	if ns < 0 {
		ns = 0
	}
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%d ns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.1f mcs", float64(ns)/1_000)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.1f ms", float64(ns)/1_000_000)
	default:
		return fmt.Sprintf("%.2f s", float64(ns)/1_000_000_000)
	}
}

func formatPercent(frac float64) string {
	return fmt.Sprintf("%.1f%%", frac*100)
}

func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// shortenPath reduces path to its basename, truncating to at most max
// characters with a trailing ellipsis if even the basename is too long,
// per ctrack.hpp's stable_shortenPath.
func shortenPath(path string, max int) string {
	name := filepath.Base(path)
	if max <= 0 || len(name) <= max {
		return name
	}
	if max <= 3 {
		return name[:max]
	}
	return name[:max-3] + "..."
}

func drawTable(w io.Writer, colors ColorScheme, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	border := func() string {
		parts := make([]string, len(widths))
		for i, width := range widths {
			parts[i] = strings.Repeat("-", width+2)
		}
		return "+" + strings.Join(parts, "+") + "+"
	}

	writeRow := func(cells []string, code string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprintf(" %-*s ", widths[i], c)
		}
		line := "|" + strings.Join(parts, "|") + "|"
		if colors.Enabled && code != "" {
			fmt.Fprintln(w, code+line+resetCode)
		} else {
			fmt.Fprintln(w, line)
		}
	}

	borderLine := border()
	if colors.Enabled && colors.BorderCode != "" {
		borderLine = colors.BorderCode + borderLine + resetCode
	}
	fmt.Fprintln(w, borderLine)
	writeRow(headers, colors.HeaderCode)
	fmt.Fprintln(w, borderLine)
	for _, r := range rows {
		writeRow(r, colors.RowCode)
	}
	fmt.Fprintln(w, borderLine)
}
