package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// barWidth is the character budget for proportional histogram bars.
const barWidth = 40

// bar renders a proportional bar: filled blocks for the share of total,
// light blocks for the rest.
func bar(count, total int) string {
	if total <= 0 {
		return strings.Repeat("░", barWidth)
	}
	filled := count * barWidth / total
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// sectionHeader prints a delimited section title.
func sectionHeader(w io.Writer, title string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, contract.HeaderColor.Sprint(title))
	fmt.Fprintln(w, line)
}

// writeHistogramBars prints one bar line per key with count and share.
// colorKey lets the severity section color its labels.
func writeHistogramBars(w io.Writer, title string, hist map[string]int, colorKey func(string) string) {
	if len(hist) == 0 {
		return
	}
	total := schema.SumCounts(hist)
	fmt.Fprintf(w, "\n%s\n", contract.AccentColor.Sprint(title))

	maxKey := 0
	entries := schema.RankEntries(hist, 0)
	for _, e := range entries {
		if len(e.Key) > maxKey {
			maxKey = len(e.Key)
		}
	}
	for _, e := range entries {
		label := e.Key + strings.Repeat(" ", maxKey-len(e.Key))
		if colorKey != nil {
			label = colorKey(e.Key) + strings.Repeat(" ", maxKey-len(e.Key))
		}
		share := float64(e.Count) / float64(total) * 100
		fmt.Fprintf(w, "  %s %s %6d (%5.1f%%)\n", label, bar(e.Count, total), e.Count, share)
	}
}

// writeRankedTable prints a top-N table for one histogram dimension.
// label maps keys to display form; nil keeps them raw.
func writeRankedTable(w io.Writer, title, keyHeader string, hist map[string]int, label func(string) string, cfg *contract.Config) error {
	entries := schema.RankEntries(hist, cfg.TopN)
	if len(entries) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", contract.AccentColor.Sprint(title))
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", keyHeader, "Count"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := terminalWidth(cfg) - 20
	var data [][]string
	for _, e := range entries {
		key := e.Key
		if label != nil {
			key = label(key)
		}
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			contract.Truncate(key, maxWidth),
			strconv.Itoa(e.Count),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCrossDimension prints the top function types within each
// severity level.
func writeCrossDimension(w io.Writer, cross map[string]map[string]int) {
	if len(cross) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", contract.AccentColor.Sprint("Top types per severity"))

	severities := make([]string, 0, len(cross))
	for sev := range cross {
		severities = append(severities, sev)
	}
	sort.Strings(severities)

	for _, sev := range severities {
		fmt.Fprintf(w, "\n%s\n", contract.ColorSeverity(sev))
		for _, e := range schema.RankEntries(cross[sev], 5) {
			fmt.Fprintf(w, "  %d. %s: %d\n", e.Rank, e.Key, e.Count)
		}
	}
}

// writeErrors lists failed projects at the end of the report.
func writeErrors(w io.Writer, errors []schema.ProjectError) {
	if len(errors) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", contract.HighColor.Sprint("Failed projects"))
	for _, pe := range errors {
		fmt.Fprintf(w, "  %s: %s\n", pe.ProjectID, pe.Err)
	}
}

// writeAggregateConsole renders the flagged-function report as text.
func writeAggregateConsole(w io.Writer, report *schema.AggregateReport, cfg *contract.Config) error {
	color.NoColor = !cfg.UseColors

	sectionHeader(w, "UNCOMMENTED FUNCTION ANALYSIS")
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(contract.DateTimeFormat))
	fmt.Fprintf(w, "Projects:  %d total, %d succeeded, %d failed (%.1f%% success)\n",
		report.Summary.TotalProjects,
		report.Summary.SuccessfulProjects,
		report.Summary.FailedProjects,
		report.SuccessRate())
	fmt.Fprintf(w, "Functions: %d\n", report.Summary.TotalFunctionCount)

	writeHistogramBars(w, "By severity", report.BySeverity, contract.ColorSeverity)
	if err := writeRankedTable(w, "Top types", "Type", report.ByType, nil, cfg); err != nil {
		return err
	}
	if err := writeRankedTable(w, "Top rules", "Rule", report.ByRule, nil, cfg); err != nil {
		return err
	}
	if err := writeRankedTable(w, "Top projects", "Project", report.ProjectCounts(), report.ProjectLabel, cfg); err != nil {
		return err
	}
	writeCrossDimension(w, report.TypesBySeverity())
	writeErrors(w, report.Errors)
	return nil
}

// writeDuplicateConsole renders the duplicate-group report as text.
func writeDuplicateConsole(w io.Writer, report *schema.DuplicateReport, cfg *contract.Config) error {
	color.NoColor = !cfg.UseColors

	sectionHeader(w, "DUPLICATE FUNCTION ANALYSIS")
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(contract.DateTimeFormat))
	fmt.Fprintf(w, "Projects:  %d total, %d succeeded, %d failed\n",
		report.Summary.TotalProjects,
		report.Summary.SuccessfulProjects,
		report.Summary.FailedProjects)
	fmt.Fprintf(w, "Groups:    %d (%d duplicate functions)\n", report.TotalGroups, report.TotalFunctions)

	writeHistogramBars(w, "By language", report.ByLanguage, nil)
	writeHistogramBars(w, "By complexity", report.ByComplexity, nil)

	if len(report.TopGroups) > 0 {
		fmt.Fprintf(w, "\n%s\n", contract.AccentColor.Sprint("Largest duplicate groups"))
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Group", "Functions", "Files", "Complexity", "Language", "Project"})
		table.Configure(func(tcfg *tablewriter.Config) {
			tcfg.Row.Alignment.Global = tw.AlignRight
		})

		maxWidth := terminalWidth(cfg) - 50
		var data [][]string
		for i, g := range report.TopGroups {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				contract.Truncate(g.GroupName, maxWidth),
				strconv.Itoa(g.NumFunctions),
				strconv.Itoa(g.NumFiles),
				strconv.Itoa(g.MaxComplexity),
				g.Language,
				report.ProjectLabel(g.ProjectID),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	writeErrors(w, report.Errors)
	return nil
}
