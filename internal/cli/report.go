package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/services"
)

// renderReport prints one row per listener plus a tally line.
func renderReport(w io.Writer, report services.RunReport) {
	fmt.Fprintf(w, "\nWeekly mix %s\n\n", report.Week)

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{ShowHeader: tw.Off}},
		}),
	)
	table.Header([]string{"User", "Outcome", "Playlist", "Tracks", "AI", "Anchor", "Fallback", "Detail"})

	var published, skipped, failed int
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		row := []string{res.Name, colorOutcome(res.Outcome), "-", "-", "-", "-", "-", res.Reason}
		switch res.Outcome {
		case services.OutcomeSuccess:
			published++
			r := res.Result
			row[2] = string(r.State)
			row[3] = strconv.Itoa(r.MixLen)
			row[4] = strconv.Itoa(r.Counts.AI)
			row[5] = strconv.Itoa(r.Counts.Anchor)
			row[6] = strconv.Itoa(r.Counts.Fallback)
			row[7] = r.PlaylistID
		case services.OutcomeSkipped:
			skipped++
		default:
			failed++
		}
		rows = append(rows, row)
	}
	table.Bulk(rows)
	table.Render()

	fmt.Fprintf(w, "\n%d published, %d skipped, %d failed\n", published, skipped, failed)
}

func colorOutcome(o services.Outcome) string {
	switch o {
	case services.OutcomeSuccess:
		return color.GreenString(string(o))
	case services.OutcomeSkipped:
		return color.YellowString(string(o))
	default:
		return color.RedString(string(o))
	}
}
