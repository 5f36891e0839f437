package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// Table styling.
var (
	headerFill = [3]int{41, 128, 185}
	altFill    = [3]int{245, 245, 245}
)

const (
	marginMM  = 14
	rowHeight = 7
)

var (
	teamColumns    = []column{{"Rank", 14}, {"Team", 52}, {"Lane", 18}, {"Laps", 18}, {"Distance", 26}, {"Laps/Hour", 24}, {"Fastest Lap", 30}}
	swimmerColumns = []column{{"Rank", 14}, {"Swimmer", 70}, {"Team", 52}, {"Laps", 20}, {"Distance", 26}}
)

type column struct {
	title string
	width float64
}

// RenderPDF writes r as an A4 PDF to w.
// PRE: r was produced by BuildResultsReport
// POST: w holds a complete PDF document, or an error is returned
func RenderPDF(r ResultsReport, w io.Writer) error {
	return render(r, w, true)
}

func render(r ResultsReport, w io.Writer, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(r.Header.Name+" results", true)
	pdf.SetCreator("SwimTrack", true)
	pdf.SetMargins(marginMM, 20, marginMM)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*marginMM

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		footer := fmt.Sprintf("Generated on %s | Page %d of {nb}", r.GeneratedAt, pdf.PageNo())
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW, 10, tr(r.Header.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentW, 8, "Competition Results", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	info := []string{
		"Date: " + r.Header.Date,
		"Location: " + r.Header.Location,
		"Lanes: " + r.Header.Lanes,
	}
	if r.Header.Started != "" {
		info = append(info, "Started: "+r.Header.Started)
	}
	if r.Header.Finished != "" {
		info = append(info, "Finished: "+r.Header.Finished)
	}
	for _, line := range info {
		pdf.CellFormat(contentW, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	sectionTitle(pdf, "Team Leaderboard")
	teamRows := make([][]string, 0, len(r.Teams))
	for _, t := range r.Teams {
		teamRows = append(teamRows, []string{
			strconv.Itoa(t.Rank),
			t.Team,
			fmt.Sprintf("Lane %d", t.Lane),
			strconv.Itoa(t.Laps),
			fmt.Sprintf("%dm", t.DistanceM),
			t.LapsPerHour,
			t.FastestLap,
		})
	}
	table(pdf, tr, teamColumns, teamRows)
	pdf.Ln(10)

	sectionTitle(pdf, "Top Swimmers")
	swimmerRows := make([][]string, 0, len(r.Swimmers))
	for _, s := range r.Swimmers {
		swimmerRows = append(swimmerRows, []string{
			strconv.Itoa(s.Rank),
			s.Name,
			s.Team,
			strconv.Itoa(s.Laps),
			fmt.Sprintf("%dm", s.DistanceM),
		})
	}
	table(pdf, tr, swimmerColumns, swimmerRows)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render results pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write results pdf: %w", err)
	}
	return nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

// table draws a grid with a blue header row and alternating row fill.
// The header is repeated when a row would overflow the page.
func table(pdf *fpdf.Fpdf, tr func(string) string, cols []column, rows [][]string) {
	head := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		for _, c := range cols {
			pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
	}

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	head()
	for i, row := range rows {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			head()
		}
		fill := i%2 == 1
		pdf.SetFillColor(altFill[0], altFill[1], altFill[2])
		for j, c := range cols {
			pdf.CellFormat(c.width, rowHeight, tr(row[j]), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
