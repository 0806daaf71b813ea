package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"camportal/internal/stats"
)

// Workbook palette, kept in sync with the portal's dashboard colors.
const (
	colorHeaderFill = "2B3E50"
	colorGreen      = "D4EDDA"
	colorYellow     = "FFF3CD"
	colorRed        = "F8D7DA"
	colorGray       = "E2E3E5"
	colorOnline     = "0F5132"
	colorOffline    = "842029"
	colorBorder     = "DEE2E6"
	colorLabel      = "555555"
)

const maxColWidth = 40

// sheetStyles holds the registered style ids for one workbook.
type sheetStyles struct {
	header      int
	cell        int
	green       int
	yellow      int
	red         int
	gray        int
	online      int
	offline     int
	title       int
	section     int
	label       int
	value       int
	tableHeader int
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		borders = append(borders, excelize.Border{Type: s, Color: colorBorder, Style: 1})
	}
	return borders
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	st := &sheetStyles{}
	var err error

	register := func(dst *int, style *excelize.Style) {
		if err != nil {
			return
		}
		*dst, err = f.NewStyle(style)
	}

	register(&st.header, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	register(&st.cell, &excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorder(),
	})

	fill := func(dst *int, color string) {
		register(dst, &excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{Vertical: "center"},
			Border:    thinBorder(),
		})
	}
	fill(&st.green, colorGreen)
	fill(&st.yellow, colorYellow)
	fill(&st.red, colorRed)
	fill(&st.gray, colorGray)

	register(&st.online, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorOnline},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorGreen}},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorder(),
	})
	register(&st.offline, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorOffline},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorRed}},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorder(),
	})

	register(&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	register(&st.section, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11, Color: colorHeaderFill}})
	register(&st.label, &excelize.Style{Font: &excelize.Font{Color: colorLabel}})
	register(&st.value, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	register(&st.tableHeader, &excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF", Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderFill}},
		Border: thinBorder(),
	})

	if err != nil {
		return nil, fmt.Errorf("register styles: %w", err)
	}
	return st, nil
}

// coverage picks the fill style for a coverage percentage.
func (st *sheetStyles) coverage(pct float64) int {
	switch {
	case pct >= 90:
		return st.green
	case pct >= 50:
		return st.yellow
	}
	return st.red
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, sheet string, row, style int, values ...any) error {
	for i, v := range values {
		cell := cellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func autoWidth(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	widths := map[int]float64{}
	for _, row := range rows {
		for ci, val := range row {
			if l := float64(len(val)); l > widths[ci] {
				widths[ci] = l
			}
		}
	}
	for ci, w := range widths {
		col, err := excelize.ColumnNumberToName(ci + 1)
		if err != nil {
			return err
		}
		w += 3
		if w > maxColWidth {
			w = maxColWidth
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string, lastCol, lastRow int) error {
	if err := f.AutoFilter(sheet, "A1:"+cellName(lastCol, lastRow), nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func gapOrDash(seconds int64) any {
	if seconds > 0 {
		return stats.FormatDuration(float64(seconds))
	}
	return "-"
}

// Builder renders a sweep result into a 4-sheet workbook:
// TLDR overview, per-camera Summary, per-day Daily, and flagged Problems.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Build renders the workbook. The caller owns the returned file and must
// Close it.
func (b *Builder) Build(res *Result) (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	build := func() error {
		if err := f.SetSheetName("Sheet1", "TLDR"); err != nil {
			return err
		}
		if err := b.writeTLDR(f, st, res); err != nil {
			return fmt.Errorf("tldr sheet: %w", err)
		}
		if err := b.writeSummary(f, st, res); err != nil {
			return fmt.Errorf("summary sheet: %w", err)
		}
		if err := b.writeDaily(f, st, res); err != nil {
			return fmt.Errorf("daily sheet: %w", err)
		}
		if err := b.writeProblems(f, st, res); err != nil {
			return fmt.Errorf("problems sheet: %w", err)
		}
		return nil
	}
	if err := build(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteTo renders the workbook directly to w and returns the byte count.
func (b *Builder) WriteTo(w io.Writer, res *Result) (int64, error) {
	f, err := b.Build(res)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

func (b *Builder) writeTLDR(f *excelize.File, st *sheetStyles, res *Result) error {
	const sheet = "TLDR"
	data := res.Data

	for col, width := range map[string]float64{"A": 4, "B": 30, "C": 18, "D": 18, "E": 18, "F": 18, "G": 18} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	total := len(data)
	online, withArchive := 0, 0
	var coverages, depths []float64
	for i := range data {
		if data[i].Camera.IsOnline {
			online++
		}
		if data[i].Archive.TotalFragments > 0 {
			withArchive++
			coverages = append(coverages, data[i].Archive.CoveragePct)
			depths = append(depths, data[i].Archive.DepthDays)
		}
	}
	noArchive := total - withArchive
	avg := func(xs []float64) float64 {
		if len(xs) == 0 {
			return 0
		}
		var s float64
		for _, x := range xs {
			s += x
		}
		return s / float64(len(xs))
	}

	green, yellow, red := 0, 0, 0
	for _, c := range coverages {
		switch {
		case c >= 90:
			green++
		case c >= 50:
			yellow++
		case c > 0:
			red++
		}
	}

	set := func(col, row int, v any, style int) error {
		cell := cellName(col, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, style)
	}

	row := 2
	if err := set(2, row, "Archive Quality Report", st.title); err != nil {
		return err
	}
	row++
	meta := fmt.Sprintf("Period: last %d days  |  Generated: %s", res.PeriodDays, res.GeneratedAt.Format("2006-01-02 15:04"))
	if err := set(2, row, meta, st.label); err != nil {
		return err
	}
	row += 2

	if err := set(2, row, "Overview", st.section); err != nil {
		return err
	}
	row++
	overview := []struct {
		label string
		value any
	}{
		{"Total cameras", total},
		{"Online / Offline", fmt.Sprintf("%d / %d", online, total-online)},
		{"With archive / No archive", fmt.Sprintf("%d / %d", withArchive, noArchive)},
		{"Avg coverage", fmt.Sprintf("%.1f%%", avg(coverages))},
		{"Avg archive depth", fmt.Sprintf("%.1f days", avg(depths))},
	}
	for _, o := range overview {
		if err := set(2, row, o.label, st.label); err != nil {
			return err
		}
		if err := set(3, row, o.value, st.value); err != nil {
			return err
		}
		row++
	}
	row++

	if err := set(2, row, "Quality Distribution", st.section); err != nil {
		return err
	}
	row++
	dist := []struct {
		label string
		count int
		style int
	}{
		{"Coverage >= 90%", green, st.green},
		{"Coverage 50-89%", yellow, st.yellow},
		{"Coverage < 50%", red, st.red},
		{"No archive", noArchive, st.gray},
	}
	for _, d := range dist {
		if err := set(2, row, d.label, st.label); err != nil {
			return err
		}
		if err := set(3, row, d.count, d.style); err != nil {
			return err
		}
		pct := 0.0
		if total > 0 {
			pct = float64(d.count) / float64(total) * 100
		}
		if err := set(4, row, fmt.Sprintf("%.1f%%", pct), st.label); err != nil {
			return err
		}
		row++
	}
	row++

	table := func(title string, headers []string, rows [][]any, highlight func(entry []any, col int) int) error {
		if err := set(2, row, title, st.section); err != nil {
			return err
		}
		row++
		for ci, h := range headers {
			if err := set(ci+2, row, h, st.tableHeader); err != nil {
				return err
			}
		}
		row++
		for _, entry := range rows {
			for ci, v := range entry {
				style := st.cell
				if highlight != nil {
					if s := highlight(entry, ci); s != 0 {
						style = s
					}
				}
				if err := set(ci+2, row, v, style); err != nil {
					return err
				}
			}
			row++
		}
		row++
		return nil
	}

	worst := make([]CameraArchive, len(data))
	copy(worst, data)
	sort.SliceStable(worst, func(i, j int) bool {
		return worst[i].Archive.CoveragePct < worst[j].Archive.CoveragePct
	})
	worst = topN(worst, 10)
	worstRows := make([][]any, 0, len(worst))
	for i := range worst {
		ca := &worst[i]
		worstRows = append(worstRows, []any{
			ca.Camera.DisplayName(), ca.Camera.Vendor, ca.Camera.DataCenterName(),
			ca.Archive.CoveragePct, gapOrDash(ca.Archive.MaxGap), ca.Archive.GapsCount,
		})
	}
	if err := table("Worst Coverage (top 10)",
		[]string{"Name", "Vendor", "DC", "Coverage %", "Max Gap", "Gaps"},
		worstRows,
		func(entry []any, col int) int {
			if col == 3 {
				return st.coverage(entry[3].(float64))
			}
			return 0
		}); err != nil {
		return err
	}

	mostGaps := filterSorted(data,
		func(ca *CameraArchive) bool { return ca.Archive.GapsCount > 0 },
		func(a, b *CameraArchive) bool { return a.Archive.TotalGapTime > b.Archive.TotalGapTime })
	gapRows := make([][]any, 0, len(mostGaps))
	for i := range mostGaps {
		ca := &mostGaps[i]
		gapRows = append(gapRows, []any{
			ca.Camera.DisplayName(), ca.Camera.Vendor, ca.Camera.DataCenterName(),
			ca.Archive.GapsCount, gapOrDash(ca.Archive.TotalGapTime), ca.Archive.CoveragePct,
		})
	}
	if err := table("Most Gaps (top 10)",
		[]string{"Name", "Vendor", "DC", "Gaps", "Total Gap Time", "Coverage %"},
		gapRows, nil); err != nil {
		return err
	}

	longest := filterSorted(data,
		func(ca *CameraArchive) bool { return ca.Archive.MaxGap > 0 },
		func(a, b *CameraArchive) bool { return a.Archive.MaxGap > b.Archive.MaxGap })
	longestRows := make([][]any, 0, len(longest))
	for i := range longest {
		ca := &longest[i]
		longestRows = append(longestRows, []any{
			ca.Camera.DisplayName(), ca.Camera.Vendor, ca.Camera.DataCenterName(),
			stats.FormatDuration(float64(ca.Archive.MaxGap)), ca.Archive.GapsCount, ca.Archive.CoveragePct,
		})
	}
	longestStyles := make([]int, len(longest))
	for i := range longest {
		switch gap := longest[i].Archive.MaxGap; {
		case gap > ProblemMaxGapThreshold:
			longestStyles[i] = st.red
		case gap > 300:
			longestStyles[i] = st.yellow
		}
	}
	rowIdx := 0
	if err := table("Longest Single Gap (top 10)",
		[]string{"Name", "Vendor", "DC", "Max Gap", "Gaps", "Coverage %"},
		longestRows,
		func(entry []any, col int) int {
			style := 0
			if col == 3 && rowIdx < len(longestStyles) {
				style = longestStyles[rowIdx]
			}
			if col == len(entry)-1 {
				rowIdx++
			}
			return style
		}); err != nil {
		return err
	}

	return nil
}

func (b *Builder) writeSummary(f *excelize.File, st *sheetStyles, res *Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{
		"Name", "UID", "SN", "Vendor", "Model", "Address",
		"Data Center", "Status", "Depth (days)", "Recorded (h)",
		"Coverage %", "Fragments", "Avg Fragment", "Gaps > 1m",
		"Max Gap", "Total Gap Time",
	}
	if err := setRow(f, sheet, 1, st.header, headers...); err != nil {
		return err
	}

	restyle := func(sheet string, col, row, style int) error {
		cell := cellName(col, row)
		return f.SetCellStyle(sheet, cell, cell, style)
	}

	for i := range res.Data {
		ca := &res.Data[i]
		a := ca.Archive
		row := i + 2

		status := "Offline"
		if ca.Camera.IsOnline {
			status = "Online"
		}
		recordedH := 0.0
		if a.TotalRecorded > 0 {
			recordedH = float64(a.TotalRecorded) / 3600
		}
		avgFragment := any("-")
		if a.AvgFragment > 0 {
			avgFragment = stats.FormatDuration(a.AvgFragment)
		}

		if err := setRow(f, sheet, row, st.cell,
			ca.Camera.DisplayName(), ca.Camera.UID, ca.Camera.SN,
			ca.Camera.Vendor, ca.Camera.Model, ca.Camera.Address,
			ca.Camera.DataCenterName(), status, a.DepthDays, recordedH,
			a.CoveragePct, a.TotalFragments, avgFragment, a.GapsCount,
			gapOrDash(a.MaxGap), gapOrDash(a.TotalGapTime),
		); err != nil {
			return err
		}

		statusStyle := st.offline
		if ca.Camera.IsOnline {
			statusStyle = st.online
		}
		if err := restyle(sheet, 8, row, statusStyle); err != nil {
			return err
		}
		if err := restyle(sheet, 11, row, st.coverage(a.CoveragePct)); err != nil {
			return err
		}
		if a.DepthDays < ProblemDepthThreshold {
			if err := restyle(sheet, 9, row, st.red); err != nil {
				return err
			}
		} else if a.DepthDays < 3 {
			if err := restyle(sheet, 9, row, st.yellow); err != nil {
				return err
			}
		}
		if a.MaxGap > ProblemMaxGapThreshold {
			if err := restyle(sheet, 15, row, st.red); err != nil {
				return err
			}
		} else if a.MaxGap > 300 {
			if err := restyle(sheet, 15, row, st.yellow); err != nil {
				return err
			}
		}
	}

	if err := freezeHeader(f, sheet, len(headers), len(res.Data)+1); err != nil {
		return err
	}
	return autoWidth(f, sheet)
}

func (b *Builder) writeDaily(f *excelize.File, st *sheetStyles, res *Result) error {
	const sheet = "Daily"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{
		"Name", "UID", "Date", "Recorded (h)", "Coverage %",
		"Fragments", "Gaps > 1m", "Max Gap",
	}
	if err := setRow(f, sheet, 1, st.header, headers...); err != nil {
		return err
	}

	row := 2
	for i := range res.Data {
		ca := &res.Data[i]
		for _, day := range ca.Archive.Daily {
			if err := setRow(f, sheet, row, st.cell,
				ca.Camera.DisplayName(), ca.Camera.UID, day.Date,
				day.RecordedH, day.CoveragePct, day.Fragments,
				day.GapsCount, gapOrDash(day.MaxGap),
			); err != nil {
				return err
			}
			cell := cellName(5, row)
			if err := f.SetCellStyle(sheet, cell, cell, st.coverage(day.CoveragePct)); err != nil {
				return err
			}
			row++
		}
	}

	if err := freezeHeader(f, sheet, len(headers), row-1); err != nil {
		return err
	}
	return autoWidth(f, sheet)
}

func (b *Builder) writeProblems(f *excelize.File, st *sheetStyles, res *Result) error {
	const sheet = "Problems"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{
		"Name", "UID", "Vendor", "Model", "Address", "Data Center",
		"Status", "Depth (days)", "Coverage %", "Max Gap", "Reason",
	}
	if err := setRow(f, sheet, 1, st.header, headers...); err != nil {
		return err
	}

	row := 2
	for i := range res.Data {
		ca := &res.Data[i]
		if !ca.IsProblem() {
			continue
		}
		a := ca.Archive

		status := "Offline"
		if ca.Camera.IsOnline {
			status = "Online"
		}
		reasons := ""
		for j, r := range ca.ProblemReasons() {
			if j > 0 {
				reasons += "; "
			}
			reasons += r
		}

		if err := setRow(f, sheet, row, st.cell,
			ca.Camera.DisplayName(), ca.Camera.UID, ca.Camera.Vendor,
			ca.Camera.Model, ca.Camera.Address, ca.Camera.DataCenterName(),
			status, a.DepthDays, a.CoveragePct, gapOrDash(a.MaxGap), reasons,
		); err != nil {
			return err
		}

		statusStyle := st.offline
		if ca.Camera.IsOnline {
			statusStyle = st.online
		}
		for col, style := range map[int]int{
			7:  statusStyle,
			9:  st.coverage(a.CoveragePct),
			11: st.red,
		} {
			cell := cellName(col, row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
		row++
	}

	if err := freezeHeader(f, sheet, len(headers), row-1); err != nil {
		return err
	}
	return autoWidth(f, sheet)
}

func topN(xs []CameraArchive, n int) []CameraArchive {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

func filterSorted(data []CameraArchive, keep func(*CameraArchive) bool, less func(a, b *CameraArchive) bool) []CameraArchive {
	out := make([]CameraArchive, 0, len(data))
	for i := range data {
		if keep(&data[i]) {
			out = append(out, data[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return topN(out, 10)
}
