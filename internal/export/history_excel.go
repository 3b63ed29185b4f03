package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sleepleague/sleepleague/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

// HistoryWorkbook renders a date range of score events into a single-sheet
// workbook: one row per event, joined with the member's name and that day's
// reported minutes.
func HistoryWorkbook(members []models.Member, events []models.ScoreEvent, entries []models.SleepEntry) (*excelize.File, error) {
	nameByID := make(map[string]string, len(members))
	for _, m := range members {
		nameByID[m.UserID] = m.Name
	}
	minutesByKey := make(map[string]int, len(entries))
	for _, en := range entries {
		minutesByKey[en.UserID+"/"+en.Day.Format("2006-01-02")] = en.SleepMinutes
	}

	spec := SheetSpec{
		Title:  "History",
		Header: []string{"Date", "Member", "Sleep (min)", "Points", "Reason"},
	}
	for _, ev := range events {
		name := nameByID[ev.UserID]
		if name == "" {
			name = ev.UserID
		}
		spec.Rows = append(spec.Rows, []string{
			ev.Day.Format("2006-01-02"),
			name,
			fmt.Sprintf("%d", minutesByKey[ev.UserID+"/"+ev.Day.Format("2006-01-02")]),
			fmt.Sprintf("%d", ev.Points),
			ev.Reason,
		})
	}
	return buildWorkbook([]SheetSpec{spec})
}

func buildWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}

		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}

		// width heuristic: header length vs the first rows of data
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return f, nil
}

// Filename suggests a download name for the range.
func Filename(groupName string, from, to time.Time) string {
	return fmt.Sprintf("%s-history-%s-%s.xlsx",
		groupName, from.Format("20060102"), to.Format("20060102"))
}

func colName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
