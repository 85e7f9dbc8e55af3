package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"biometric-insights/src/models"
	"biometric-insights/src/utils"

	"github.com/xuri/excelize/v2"
)

const timelineSheet = "Timeline"

// -----------------------------------------------------------------------------

// timelineRecords flattens the timeline into string cells, header first.
// Null values are empty cells.
func timelineRecords(timeline *models.MTimeline) [][]string {
	records := make([][]string, 0, len(timeline.Rows)+1)
	records = append(records, append([]string{}, timeline.Columns...))

	byName := make(map[string]models.MColumn, len(timeline.Fields))
	for _, f := range timeline.Fields {
		byName[f.Name] = f
	}

	for i := range timeline.Rows {
		row := &timeline.Rows[i]
		record := make([]string, len(timeline.Columns))
		for j, name := range timeline.Columns {
			if name == "day" {
				record[j] = row.Day.Format(utils.DayLayout)
				continue
			}
			f, ok := byName[name]
			if !ok {
				continue
			}
			if v := row.Field(f.Source, f.Field); v != nil {
				record[j] = strconv.FormatFloat(*v, 'f', -1, 64)
			}
		}
		records = append(records, record)
	}
	return records
}

// -----------------------------------------------------------------------------

// WriteTimelineCSV writes the merged timeline with its merged column names.
func WriteTimelineCSV(w io.Writer, timeline *models.MTimeline) error {
	if timeline == nil {
		return fmt.Errorf("no timeline to export")
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(timelineRecords(timeline)); err != nil {
		return fmt.Errorf("failed to write timeline csv: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// TimelineXLSX renders the timeline as a single sheet workbook.
func TimelineXLSX(timeline *models.MTimeline) ([]byte, error) {
	if timeline == nil {
		return nil, fmt.Errorf("no timeline to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(timelineSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	records := timelineRecords(timeline)
	for r, record := range records {
		for c, raw := range record {
			if raw == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}

			var value interface{} = raw
			if r > 0 && timeline.Columns[c] != "day" {
				if v, err := strconv.ParseFloat(raw, 64); err == nil {
					value = v
				}
			}
			if err := f.SetCellValue(timelineSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if len(timeline.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(timeline.Columns), 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStyle(timelineSheet, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	if err := f.SetPanes(timelineSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
