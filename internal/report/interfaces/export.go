package interfaces

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	report "store-monitoring/internal/report/domain"
)

// CSVHeader is the canonical column order of an exported report.
var CSVHeader = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// AppendRowsCSV writes the header and all rows to w.
func AppendRowsCSV(w io.Writer, rows []report.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.StoreID,
			strconv.FormatInt(row.UptimeLastHourMinutes, 10),
			formatHours(row.UptimeLastDayHours),
			formatHours(row.UptimeLastWeekHours),
			strconv.FormatInt(row.DowntimeLastHourMinutes, 10),
			formatHours(row.DowntimeLastDayHours),
			formatHours(row.DowntimeLastWeekHours),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseRowsCSV reads rows previously written by AppendRowsCSV.
func ParseRowsCSV(r io.Reader) ([]report.Row, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("report csv: read header: %w", err)
	}
	if len(header) != len(CSVHeader) {
		return nil, errors.New("report csv: unexpected header")
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("report csv: unexpected column %q", header[i])
		}
	}

	var rows []report.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("report csv: read row: %w", err)
		}
		row, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (report.Row, error) {
	var row report.Row
	if len(record) != len(CSVHeader) {
		return row, errors.New("report csv: short record")
	}
	row.StoreID = record[0]

	var err error
	if row.UptimeLastHourMinutes, err = strconv.ParseInt(record[1], 10, 64); err != nil {
		return row, fmt.Errorf("report csv: uptime_last_hour: %w", err)
	}
	if row.UptimeLastDayHours, err = strconv.ParseFloat(record[2], 64); err != nil {
		return row, fmt.Errorf("report csv: uptime_last_day: %w", err)
	}
	if row.UptimeLastWeekHours, err = strconv.ParseFloat(record[3], 64); err != nil {
		return row, fmt.Errorf("report csv: uptime_last_week: %w", err)
	}
	if row.DowntimeLastHourMinutes, err = strconv.ParseInt(record[4], 10, 64); err != nil {
		return row, fmt.Errorf("report csv: downtime_last_hour: %w", err)
	}
	if row.DowntimeLastDayHours, err = strconv.ParseFloat(record[5], 64); err != nil {
		return row, fmt.Errorf("report csv: downtime_last_day: %w", err)
	}
	if row.DowntimeLastWeekHours, err = strconv.ParseFloat(record[6], 64); err != nil {
		return row, fmt.Errorf("report csv: downtime_last_week: %w", err)
	}
	return row, nil
}

func formatHours(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// BuildReportXLSX renders a report workbook with a summary and a rows sheet.
func BuildReportXLSX(job *report.Job, rows []report.Row) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	rowsSheet := "rows"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rowsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Store Uptime Report")
	_ = f.SetCellValue(summarySheet, "A3", "Job")
	_ = f.SetCellValue(summarySheet, "B3", job.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Reference Time")
	_ = f.SetCellValue(summarySheet, "B4", job.FrozenNow.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Stores")
	_ = f.SetCellValue(summarySheet, "B5", job.StoreCount)
	_ = f.SetCellValue(summarySheet, "A6", "Warnings")
	_ = f.SetCellValue(summarySheet, "B6", len(job.Warnings))
	_ = f.SetCellValue(summarySheet, "A7", "Completed")
	_ = f.SetCellValue(summarySheet, "B7", job.CompletedAt.Format(time.RFC3339))

	for i, name := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, row := range rows {
		values := []any{
			row.StoreID,
			row.UptimeLastHourMinutes,
			row.UptimeLastDayHours,
			row.UptimeLastWeekHours,
			row.DowntimeLastHourMinutes,
			row.DowntimeLastDayHours,
			row.DowntimeLastWeekHours,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(rowsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders a minimal PDF for a report.
func BuildReportPDF(job *report.Job, rows []report.Row) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Store Uptime Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Job: %s", job.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Reference Time: %s", job.FrozenNow.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Stores: %d", job.StoreCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Warnings: %d", len(job.Warnings)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{60, 36, 36, 36, 36, 36, 36}
	for i, name := range CSVHeader {
		pdf.CellFormat(widths[i], 6, name, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		cells := []string{
			row.StoreID,
			strconv.FormatInt(row.UptimeLastHourMinutes, 10),
			formatHours(row.UptimeLastDayHours),
			formatHours(row.UptimeLastWeekHours),
			strconv.FormatInt(row.DowntimeLastHourMinutes, 10),
			formatHours(row.DowntimeLastDayHours),
			formatHours(row.DowntimeLastWeekHours),
		}
		pdf.CellFormat(widths[0], 6, cells[0], "1", 0, "L", false, 0, "")
		for i := 1; i < len(cells); i++ {
			pdf.CellFormat(widths[i], 6, cells[i], "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
