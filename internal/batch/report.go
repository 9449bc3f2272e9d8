package batch

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// WriteReport writes rows to path in the format its extension names
// (csv, parquet or json lines).
func (p *Pipeline) WriteReport(path string, rows []ReportRow) error {
	format := DetectFileFormat(path)
	if err := WriteReport(path, rows); err != nil {
		return err
	}
	p.logger.Info("Report written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)))
	return nil
}

// WriteReport writes rows to path in the format its extension names.
func WriteReport(path string, rows []ReportRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	switch DetectFileFormat(path) {
	case FormatParquet:
		err = writeParquet(file, rows)
	case FormatJSON:
		err = writeJSON(file, rows)
	default:
		err = writeCSV(file, rows)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.File,
			r.Kind,
			strconv.FormatInt(r.Index, 10),
			r.Name,
			r.Reason,
			r.Method,
			r.Path,
			strconv.FormatInt(r.Matches, 10),
			r.Action,
			r.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeParquet(w io.Writer, rows []ReportRow) error {
	pw := parquet.NewGenericWriter[ReportRow](w)
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}

// writeJSON writes one JSON object per line.
func writeJSON(w io.Writer, rows []ReportRow) error {
	enc := json.NewEncoder(w)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) ([]ReportRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	switch DetectFileFormat(path) {
	case FormatParquet:
		return readParquet(file)
	case FormatJSON:
		return readJSON(file)
	default:
		return readCSV(file)
	}
}

func readCSV(r io.Reader) ([]ReportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(reportHeader)

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []ReportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		index, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", record[2], err)
		}
		matches, err := strconv.ParseInt(record[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid matches %q: %w", record[7], err)
		}
		rows = append(rows, ReportRow{
			File:    record[0],
			Kind:    record[1],
			Index:   index,
			Name:    record[3],
			Reason:  record[4],
			Method:  record[5],
			Path:    record[6],
			Matches: matches,
			Action:  record[8],
			Error:   record[9],
		})
	}
	return rows, nil
}

func readParquet(file *os.File) ([]ReportRow, error) {
	reader := parquet.NewReader(file)
	defer reader.Close()

	var rows []ReportRow
	for {
		var row ReportRow
		err := reader.Read(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read Parquet record: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readJSON(r io.Reader) ([]ReportRow, error) {
	decoder := json.NewDecoder(r)
	var rows []ReportRow
	for {
		var row ReportRow
		err := decoder.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON record: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
