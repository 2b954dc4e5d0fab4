// Package extraction pulls plain text out of uploaded files so the
// ingestion pipeline only ever sees text.
package extraction

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Extract reads the file at path and returns its textual content.
// Supported: .txt, .md, .pdf, .csv.
func Extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	case ".csv":
		return extractCSV(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

// extractCSV renders each row as "Header: value" lines separated by blank
// lines, which keeps column meaning attached to each value after chunking.
func extractCSV(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var sb strings.Builder
	for rowIdx, row := range records[1:] {
		if rowIdx > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("Row %d", rowIdx+1))
		for col, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			header := fmt.Sprintf("Column %d", col+1)
			if col < len(headers) && strings.TrimSpace(headers[col]) != "" {
				header = strings.TrimSpace(headers[col])
			}
			sb.WriteString(fmt.Sprintf("\n%s: %s", header, value))
		}
	}

	return sb.String(), nil
}
