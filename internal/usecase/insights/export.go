package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

const (
	exportSheet = "Call Insights"
	exportLimit = 1000
)

var exportHeader = []interface{}{"Call ID", "Processed At", "Rating", "Buyer Intent", "Profanity", "Summary"}

// ExportRow is one processed call flattened for the spreadsheet
type ExportRow struct {
	CallID      string
	ProcessedAt *time.Time
	Rating      string
	Intent      string
	Severity    string
	Summary     string
}

// ExportRowFromLog reads the export columns out of a stored insights document
func ExportRowFromLog(log *entities.CallLog) ExportRow {
	doc := []byte(log.Insights)
	intent := insightField(doc, entities.AnalyzerIntent, "nlp")
	if intent == "" {
		intent = insightField(doc, entities.AnalyzerIntent, "buyer_intent")
	}
	return ExportRow{
		CallID:      log.CallID,
		ProcessedAt: log.ProcessedAt,
		Rating:      insightField(doc, entities.AnalyzerSummary, "rating"),
		Intent:      intent,
		Severity:    insightField(doc, entities.AnalyzerProfanity, "severity level"),
		Summary:     insightField(doc, entities.AnalyzerSummary, "summary"),
	}
}

// insightField prefers the parsed object and falls back to decoding the output string
func insightField(doc []byte, analyzer, key string) string {
	if r := gjson.GetBytes(doc, analyzer+".parsed."+gjson.Escape(key)); r.Exists() {
		return r.String()
	}
	inner := gjson.GetBytes(doc, analyzer+".output").String()
	return gjson.Get(inner, gjson.Escape(key)).String()
}

// ExportInsights renders the processed calls visible to orgID as an xlsx workbook
func (s *Service) ExportInsights(ctx context.Context, orgID *uuid.UUID) ([]byte, error) {
	logs, err := s.callLogs.ListProcessed(ctx, orgID, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed calls: %w", err)
	}
	rows := make([]ExportRow, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, ExportRowFromLog(log))
	}
	return WriteWorkbook(rows)
}

// WriteWorkbook renders rows under a header row on a single sheet
func WriteWorkbook(rows []ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		processedAt := ""
		if r.ProcessedAt != nil {
			processedAt = r.ProcessedAt.UTC().Format(time.RFC3339)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.CallID, processedAt, r.Rating, r.Intent, r.Severity, r.Summary}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "F", "F", 80); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
