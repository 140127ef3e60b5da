package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// SettlementExporter writes approved delegations to xlsx settlement
// sheets for accounting
type SettlementExporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewSettlementExporter creates a new settlement exporter
func NewSettlementExporter(outputDir string, logger *zap.Logger) *SettlementExporter {
	return &SettlementExporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

const settlementSheet = "Settlement"

// Write renders the settlement workbook and returns the file path
func (e *SettlementExporter) Write(detail *service.DelegationDetail, owner *entity.Employee) (string, error) {
	delegation := detail.Delegation

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(settlementSheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	e.setCell(f, "A1", "Delegation settlement")
	e.setCell(f, "A2", "Employee")
	e.setCell(f, "B2", owner.Username)
	e.setCell(f, "A3", "Destination")
	e.setCell(f, "B3", fmt.Sprintf("%s, %s", delegation.City, delegation.Country))
	e.setCell(f, "A4", "Dates")
	e.setCell(f, "B4", fmt.Sprintf("%s to %s",
		delegation.StartDate.Format("2006-01-02"),
		delegation.EndDate.Format("2006-01-02")))
	e.setCell(f, "A5", "Status")
	e.setCell(f, "B5", delegation.Status)

	header := 7
	e.setCell(f, fmt.Sprintf("A%d", header), "Explanation")
	e.setCell(f, fmt.Sprintf("B%d", header), "Amount")
	e.setCell(f, fmt.Sprintf("C%d", header), "Rate")
	e.setCell(f, fmt.Sprintf("D%d", header), "Amount (PLN)")
	e.setCell(f, fmt.Sprintf("E%d", header), "Status")

	row := header + 1
	for _, expense := range detail.Expenses {
		e.setCell(f, fmt.Sprintf("A%d", row), expense.Explanation)
		e.setCell(f, fmt.Sprintf("B%d", row), expense.Amount.String())
		e.setCell(f, fmt.Sprintf("C%d", row), expense.ExchangeRate.String())
		e.setCell(f, fmt.Sprintf("D%d", row), expense.PLNAmount.String())
		e.setCell(f, fmt.Sprintf("E%d", row), expense.Status)
		row++
	}

	row++
	e.setCell(f, fmt.Sprintf("A%d", row), "Total approved (PLN)")
	e.setCell(f, fmt.Sprintf("D%d", row), detail.Summary.Approved.StringFixed(2))

	outputPath := filepath.Join(e.outputDir, fmt.Sprintf("delegation_%d_settlement.xlsx", delegation.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save settlement file: %w", err)
	}

	e.logger.Info("Settlement exported",
		zap.Int64("delegation_id", delegation.ID),
		zap.String("path", outputPath))
	return outputPath, nil
}

func (e *SettlementExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(settlementSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// Verify interface compliance
var _ service.SettlementWriter = (*SettlementExporter)(nil)
