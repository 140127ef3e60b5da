package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/domain/entity"
)

func TestSettlementExporter_Write(t *testing.T) {
	dir := t.TempDir()
	exporter := NewSettlementExporter(dir, zap.NewNop())

	detail := &service.DelegationDetail{
		Delegation: &entity.Delegation{
			ID:        7,
			Status:    "APPROVED",
			Country:   "Germany",
			City:      "Berlin",
			StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		Expenses: []*entity.Expense{
			{
				Explanation:  "hotel",
				Amount:       decimal.RequireFromString("100.00"),
				ExchangeRate: decimal.RequireFromString("4.30"),
				PLNAmount:    decimal.RequireFromString("430.00"),
				Status:       "APPROVED",
			},
		},
		Summary: service.AmountSummary{
			Total:    decimal.RequireFromString("430.00"),
			Approved: decimal.RequireFromString("430.00"),
			Pending:  decimal.Zero,
			Rejected: decimal.Zero,
		},
	}
	owner := &entity.Employee{ID: 1, Username: "anna"}

	path, err := exporter.Write(detail, owner)
	require.NoError(t, err)
	assert.Contains(t, path, "delegation_7_settlement.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	employee, err := f.GetCellValue("Settlement", "B2")
	require.NoError(t, err)
	assert.Equal(t, "anna", employee)

	amount, err := f.GetCellValue("Settlement", "D8")
	require.NoError(t, err)
	assert.Equal(t, "430", amount)
}
