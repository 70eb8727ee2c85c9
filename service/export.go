package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"budget/models"
	"budget/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Statement 账户流水导出数据
type Statement struct {
	Account      models.BankAccount
	Household    models.Household
	Transactions []models.Transaction
	// CategoryNames 类别 ID 到名称
	CategoryNames map[uint]string
	Total         decimal.Decimal
}

// ExportService 账户流水导出
type ExportService struct {
	store repository.Store
	gate  *Gate
}

// NewExportService 创建导出服务
func NewExportService(store repository.Store) *ExportService {
	return &ExportService{store: store, gate: NewGate(store)}
}

// Statement 加载账户流水，所有者或成员可见
func (s *ExportService) Statement(ctx context.Context, userID, accountID uint) (*Statement, error) {
	a, h, err := loadAccount(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	list, err := s.store.ListTransactions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	cats, err := s.store.ListCategories(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return &Statement{
		Account:       *a,
		Household:     *h,
		Transactions:  list,
		CategoryNames: names,
		Total:         ActiveTotal(list),
	}, nil
}

var statementHeaders = []string{"ID", "标题", "金额", "类别", "描述", "状态", "交易时间", "创建时间"}

func statusText(t models.Transaction) string {
	if t.Void {
		return "已作废"
	}
	return "正常"
}

// WriteCSV 以 CSV 格式写出流水，带 BOM 以支持 Excel 中文显示
func WriteCSV(w io.Writer, st *Statement) error {
	buf := new(bytes.Buffer)
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(statementHeaders); err != nil {
		return fmt.Errorf("生成 CSV 失败: %w", err)
	}
	for _, t := range st.Transactions {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Title,
			t.Amount.StringFixed(2),
			st.CategoryNames[t.CategoryID],
			t.Description,
			statusText(t),
			t.TransactionDate.Format(timeLayout),
			t.CreatedAt.Format(timeLayout),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("生成 CSV 失败: %w", err)
		}
	}
	if err := writer.Write([]string{"合计", "", st.Total.StringFixed(2), fmt.Sprintf("共 %d 条记录", len(st.Transactions))}); err != nil {
		return fmt.Errorf("生成 CSV 失败: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("生成 CSV 失败: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteExcel 以 xlsx 格式写出流水，末行为未作废交易合计
func WriteExcel(w io.Writer, st *Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "交易记录"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("生成 Excel 失败: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})

	widths := []float64{10, 20, 15, 12, 30, 10, 20, 20}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}

	for i, header := range statementHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, t := range st.Transactions {
		row := i + 2
		amount, _ := t.Amount.Float64()
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), amount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), st.CategoryNames[t.CategoryID])
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Description)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), statusText(t))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), t.TransactionDate.Format(timeLayout))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), t.CreatedAt.Format(timeLayout))
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), dataStyle)
	}

	summaryRow := len(st.Transactions) + 2
	total, _ := st.Total.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow), total)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(st.Transactions)))
	f.MergeCell(sheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("H%d", summaryRow))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("生成 Excel 失败: %w", err)
	}
	return nil
}
