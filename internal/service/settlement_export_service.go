package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/metrics"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// SettlementExport 导出文件
type SettlementExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SettlementExportService 结算单导出服务
type SettlementExportService struct {
	settlementRepo repository.SettlementRepository
}

// NewSettlementExportService 创建结算单导出服务
func NewSettlementExportService(settlementRepo repository.SettlementRepository) *SettlementExportService {
	return &SettlementExportService{settlementRepo: settlementRepo}
}

// Export 按格式导出结算单
func (s *SettlementExportService) Export(id uint64, format string) (export *SettlementExport, err error) {
	format = strings.ToLower(strings.TrimSpace(format))
	startedAt := time.Now()
	defer func() { metrics.ObserveExport(format, err, time.Since(startedAt)) }()

	if format != constants.ExportFormatXLSX && format != constants.ExportFormatPDF {
		return nil, ErrExportFormatInvalid
	}
	settlement, err := s.settlementRepo.GetDetail(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}

	var content []byte
	var contentType string
	switch format {
	case constants.ExportFormatXLSX:
		content, err = BuildSettlementXLSX(settlement)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		content, err = BuildSettlementPDF(settlement)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return &SettlementExport{
		Filename:    fmt.Sprintf("%s.%s", settlement.SettlementNo, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// ExportXLSX 导出 XLSX 结算单
func (s *SettlementExportService) ExportXLSX(id uint64) (*SettlementExport, error) {
	return s.Export(id, constants.ExportFormatXLSX)
}

// ExportPDF 导出 PDF 结算单
func (s *SettlementExportService) ExportPDF(id uint64) (*SettlementExport, error) {
	return s.Export(id, constants.ExportFormatPDF)
}

var settlementItemHeaders = []string{
	"Order No", "SKU", "Product", "Category", "Qty", "Unit Price", "Total Price",
	"Rate (%)", "Commission", "Settlement", "Ordered At",
}

// BuildSettlementXLSX 生成结算单 XLSX，包含 summary 与 items 两个工作表
func BuildSettlementXLSX(settlement *models.Settlement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	itemsSheet := "items"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	rows := summaryRows(settlement)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(itemsSheet, "A1", &settlementItemHeaders); err != nil {
		return nil, err
	}
	for i, item := range settlement.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			item.OrderNo,
			item.SkuCode,
			item.ProductName,
			item.CategoryCode,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.CommissionRate.InexactFloat64(),
			item.CommissionAmount,
			item.SettlementAmount,
			item.OrderCreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSettlementPDF 生成结算单 PDF
func BuildSettlementPDF(settlement *models.Settlement) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()
	pdf.Cell(0, 8, "Seller Settlement Statement")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, row := range summaryRows(settlement) {
		pdf.Cell(0, 6, fmt.Sprintf("%v: %v", row[0], row[1]))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{34, 30, 52, 24, 12, 22, 24, 16, 22, 24, 32}
	pdf.SetFont("Arial", "B", 8)
	for i, header := range settlementItemHeaders {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, item := range settlement.Items {
		cells := []string{
			item.OrderNo,
			item.SkuCode,
			truncateText(item.ProductName, 32),
			item.CategoryCode,
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%d", item.UnitPrice),
			fmt.Sprintf("%d", item.TotalPrice),
			item.CommissionRate.String(),
			fmt.Sprintf("%d", item.CommissionAmount),
			fmt.Sprintf("%d", item.SettlementAmount),
			item.OrderCreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		for i, text := range cells {
			align := "R"
			if i < 4 || i == len(cells)-1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRows(settlement *models.Settlement) [][]interface{} {
	sellerName := ""
	if settlement.Seller != nil {
		sellerName = settlement.Seller.Name
	}
	periodName := ""
	if settlement.Period != nil {
		periodName = settlement.Period.Name
	}
	settledAt := ""
	if settlement.SettledAt != nil {
		settledAt = settlement.SettledAt.UTC().Format(time.RFC3339)
	}
	return [][]interface{}{
		{"Settlement No", settlement.SettlementNo},
		{"Seller", sellerName},
		{"Period", periodName},
		{"Status", settlement.Status},
		{"Items", settlement.ItemCount},
		{"Total Order Amount", settlement.TotalOrderAmount},
		{"Total Commission", settlement.TotalCommission},
		{"Final Settlement Amount", settlement.FinalSettlementAmount},
		{"Settled At", settledAt},
	}
}

func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "~"
}
