package productsvc

import (
	"context"
	"fmt"

	productdto "github.com/KraitOPP/PerishPro-sub000/internal/api/product/dto"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExportMaxRows số dòng tối đa một lần xuất
const ExportMaxRows = 5000

// ExportSheet tên sheet trong file xuất
const ExportSheet = "Products"

var exportHeader = []interface{}{
	"ID", "SKU", "Name", "Category", "Status",
	"Cost Price", "MRP", "Current Price", "Profit Margin (%)",
	"Quantity", "Unit", "Reorder Level", "Stock Status",
	"Manufacture Date", "Expiry Date", "Days To Expiry",
	"ML Product ID", "Recommended Price", "Confidence Score",
	"Total Sold", "Total Revenue", "Avg Daily Sales", "Last Sale Date",
}

// ExportXLSX xuất danh sách (cùng bộ lọc với List) ra file Excel
func (s *ProductService) ExportXLSX(ctx context.Context, q productdto.ListQuery) ([]byte, error) {
	filter, sort, err := BuildListFilter(q)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Find(ctx, filter, options.Find().SetSort(sort).SetLimit(ExportMaxRows))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return nil, common.NewInternalError(err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return nil, common.NewInternalError(err)
	}

	now := s.now()
	for i := range items {
		p := &items[i]
		DeriveFields(p, now)

		var mfg, exp, lastSale string
		if p.Perishable.ManufactureDate != nil {
			mfg = p.Perishable.ManufactureDate.UTC().Format("2006-01-02")
		}
		if p.Perishable.ExpiryDate != nil {
			exp = p.Perishable.ExpiryDate.UTC().Format("2006-01-02")
		}
		if p.Sales.LastSaleDate != nil {
			lastSale = p.Sales.LastSaleDate.UTC().Format("2006-01-02")
		}
		row := []interface{}{
			utility.ObjectID2String(p.ID), p.SKU, p.Name, p.Category, p.Status,
			p.Pricing.CostPrice, p.Pricing.MRP, p.Pricing.CurrentPrice, fmt.Sprintf("%.2f", p.Pricing.ProfitMargin),
			p.Stock.Quantity, p.Stock.Unit, p.Stock.ReorderLevel, p.StockStatus(),
			mfg, exp, p.Perishable.DaysToExpiry,
			p.AIMetrics.MLProductID, p.AIMetrics.RecommendedPrice, p.AIMetrics.ConfidenceScore,
			p.Sales.TotalSold, p.Sales.TotalRevenue, p.Sales.AverageDailySales, lastSale,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, common.NewInternalError(err)
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, common.NewInternalError(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	return buf.Bytes(), nil
}
