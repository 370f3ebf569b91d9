package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 200
)

// SalesReportService reads the payment trail for the daily sales report.
type SalesReportService struct {
	DB    *gorm.DB
	Clock clock.Clock
}

func NewSalesReportService(db *gorm.DB, clk clock.Clock) *SalesReportService {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &SalesReportService{DB: db, Clock: clk}
}

type SalesQuery struct {
	Page   int
	Limit  int
	Search string
	// Day restricts the report to payments taken on that calendar day.
	Day    *time.Time
	Method models.PaymentMethod
}

type SalesReport struct {
	Data       []models.Payment `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalSales decimal.Decimal  `json:"totalSales"`
}

func (s *SalesReportService) filtered(ctx context.Context, q SalesQuery) (*gorm.DB, error) {
	query := s.DB.WithContext(ctx).Model(&models.Payment{})

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		query = query.Where("LOWER(guest_name) LIKE ?", "%"+term+"%")
	}
	if q.Method != "" {
		if !q.Method.Valid() {
			return nil, invalid("unknown payment method %q", q.Method)
		}
		query = query.Where("payment_method = ?", string(q.Method))
	}
	if q.Day != nil {
		loc := s.Clock.Now().Location()
		y, m, d := q.Day.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		query = query.Where("payment_date >= ? AND payment_date < ?", start, start.AddDate(0, 0, 1))
	}
	return query, nil
}

// Report pages through payments, newest first. TotalSales covers every
// matching payment, not only the page.
func (s *SalesReportService) Report(ctx context.Context, q SalesQuery) (SalesReport, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultReportLimit
	}
	if q.Limit > maxReportLimit {
		q.Limit = maxReportLimit
	}

	query, err := s.filtered(ctx, q)
	if err != nil {
		return SalesReport{}, err
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return SalesReport{}, persistence("count payments", err)
	}

	var amounts []decimal.Decimal
	if err := query.Session(&gorm.Session{}).Pluck("amount", &amounts).Error; err != nil {
		return SalesReport{}, persistence("sum payments", err)
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}

	data := []models.Payment{}
	if err := query.Session(&gorm.Session{}).
		Order("payment_date DESC").Order("id DESC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&data).Error; err != nil {
		return SalesReport{}, persistence("list payments", err)
	}

	return SalesReport{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalSales: sum,
	}, nil
}

var salesHeader = []interface{}{"Date", "Guest", "Room", "Payment Method", "Amount"}

// Export renders every payment matching q to an .xlsx workbook, ignoring
// pagination, with a total row at the bottom.
func (s *SalesReportService) Export(ctx context.Context, q SalesQuery) ([]byte, error) {
	query, err := s.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := query.Order("payment_date ASC").Order("id ASC").Find(&payments).Error; err != nil {
		return nil, persistence("list payments", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &salesHeader); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i, p := range payments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		amount, _ := p.Amount.Round(2).Float64()
		row := []interface{}{
			p.PaymentDate.Format("2006-01-02 15:04"),
			p.GuestName,
			p.RoomNo,
			string(p.Method),
			amount,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		total = total.Add(p.Amount)
	}

	cell, err := excelize.CoordinatesToCellName(4, len(payments)+2)
	if err != nil {
		return nil, err
	}
	sum, _ := total.Round(2).Float64()
	if err := f.SetSheetRow(sheet, cell, &[]interface{}{"Total", sum}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
