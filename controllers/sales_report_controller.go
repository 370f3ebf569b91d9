package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type salesReportResponse struct {
	Data       []paymentResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalSales string            `json:"totalSales"`
}

type SalesReportController struct {
	Svc *services.SalesReportService
}

func NewSalesReportController(svc *services.SalesReportService) *SalesReportController {
	return &SalesReportController{Svc: svc}
}

func salesQuery(c *gin.Context) (services.SalesQuery, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	q := services.SalesQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Method: models.PaymentMethod(c.Query("paymentMethod")),
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err := utils.ParseDate(raw)
		if err != nil {
			badRequest(c, "date: "+err.Error())
			return services.SalesQuery{}, false
		}
		q.Day = &day
	}
	return q, true
}

// GET /api/sales-report
func (sc *SalesReportController) GetSalesReport(c *gin.Context) {
	q, ok := salesQuery(c)
	if !ok {
		return
	}
	rep, err := sc.Svc.Report(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, salesReportResponse{
		Data:       toPaymentResponses(rep.Data),
		Total:      rep.Total,
		Page:       rep.Page,
		Limit:      rep.Limit,
		TotalSales: services.Money(rep.TotalSales),
	})
}

// GET /api/sales-report/export
func (sc *SalesReportController) ExportSalesReport(c *gin.Context) {
	q, ok := salesQuery(c)
	if !ok {
		return
	}
	body, err := sc.Svc.Export(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	day := clock.Today(sc.Svc.Clock)
	if q.Day != nil {
		day = *q.Day
	}
	name := fmt.Sprintf("sales-report-%s.xlsx", day.Format(dateLayout))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, body)
}
