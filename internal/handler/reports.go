package handler

import (
	"net/http"
	"strconv"

	"sprockets/internal/apierror"
	"sprockets/internal/dto"
	"sprockets/internal/infra"
	"sprockets/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportsHandler serves every report as JSON, or as a PDF download with
// ?format=pdf.
type ReportsHandler struct {
	svc               service.ReportService
	lowStockThreshold int
}

func NewReportsHandler(svc service.ReportService, lowStockThreshold int) *ReportsHandler {
	return &ReportsHandler{svc: svc, lowStockThreshold: lowStockThreshold}
}

func (h *ReportsHandler) PartsTimestamp(c *gin.Context) {
	r, err := h.svc.PartsTimestamp(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "parts-timestamp", r)
}

func (h *ReportsHandler) ProductsTimestamp(c *gin.Context) {
	r, err := h.svc.ProductsTimestamp(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "products-timestamp", r)
}

func (h *ReportsHandler) UsersTimestamp(c *gin.Context) {
	r, err := h.svc.UsersTimestamp(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "users-timestamps", r)
}

// LowStock godoc
// @Summary Low stock report
// @Description Parts and products whose stock is within threshold of their minimum.
// @Tags reports
// @Produce json
// @Produce application/pdf
// @Param threshold query int false "Allowed stock above min"
// @Param format query string false "pdf for a PDF download"
// @Success 200 {object} dto.LowStockReport
// @Failure 400 {object} apierror.APIError
// @Router /api/reports/low-stock [get]
func (h *ReportsHandler) LowStock(c *gin.Context) {
	threshold := h.lowStockThreshold
	if raw, ok := c.GetQuery("threshold"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, apierror.New("threshold must be a non-negative integer"))
			return
		}
		threshold = n
	}
	r, err := h.svc.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "low-stock", r)
}

func (h *ReportsHandler) PartsByType(c *gin.Context) {
	r, err := h.svc.PartsByType(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "parts-by-type", r)
}

func (h *ReportsHandler) ProductPartsAssociation(c *gin.Context) {
	r, err := h.svc.ProductPartsAssociation(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	send(c, "product-parts-association", r)
}

func send(c *gin.Context, name string, r dto.Report) {
	if c.Query("format") != "pdf" {
		c.JSON(http.StatusOK, r)
		return
	}
	pdf, err := infra.RenderReportPDF(r.Table())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
