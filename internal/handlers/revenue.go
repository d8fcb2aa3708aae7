package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RevenueOverview handles GET /api/admin/revenue/overview.
func (a *API) RevenueOverview(c *gin.Context) {
	ov, err := a.Revenue.Overview(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "revenue_failed", err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// RevenueMonthly handles GET /api/admin/revenue/monthly?year=2025. The
// year defaults to the current one.
func (a *API) RevenueMonthly(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.fail(c, http.StatusBadRequest, "bad_year", err)
			return
		}
		year = parsed
	}

	points, err := a.Revenue.Monthly(c.Request.Context(), year)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "revenue_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": points})
}

// RevenueByMonth handles GET /api/admin/revenue/by-month?year=2025&month=6.
func (a *API) RevenueByMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		a.fail(c, http.StatusBadRequest, "bad_year", err)
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		a.fail(c, http.StatusBadRequest, "bad_month", err)
		return
	}

	stats, err := a.Revenue.ByMonth(c.Request.Context(), year, month)
	if err != nil {
		a.fail(c, http.StatusBadRequest, "revenue_failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
