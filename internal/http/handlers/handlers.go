package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/fichaflow/backend/internal/db"
	"github.com/fichaflow/backend/internal/ingest"
	"github.com/fichaflow/backend/internal/service"
)

type Handler struct {
	Store     *db.Store
	Processor *service.ProcessingService
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

type AnalyzeRequest struct {
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type UploadSummary struct {
	RunID   string             `json:"run_id"`
	Parse   ingest.Diagnostics `json:"parse"`
	Errors  []string           `json:"errors"`
	Summary service.RunSummary `json:"summary"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Analyze a ticket export
// @Description Upload the monitoring CSV, analyze every store in it and render the reports
// @Tags analyses
// @Accept multipart/form-data
// @Produce json
// @Param tickets formData file true "tickets.csv"
// @Param date formData string false "Reference date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} UploadSummary
// @Failure 400 {object} map[string]any
// @Router /api/analyses [post]
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	ticketsFile, err := c.FormFile("tickets")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets file required", nil)
		return
	}
	if !validateExt(ticketsFile.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets file must be .csv", nil)
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	ref := time.Now().UTC()
	if req.Date != "" {
		ref, _ = time.Parse("2006-01-02", req.Date)
	}

	f, err := ticketsFile.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to open tickets file", err.Error())
		return
	}
	defer f.Close()

	rows, diags, errs := ingest.ParseTickets(f)
	if len(rows) == 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "No usable rows in tickets file", errs)
		return
	}
	groups := service.GroupStores(rows)

	ctx := c.Request.Context()
	runID, err := h.Store.CreateRun(ctx, "RUNNING")
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	debug := c.Query("debug")
	summary, err := h.Processor.ProcessUpload(ctx, groups, ref, debug == "1" || strings.EqualFold(debug, "true"))
	status := "SUCCESS"
	if err != nil {
		status = "FAILED"
	}
	b, _ := json.Marshal(summary)
	if finishErr := h.Store.FinishRun(ctx, runID, status, b); finishErr != nil {
		h.Logger.Error().Err(finishErr).Msg("failed to finish run")
	}

	if err != nil {
		h.Logger.Error().Err(err).Msg("processing failed")
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Processing failed", err.Error())
		return
	}
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, UploadSummary{RunID: runID, Parse: diags, Errors: errs, Summary: summary})
}

// @Summary List analyses
// @Tags analyses
// @Produce json
// @Param store_id query string false "Filter by store"
// @Success 200 {object} map[string]any
// @Router /api/analyses [get]
func (h *Handler) AnalysesList(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListAnalyses(c.Request.Context(), storeID, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list analyses", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary Analysis details
// @Tags analyses
// @Produce json
// @Param id path int true "Analysis ID"
// @Success 200 {object} models.StoreAnalysis
// @Router /api/analyses/{id} [get]
func (h *Handler) AnalysisDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid analysis id", nil)
		return
	}
	result, err := h.Store.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get analysis", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Analysis report PDF
// @Tags analyses
// @Produce application/pdf
// @Param id path int true "Analysis ID"
// @Success 200 {file} binary
// @Router /api/analyses/{id}/report [get]
func (h *Handler) AnalysisReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid analysis id", nil)
		return
	}
	pdf, _, err := h.Store.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get report", err.Error())
		return
	}
	c.Header("Content-Disposition", `inline; filename="analise-fichas-`+strconv.FormatInt(id, 10)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	result, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func validateExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}
