package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/dailydose"
)

const RunIDHeader = "X-Run-ID"

type DoseHandler struct {
	doseService *dailydose.Service
}

func NewDoseHandler(doseService *dailydose.Service) *DoseHandler {
	return &DoseHandler{
		doseService: doseService,
	}
}

// Register mounts the dose routes on rg.
func (h *DoseHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/dose", h.HandleRange)
	rg.GET("/dose/history", h.HandleHistory)
	rg.GET("/dose/:date", h.HandleDay)
	rg.POST("/dose/calculate", h.HandleCalculate)
}

func (h *DoseHandler) HandleDay(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Param("date")

	refresh, err := parseBoolQuery(c, "refresh")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "refresh must be a boolean")
		return
	}

	res, err := h.doseService.ComputeDay(ctx, date, dailydose.ComputeOptions{
		Refresh: refresh,
		RunID:   runID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDayResponse(res))
}

func (h *DoseHandler) HandleRange(c *gin.Context) {
	ctx := c.Request.Context()

	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "from and to are required")
		return
	}

	refresh, err := parseBoolQuery(c, "refresh")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "refresh must be a boolean")
		return
	}

	results, err := h.doseService.ComputeRange(ctx, from, to, dailydose.ComputeOptions{
		Refresh: refresh,
		RunID:   runID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := rangeResponse{Days: make([]dayResponse, 0, len(results))}
	for _, res := range results {
		day := newDayResponse(res)
		resp.Days = append(resp.Days, day)
		resp.TotalBasal += day.TotalBasal
		resp.TotalBolus += day.TotalBolus
		resp.TotalDose += day.TotalDose
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DoseHandler) HandleCalculate(c *gin.Context) {
	ctx := c.Request.Context()

	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request unmarshal failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	profiles := req.Profiles
	if req.Profile != nil {
		profiles = append([]domain.Profile{*req.Profile}, profiles...)
	}

	result, err := h.doseService.Calculate(ctx, dailydose.CalculateRequest{
		Profiles:     profiles,
		Treatments:   req.Treatments,
		Date:         req.Date,
		ScheduleName: req.Schedule,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBreakdownResponse(result))
}

func (h *DoseHandler) HandleHistory(c *gin.Context) {
	ctx := c.Request.Context()

	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "from and to are required")
		return
	}

	doses, err := h.doseService.History(ctx, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, historyResponse{Days: doses})
}

func runID(c *gin.Context) string {
	if id := c.GetHeader(RunIDHeader); id != "" {
		return id
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func parseBoolQuery(c *gin.Context, key string) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func respondServiceError(c *gin.Context, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "dose request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	respondError(c, status, code, err.Error())
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusUnprocessableEntity, "incomplete_profile"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, domain.ErrHistoryOff):
		return http.StatusServiceUnavailable, "history_disabled"
	default:
		return http.StatusInternalServerError, "processing_error"
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Error:   code,
		Message: message,
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type calculateRequest struct {
	Date       string             `json:"date" binding:"required"`
	Schedule   string             `json:"schedule,omitempty"`
	Profile    *domain.Profile    `json:"profile,omitempty"`
	Profiles   []domain.Profile   `json:"profiles,omitempty"`
	Treatments []domain.Treatment `json:"treatments"`
}

type dayResponse struct {
	*domain.DailyDose
	Cached    bool               `json:"cached"`
	Breakdown *breakdownResponse `json:"breakdown,omitempty"`
}

func newDayResponse(res *dailydose.DayResult) dayResponse {
	day := dayResponse{
		DailyDose: res.Dose,
		Cached:    res.Cached,
	}
	if res.Result != nil && !res.Result.NoData {
		b := newBreakdownResponse(res.Result)
		day.Breakdown = &b
	}
	return day
}

type rangeResponse struct {
	Days       []dayResponse `json:"days"`
	TotalBasal float64       `json:"total_basal"`
	TotalBolus float64       `json:"total_bolus"`
	TotalDose  float64       `json:"total_dose"`
}

type historyResponse struct {
	Days []*domain.DailyDose `json:"days"`
}

type segmentResponse struct {
	StartHour int     `json:"start_hour"`
	EndHour   int     `json:"end_hour"`
	Rate      float64 `json:"rate"`
}

type adjustmentResponse struct {
	Timestamp      int64   `json:"timestamp"`
	Hour           int     `json:"hour"`
	Rate           float64 `json:"rate"`
	DefaultRate    float64 `json:"default_rate"`
	DurationMillis int64   `json:"duration_ms"`
	Delta          float64 `json:"delta"`
}

type breakdownResponse struct {
	Date           string               `json:"date"`
	UTCOffset      int                  `json:"utc_offset_minutes"`
	NoData         bool                 `json:"no_data"`
	TreatmentCount int                  `json:"treatment_count"`
	Schedule       []segmentResponse    `json:"schedule,omitempty"`
	DefaultHourly  []float64            `json:"default_hourly,omitempty"`
	Hourly         []float64            `json:"hourly,omitempty"`
	Boluses        []float64            `json:"boluses,omitempty"`
	Adjustments    []adjustmentResponse `json:"adjustments,omitempty"`
	Ignored        int                  `json:"ignored"`
	TotalBasal     float64              `json:"total_basal"`
	TotalBolus     float64              `json:"total_bolus"`
	TotalDose      float64              `json:"total_dose"`
}

func newBreakdownResponse(r *aggregate.Result) breakdownResponse {
	resp := breakdownResponse{
		Date:           r.Date,
		UTCOffset:      r.UTCOffsetMinutes,
		NoData:         r.NoData,
		TreatmentCount: r.TreatmentCount,
		Ignored:        r.Ignored,
		TotalBasal:     r.TotalBasal,
		TotalBolus:     r.TotalBolus,
		TotalDose:      r.TotalDose,
	}
	if r.NoData {
		return resp
	}

	for _, seg := range r.Schedule.Segments() {
		resp.Schedule = append(resp.Schedule, segmentResponse{
			StartHour: seg.StartHour,
			EndHour:   seg.EndHour,
			Rate:      seg.Value,
		})
	}
	resp.DefaultHourly = r.DefaultHourly[:]
	resp.Hourly = r.Hourly[:]
	resp.Boluses = r.Boluses

	for _, adj := range r.Adjustments {
		resp.Adjustments = append(resp.Adjustments, adjustmentResponse{
			Timestamp:      adj.TimestampMillis,
			Hour:           adj.Hour,
			Rate:           adj.Rate,
			DefaultRate:    adj.DefaultRate,
			DurationMillis: adj.DurationMillis,
			Delta:          adj.Delta,
		})
	}
	return resp
}
