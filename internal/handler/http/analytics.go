package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/handler/http/response"
)

type AnalyticsHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Periods(w http.ResponseWriter, r *http.Request)
	Filters(w http.ResponseWriter, r *http.Request)
	Table(w http.ResponseWriter, r *http.Request)
	Aggregate(w http.ResponseWriter, r *http.Request)
	Drill(w http.ResponseWriter, r *http.Request)
}

type AnalyticsHandlerImpl struct {
	analyticsService hr.AnalyticsService
}

func NewAnalyticsHandler(analyticsService hr.AnalyticsService) AnalyticsHandler {
	return &AnalyticsHandlerImpl{analyticsService: analyticsService}
}

// queryContext extracts the period selection and categorical filters shared
// by every analytical endpoint.
func queryContext(r *http.Request) (hr.PeriodSelection, hr.Filters) {
	q := r.URL.Query()

	period := hr.PeriodSelection{
		Year:    q.Get("year"),
		Quarter: q.Get("quarter"),
	}
	if months := strings.TrimSpace(q.Get("months")); months != "" {
		for _, m := range strings.Split(months, ",") {
			if m = strings.TrimSpace(m); m != "" {
				period.Months = append(period.Months, m)
			}
		}
	}

	filters := hr.Filters{
		Department:     q.Get("department"),
		Employee:       q.Get("employee"),
		Manager:        q.Get("manager"),
		EmploymentType: q.Get("employment_type"),
		LeaveType:      q.Get("leave_type"),
		AttendanceMode: q.Get("attendance_mode"),
		WorkflowState:  q.Get("workflow_state"),
		Project:        q.Get("project"),
		ProjectManager: q.Get("project_manager"),
	}
	return period, filters
}

func (h *AnalyticsHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.analyticsService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *AnalyticsHandlerImpl) Periods(w http.ResponseWriter, r *http.Request) {
	tree, err := h.analyticsService.PeriodTree(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tree)
}

func (h *AnalyticsHandlerImpl) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.analyticsService.FilterOptions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, opts)
}

func (h *AnalyticsHandlerImpl) Table(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "name")
	period, filters := queryContext(r)

	res, err := h.analyticsService.Query(r.Context(), table, period, filters)
	if err != nil {
		slog.Warn("Table query failed", "table", table, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

func (h *AnalyticsHandlerImpl) Aggregate(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	period, filters := queryContext(r)

	res, err := h.analyticsService.Aggregate(r.Context(), view, period, filters)
	if err != nil {
		slog.Warn("Aggregate failed", "view", view, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

func (h *AnalyticsHandlerImpl) Drill(w http.ResponseWriter, r *http.Request) {
	period, filters := queryContext(r)
	q := r.URL.Query()
	req := hr.DrillRequest{
		Chart:    chi.URLParam(r, "chart"),
		Bucket:   q.Get("bucket"),
		Month:    q.Get("month"),
		Date:     q.Get("date"),
		Employee: q.Get("employee_name"),
		Period:   period,
		Filters:  filters,
	}

	res, err := h.analyticsService.Drill(r.Context(), req)
	if err != nil {
		slog.Warn("Drill failed", "chart", req.Chart, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}
