package http

import (
	"log/slog"
	"net/http"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/handler/http/response"
)

type PipelineHandler interface {
	Refresh(w http.ResponseWriter, r *http.Request)
}

type PipelineHandlerImpl struct {
	pipelineService hr.PipelineService
}

func NewPipelineHandler(pipelineService hr.PipelineService) PipelineHandler {
	return &PipelineHandlerImpl{pipelineService: pipelineService}
}

// Refresh runs the full ETL cycle synchronously and reports the per-source
// outcome. Overlapping refreshes are rejected, not queued.
func (h *PipelineHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipelineService.Run(r.Context())
	if err != nil {
		slog.Warn("Refresh rejected", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Dataset refreshed", report)
}
