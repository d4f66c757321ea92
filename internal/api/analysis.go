package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relieflab/assessdash/internal/analysis"
)

// AnalysisHandler exposes stored image-analysis results. The upload
// endpoint itself is a plain multipart handler on the server mux.
type AnalysisHandler struct {
	store *analysis.Store
}

func NewAnalysisHandler(store *analysis.Store) *AnalysisHandler {
	return &AnalysisHandler{store: store}
}

func (h *AnalysisHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/analysis/{id}", h.GetAnalysis, huma.OperationTags("analysis"))
	huma.Get(api, "/api/v1/latest-analysis", h.GetLatestAnalysis, huma.OperationTags("analysis"))
}

type AnalysisIDInput struct {
	ID string `path:"id" doc:"Analysis ID"`
}

func (h *AnalysisHandler) GetAnalysis(ctx context.Context, input *AnalysisIDInput) (*struct{ Body analysis.Result }, error) {
	if h.store == nil {
		return nil, huma.Error404NotFound("analysis store not available")
	}
	r, ok := h.store.Get(ctx, input.ID)
	if !ok {
		return nil, huma.Error404NotFound("analysis not found")
	}
	return &struct{ Body analysis.Result }{Body: *r}, nil
}

func (h *AnalysisHandler) GetLatestAnalysis(ctx context.Context, input *struct{}) (*struct{ Body analysis.Result }, error) {
	if h.store == nil {
		return nil, huma.Error404NotFound("analysis store not available")
	}
	r, ok := h.store.Latest()
	if !ok {
		return nil, huma.Error404NotFound("no analysis has been run yet")
	}
	return &struct{ Body analysis.Result }{Body: *r}, nil
}
