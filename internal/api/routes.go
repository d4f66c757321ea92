// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relieflab/assessdash/internal/mapcore"
	"github.com/relieflab/assessdash/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Assessment *service.AssessmentService
	Feature    *service.FeatureService
	Metric     *service.MetricService
	Map        *service.MapService
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Assessment ID" example:"palisades_fire"`
}

type AssessmentOutput struct {
	Body service.Assessment
}

type AssessmentsOutput struct {
	Body map[string]service.Assessment
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type CreatedAssessmentBody struct {
	ID         string             `json:"id" doc:"Generated assessment ID"`
	Assessment service.Assessment `json:"assessment" doc:"Created assessment"`
	Message    string             `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every handler with Huma.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterAssessments registers assessment CRUD routes.
func (h *APIHandler) RegisterAssessments(api huma.API) {
	huma.Get(api, "/api/v1/assessments", h.GetAssessments, huma.OperationTags("assessments"))
	huma.Post(api, "/api/v1/assessments", h.CreateAssessment, huma.OperationTags("assessments"))
	huma.Get(api, "/api/v1/assessments/{id}", h.GetAssessment, huma.OperationTags("assessments"))
	huma.Put(api, "/api/v1/assessments/{id}", h.PutAssessment, huma.OperationTags("assessments"))
	huma.Delete(api, "/api/v1/assessments/{id}", h.DeleteAssessment, huma.OperationTags("assessments"))
	huma.Post(api, "/api/v1/assessments/{id}/activate", h.ActivateAssessment, huma.OperationTags("assessments"))
}

// RegisterFeatures registers feature import and listing routes.
func (h *APIHandler) RegisterFeatures(api huma.API) {
	huma.Get(api, "/api/v1/assessments/{id}/features", h.GetFeatures, huma.OperationTags("features"))
	huma.Post(api, "/api/v1/assessments/{id}/features/import", h.ImportFeatures, huma.OperationTags("features"))
	huma.Delete(api, "/api/v1/assessments/{id}/features", h.DeleteFeatures, huma.OperationTags("features"))
}

// RegisterMetrics registers the metric card route.
func (h *APIHandler) RegisterMetrics(api huma.API) {
	huma.Get(api, "/api/v1/assessments/{id}/metrics", h.GetMetrics, huma.OperationTags("metrics"))
}

// RegisterMap registers map configuration routes.
func (h *APIHandler) RegisterMap(api huma.API) {
	huma.Get(api, "/api/v1/map/config", h.GetMapConfig, huma.OperationTags("map"))
	huma.Put(api, "/api/v1/map/config", h.PutMapConfig, huma.OperationTags("map"))
	huma.Put(api, "/api/v1/map/layers", h.PutMapLayers, huma.OperationTags("map"))
	huma.Put(api, "/api/v1/map/opacity", h.PutMapOpacity, huma.OperationTags("map"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetAssessments(ctx context.Context, input *struct{}) (*AssessmentsOutput, error) {
	if h.svc == nil || h.svc.Assessment == nil {
		return &AssessmentsOutput{Body: map[string]service.Assessment{}}, nil
	}
	return &AssessmentsOutput{Body: h.svc.Assessment.List()}, nil
}

func (h *APIHandler) CreateAssessment(ctx context.Context, input *struct{ Body service.Assessment }) (*struct{ Body CreatedAssessmentBody }, error) {
	if h.svc == nil || h.svc.Assessment == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	created, err := h.svc.Assessment.Create(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body CreatedAssessmentBody }{Body: CreatedAssessmentBody{
		ID: created.ID, Assessment: created, Message: "Assessment created",
	}}, nil
}

func (h *APIHandler) GetAssessment(ctx context.Context, input *IDInput) (*AssessmentOutput, error) {
	if h.svc == nil || h.svc.Assessment == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	a, ok := h.svc.Assessment.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("assessment not found")
	}
	return &AssessmentOutput{Body: a}, nil
}

func (h *APIHandler) PutAssessment(ctx context.Context, input *struct {
	IDInput
	Body service.Assessment
}) (*AssessmentOutput, error) {
	if h.svc == nil || h.svc.Assessment == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	updated, err := h.svc.Assessment.Update(input.ID, input.Body)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	// An update to the active assessment feeds straight into the map.
	if h.svc.Map != nil && h.svc.Map.ActiveAssessment() == input.ID {
		if err := h.svc.Map.ApplyConfig(updated.Map.MapConfig()); err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
	}
	return &AssessmentOutput{Body: updated}, nil
}

func (h *APIHandler) DeleteAssessment(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Assessment == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Assessment.Delete(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	if h.svc.Feature != nil {
		if err := h.svc.Feature.DeleteAll(input.ID); err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Assessment deleted"}}, nil
}

func (h *APIHandler) ActivateAssessment(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Assessment == nil || h.svc.Map == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	a, ok := h.svc.Assessment.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("assessment not found")
	}
	if err := h.svc.Map.Activate(a); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Assessment activated"}}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *IDInput) (*struct{ Body service.FeatureSet }, error) {
	if h.svc == nil || h.svc.Feature == nil {
		return nil, huma.Error400BadRequest("feature store not available")
	}
	fs, err := h.svc.Feature.FeatureSet(input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body service.FeatureSet }{Body: fs}, nil
}

type ImportInput struct {
	IDInput
	RawBody []byte `contentType:"application/geo+json"`
}

func (h *APIHandler) ImportFeatures(ctx context.Context, input *ImportInput) (*struct{ Body service.ImportSummary }, error) {
	if h.svc == nil || h.svc.Feature == nil {
		return nil, huma.Error400BadRequest("feature store not available")
	}
	summary, err := h.svc.Feature.ImportGeoJSON(input.ID, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if h.svc.Map != nil && h.svc.Map.ActiveAssessment() == input.ID {
		if err := h.svc.Map.Refresh(); err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
	}
	return &struct{ Body service.ImportSummary }{Body: summary}, nil
}

func (h *APIHandler) DeleteFeatures(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Feature == nil {
		return nil, huma.Error400BadRequest("feature store not available")
	}
	if err := h.svc.Feature.DeleteAll(input.ID); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	if h.svc.Map != nil && h.svc.Map.ActiveAssessment() == input.ID {
		if err := h.svc.Map.Refresh(); err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Features deleted"}}, nil
}

func (h *APIHandler) GetMetrics(ctx context.Context, input *IDInput) (*struct{ Body []service.MetricCard }, error) {
	if h.svc == nil || h.svc.Metric == nil {
		return &struct{ Body []service.MetricCard }{Body: []service.MetricCard{}}, nil
	}
	cards, err := h.svc.Metric.Cards(input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body []service.MetricCard }{Body: cards}, nil
}

type MapConfigBody struct {
	Center        mapcore.LatLng `json:"center" doc:"Map center"`
	Zoom          int            `json:"zoom" doc:"Zoom level"`
	BaseStyle     string         `json:"baseStyle" doc:"Base style" enum:"satellite,terrain,street"`
	ShowLabels    bool           `json:"showLabels" doc:"Show the place-label overlay on satellite imagery"`
	VisibleLayers []string       `json:"visibleLayers" doc:"Names of visible layers"`
}

func (h *APIHandler) GetMapConfig(ctx context.Context, input *struct{}) (*struct{ Body MapConfigBody }, error) {
	if h.svc == nil || h.svc.Map == nil {
		return nil, huma.Error400BadRequest("map not available")
	}
	cfg := h.svc.Map.Config()
	body := MapConfigBody{
		Center:     cfg.Center,
		Zoom:       cfg.Zoom,
		BaseStyle:  string(cfg.BaseStyle),
		ShowLabels: cfg.ShowLabels,
	}
	for name, on := range cfg.VisibleLayers {
		if on {
			body.VisibleLayers = append(body.VisibleLayers, name)
		}
	}
	return &struct{ Body MapConfigBody }{Body: body}, nil
}

func (h *APIHandler) PutMapConfig(ctx context.Context, input *struct{ Body MapConfigBody }) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Map == nil {
		return nil, huma.Error400BadRequest("map not available")
	}
	cfg := mapcore.MapConfig{
		Center:        input.Body.Center,
		Zoom:          input.Body.Zoom,
		BaseStyle:     mapcore.BaseStyle(input.Body.BaseStyle),
		ShowLabels:    input.Body.ShowLabels,
		VisibleLayers: make(map[string]bool, len(input.Body.VisibleLayers)),
	}
	for _, name := range input.Body.VisibleLayers {
		cfg.VisibleLayers[name] = true
	}
	if err := h.svc.Map.ApplyConfig(cfg); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Map configuration applied"}}, nil
}

type LayersBody struct {
	Visible []string `json:"visible" doc:"Names of layers that should be visible"`
}

func (h *APIHandler) PutMapLayers(ctx context.Context, input *struct{ Body LayersBody }) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Map == nil {
		return nil, huma.Error400BadRequest("map not available")
	}
	if err := h.svc.Map.SetVisibleLayers(input.Body.Visible); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer visibility applied"}}, nil
}

type OpacityBody struct {
	Opacity float64 `json:"opacity" minimum:"0" maximum:"100" doc:"Zone overlay opacity percentage"`
}

func (h *APIHandler) PutMapOpacity(ctx context.Context, input *struct{ Body OpacityBody }) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Map == nil {
		return nil, huma.Error400BadRequest("map not available")
	}
	if err := h.svc.Map.SetOverlayOpacity(input.Body.Opacity); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Overlay opacity applied"}}, nil
}
