package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/relieflab/assessdash/internal/mapcore"
	"github.com/relieflab/assessdash/internal/service"
)

func testAPI(t *testing.T) (humatest.TestAPI, *Services) {
	t.Helper()
	_, api := humatest.New(t)
	svc := &Services{
		Assessment: service.NewAssessmentService(t.TempDir()),
		Map:        service.NewMapService(mapcore.NewMemoryEngine(), nil),
	}
	RegisterRoutes(api, svc)
	return api, svc
}

func TestGetHealth(t *testing.T) {
	api, _ := testAPI(t)

	resp := api.Get("/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var body HealthBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Status)
	}
}

func TestAssessmentEndpoints(t *testing.T) {
	api, _ := testAPI(t)

	resp := api.Post("/api/v1/assessments", map[string]any{
		"name":         "Coastal Flood",
		"disasterType": "flood",
		"map": map[string]any{
			"center":        map[string]float64{"lat": 34.05, "lng": -118.24},
			"zoom":          12,
			"baseStyle":     "satellite",
			"visibleLayers": []string{"damage", "alerts"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", resp.Code, resp.Body.String())
	}

	var created CreatedAssessmentBody
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != "coastal_flood" {
		t.Fatalf("id = %q", created.ID)
	}

	resp = api.Get("/api/v1/assessments/coastal_flood")
	if resp.Code != http.StatusOK {
		t.Fatalf("get status = %d", resp.Code)
	}

	resp = api.Post("/api/v1/assessments/coastal_flood/activate")
	if resp.Code != http.StatusOK {
		t.Fatalf("activate status = %d: %s", resp.Code, resp.Body.String())
	}

	resp = api.Get("/api/v1/map/config")
	if resp.Code != http.StatusOK {
		t.Fatalf("map config status = %d", resp.Code)
	}
	var cfg MapConfigBody
	if err := json.Unmarshal(resp.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseStyle != "satellite" {
		t.Fatalf("baseStyle = %q", cfg.BaseStyle)
	}

	resp = api.Delete("/api/v1/assessments/coastal_flood")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete status = %d", resp.Code)
	}
	resp = api.Get("/api/v1/assessments/coastal_flood")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", resp.Code)
	}
}

func TestUnknownAssessmentIs404(t *testing.T) {
	api, _ := testAPI(t)

	resp := api.Get("/api/v1/assessments/nope")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
	resp = api.Post("/api/v1/assessments/nope/activate")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("activate status = %d, want 404", resp.Code)
	}
}

func TestFeatureEndpointsWithoutStore(t *testing.T) {
	api, _ := testAPI(t)

	// No DuckDB wired in this test; the handlers degrade to 400.
	resp := api.Get("/api/v1/assessments/x/features")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestPutMapLayers(t *testing.T) {
	api, svc := testAPI(t)

	if _, err := svc.Assessment.Create(service.Assessment{Name: "A"}); err != nil {
		t.Fatal(err)
	}
	resp := api.Post("/api/v1/assessments/a/activate")
	if resp.Code != http.StatusOK {
		t.Fatalf("activate status = %d", resp.Code)
	}

	resp = api.Put("/api/v1/map/layers", map[string]any{
		"visible": []string{"resources", "heatmap"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}

	visible := svc.Map.VisibleLayers()
	if !visible["resources"] || !visible["heatmap"] || len(visible) != 2 {
		t.Fatalf("visible = %v", visible)
	}
}
