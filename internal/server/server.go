package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/relieflab/assessdash/internal/analysis"
	"github.com/relieflab/assessdash/internal/api"
	"github.com/relieflab/assessdash/internal/api/live"
	"github.com/relieflab/assessdash/internal/db"
	"github.com/relieflab/assessdash/internal/mapcore"
	"github.com/relieflab/assessdash/internal/render"
	"github.com/relieflab/assessdash/internal/service"
	"github.com/relieflab/assessdash/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and templates

	AnalysisURL   string // Base URL of the image-analysis backend, empty disables uploads
	RedisAddr     string // Optional redis cache for analysis results
	RedisPassword string
}

// snapshotSize is the rendered map snapshot in pixels.
const (
	snapshotWidth  = 1280
	snapshotHeight = 800
)

// Server is the assessment dashboard HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	renderer *templates.Renderer

	analysisClient *analysis.Client
	analysisStore  *analysis.Store
}

// New creates a new dashboard server.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("assessdash API", "1.0.0")
	humaConfig.Info.Description = "Disaster assessment dashboard API for managing assessments, map layers, and impact analysis."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
	}

	// The feature store degrades to nil when DuckDB cannot open; the
	// handlers guard for it.
	conn, err := db.Get(db.Config{
		DataDir: cfg.DataDir,
		DBName:  "assessdash",
	})
	if err == nil {
		s.db = conn
	}

	var featureService *service.FeatureService
	var metricService *service.MetricService
	if s.db != nil {
		featureService = service.NewFeatureService(s.db)
		metricService = service.NewMetricService(s.db)
	}

	engine := render.NewEngine(snapshotWidth, snapshotHeight)
	// Assign through the interface type so a nil *FeatureService stays
	// a nil interface inside the map service.
	var featureSource service.FeatureSource
	if featureService != nil {
		featureSource = featureService
	}
	mapService := service.NewMapService(engine, featureSource)
	s.services = &api.Services{
		Assessment: service.NewAssessmentService(cfg.DataDir),
		Feature:    featureService,
		Metric:     metricService,
		Map:        mapService,
	}

	// Template renderer for the Datastar SSE handlers
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			s.renderer = r
			fmt.Printf("Loaded fragment templates from %s\n", fragmentsDir)
		}
	}

	if cfg.AnalysisURL != "" {
		s.analysisClient = analysis.NewClient(cfg.AnalysisURL)
	}
	s.analysisStore = analysis.NewStore(analysis.OpenRedis(cfg.RedisAddr, cfg.RedisPassword))

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	s.services.Map.Shutdown()
	return db.Close()
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewAnalysisHandler(s.analysisStore).RegisterRoutes(s.humaAPI)

	// Datastar SSE routes
	if s.renderer != nil {
		live.NewPanelHandler(s.services.Map, s.services.Metric, s.analysisStore, s.renderer).RegisterRoutes(s.humaAPI)
		live.NewEventHandler(s.services.Map, s.services.Metric, s.analysisStore, s.renderer).RegisterRoutes(s.humaAPI)
	}

	// Binary and multipart routes stay on the plain mux
	s.mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/v1/map/snapshot.png", s.handleSnapshotImage)
	s.mux.HandleFunc("/api/v1/map/snapshot", s.handleSnapshotSave)

	// Static files and pages
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/dashboard", s.handleDashboard)
	}
	s.mux.HandleFunc("/", s.handleRoot)
}

// handleAnalyze proxies a pre/post image pair to the analysis backend
// and records the result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.analysisClient == nil {
		http.Error(w, "Analysis backend not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	pre, preHeader, err := r.FormFile("pre_image")
	if err != nil {
		http.Error(w, "pre_image is required", http.StatusBadRequest)
		return
	}
	defer pre.Close()
	post, postHeader, err := r.FormFile("post_image")
	if err != nil {
		http.Error(w, "post_image is required", http.StatusBadRequest)
		return
	}
	defer post.Close()

	var options map[string]any
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			http.Error(w, "Invalid options", http.StatusBadRequest)
			return
		}
	}

	result, err := s.analysisClient.Analyze(r.Context(),
		pre, preHeader.Filename, post, postHeader.Filename, options)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   analysis.ErrAnalysisFailed.Error(),
		})
		return
	}
	s.analysisStore.Put(r.Context(), result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleSnapshotImage renders the current map surface as a PNG.
func (s *Server) handleSnapshotImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.services.Map.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSnapshotSave renders and persists a snapshot under the data dir.
func (s *Server) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dir := filepath.Join(s.config.DataDir, "snapshots")
	name, err := s.services.Map.SaveSnapshot(dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"file": name,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.config.WebDir, "templates", "dashboard.html"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": "assessdash",
		"status":  "running",
		"active":  s.services.Map.ActiveAssessment(),
		"layers":  mapcore.PointLayerNames(),
	})
}
