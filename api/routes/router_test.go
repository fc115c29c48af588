package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/get2salam/price-matrix-demo/internal/analysis"
	"github.com/get2salam/price-matrix-demo/internal/pricing"
	"github.com/get2salam/price-matrix-demo/internal/solver"
	pkgauth "github.com/get2salam/price-matrix-demo/pkg/auth"
	"github.com/get2salam/price-matrix-demo/pkg/config"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPricingService struct{}

func (stubPricingService) CreateMatrix(ctx context.Context, input pricing.CreateMatrixInput) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: uuid.New(), Name: input.Name, Tiers: pricing.DefaultTiers()}, nil
}

func (stubPricingService) GetMatrix(ctx context.Context, id uuid.UUID) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: id, Name: "Stub", Tiers: pricing.DefaultTiers()}, nil
}

func (stubPricingService) ListMatrices(ctx context.Context, params pricing.ListParams) (*pricing.ListResult, error) {
	return &pricing.ListResult{Items: []pricing.MatrixSummary{}}, nil
}

func (stubPricingService) UpdateMatrix(ctx context.Context, id uuid.UUID, input pricing.UpdateMatrixInput) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: id, Name: input.Name, Tiers: pricing.DefaultTiers()}, nil
}

func (stubPricingService) DeleteMatrix(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubPricingService) AddTier(ctx context.Context, matrixID uuid.UUID, input pricing.TierInput) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: matrixID, Name: "Stub", Tiers: pricing.DefaultTiers()}, nil
}

func (stubPricingService) EditTier(ctx context.Context, matrixID uuid.UUID, position int, input pricing.EditTierInput) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: matrixID, Name: "Stub", Tiers: pricing.DefaultTiers()}, nil
}

func (stubPricingService) RemoveTier(ctx context.Context, matrixID uuid.UUID, position int) (*pricing.Matrix, error) {
	return &pricing.Matrix{ID: matrixID, Name: "Stub", Tiers: pricing.DefaultTiers()}, nil
}

type stubAnalysisService struct{}

func (stubAnalysisService) Analyze(ctx context.Context, input analysis.AnalyzeInput) (*analysis.AnalysisResult, error) {
	return &analysis.AnalysisResult{AnalysisID: uuid.New(), MatrixID: input.MatrixID, Locks: map[int]float64{}}, nil
}

func (stubAnalysisService) Get(ctx context.Context, analysisID uuid.UUID) (*analysis.AnalysisResult, error) {
	return &analysis.AnalysisResult{AnalysisID: analysisID, Locks: map[int]float64{}}, nil
}

func (stubAnalysisService) Run(ctx context.Context, analysisID uuid.UUID) (*analysis.RunResult, error) {
	return &analysis.RunResult{AnalysisID: analysisID}, nil
}

func (stubAnalysisService) RunsForMatrix(ctx context.Context, matrixID uuid.UUID, limit int) ([]analysis.RunResult, error) {
	return []analysis.RunResult{{MatrixID: matrixID}}, nil
}

func (stubAnalysisService) Recommend(ctx context.Context, analysisID uuid.UUID, input analysis.RecommendInput) (*solver.RecommendationSet, error) {
	return &solver.RecommendationSet{Converged: true}, nil
}

func (stubAnalysisService) Pin(ctx context.Context, analysisID uuid.UUID, input analysis.PinInput) (*solver.RecommendationSet, error) {
	return &solver.RecommendationSet{Converged: true}, nil
}

func (stubAnalysisService) ResetLocks(ctx context.Context, analysisID uuid.UUID) (*analysis.AnalysisResult, error) {
	return &analysis.AnalysisResult{AnalysisID: analysisID, Locks: map[int]float64{}}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.Port = "8080"
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "price-matrix-test"
	cfg.JWT.ExpirationMinutes = 30
	cfg.Engine.MaxCSVBytes = 1 << 20
	return cfg
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis client
		prometheus.NewRegistry(),
		stubPricingService{},
		stubAnalysisService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		SubjectID: uuid.New(),
		ShopName:  "Router Test Shop",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoutesArepublic(t *testing.T) {
	router := newTestRouter(testConfig())

	live := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, live)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}

	ready := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ready)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matrices", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedRoutesAcceptValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matrices", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnalysisRoutesWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg)

	body := strings.NewReader(`{"matrix_id":"` + uuid.NewString() + `","csv":"Part,Cost,Retail,Qty\nA,1.00,2.00,1"}`)
	create := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	create.Header.Set("Content-Type", "application/json")
	create.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, create)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for analyze got %d: %s", resp.Code, resp.Body.String())
	}

	analysisID := uuid.NewString()
	recommend := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/"+analysisID+"/recommendations", strings.NewReader(`{"target":{"kind":"percent","value":10}}`))
	recommend.Header.Set("Content-Type", "application/json")
	recommend.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, recommend)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for recommend got %d: %s", resp.Code, resp.Body.String())
	}

	unlock := httptest.NewRequest(http.MethodDelete, "/api/v1/analyses/"+analysisID+"/locks", nil)
	unlock.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, unlock)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for unlock got %d: %s", resp.Code, resp.Body.String())
	}

	audit := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+analysisID+"/run", nil)
	audit.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, audit)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for run audit got %d: %s", resp.Code, resp.Body.String())
	}

	history := httptest.NewRequest(http.MethodGet, "/api/v1/matrices/"+uuid.NewString()+"/runs", nil)
	history.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, history)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for run history got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestTierRoutesWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg)

	matrixID := uuid.NewString()
	edit := httptest.NewRequest(http.MethodPatch, "/api/v1/matrices/"+matrixID+"/tiers/2", strings.NewReader(`{"multiplier":2.4}`))
	edit.Header.Set("Content-Type", "application/json")
	edit.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, edit)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for tier edit got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDevTokenRouteGatedByEnvironment(t *testing.T) {
	prod := testConfig()
	prod.App.Env = "production"
	router := newTestRouter(prod)

	req := httptest.NewRequest(http.MethodPost, "/api/public/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected token route to be absent in production, got %d", resp.Code)
	}

	dev := testConfig()
	dev.App.Env = "development"
	router = newTestRouter(dev)

	req = httptest.NewRequest(http.MethodPost, "/api/public/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dev token got %d: %s", resp.Code, resp.Body.String())
	}
}
