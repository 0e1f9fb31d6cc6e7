package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/jwt"
	"github.com/qbadvisory/hr-analytics-go/internal/service/analytics"
	authservice "github.com/qbadvisory/hr-analytics-go/internal/service/auth"
	"github.com/qbadvisory/hr-analytics-go/internal/service/dataset"
)

type stubPipeline struct {
	err error
}

func (p *stubPipeline) Run(context.Context) (hr.RunReport, error) {
	if p.err != nil {
		return hr.RunReport{}, p.err
	}
	return hr.RunReport{SnapshotID: "snap-refresh"}, nil
}

func testRouter(t *testing.T, pipeline hr.PipelineService) http.Handler {
	t.Helper()

	holder := dataset.NewHolder()
	holder.Publish(&dataset.Snapshot{
		ID:       "snap-http",
		LoadedAt: time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC),
		Employees: []hr.Employee{
			{UserID: "asha@qb.example", Name: "Asha Rao", Department: "Advisory"},
		},
		Caps: hr.CapabilitySet{hr.CapLeaveDerived: true},
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("test-secret", "1h")
	authSvc := authservice.NewAuthService("dashboard@qb.example", string(hash), jwtService)
	analyticsSvc := analytics.NewAnalyticsService(holder)

	return NewRouter(
		RouterConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		jwtService,
		NewAuthHandler(authSvc),
		NewAnalyticsHandler(analyticsSvc),
		NewPipelineHandler(pipeline),
	)
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	body := `{"email":"dashboard@qb.example","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

func authedGet(router http.Handler, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := testRouter(t, &stubPipeline{})

	body := `{"email":"dashboard@qb.example","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t, &stubPipeline{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusWithToken(t *testing.T) {
	router := testRouter(t, &stubPipeline{})
	token := loginToken(t, router)

	rec := authedGet(router, token, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool              `json:"success"`
		Data    hr.SnapshotStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "snap-http", envelope.Data.SnapshotID)
}

func TestAggregateEndpoint(t *testing.T) {
	router := testRouter(t, &stubPipeline{})
	token := loginToken(t, router)

	rec := authedGet(router, token, "/api/v1/aggregates/top_unplanned?year=All")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data hr.AggregateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, hr.ViewTopUnplanned, envelope.Data.View)
	assert.True(t, envelope.Data.Available)
}

func TestUnknownTableIs404(t *testing.T) {
	router := testRouter(t, &stubPipeline{})
	token := loginToken(t, router)

	rec := authedGet(router, token, "/api/v1/tables/payroll")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshConflict(t *testing.T) {
	router := testRouter(t, &stubPipeline{err: hr.ErrRefreshInProgress})
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshRunsPipeline(t *testing.T) {
	router := testRouter(t, &stubPipeline{})
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data hr.RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "snap-refresh", envelope.Data.SnapshotID)
}
