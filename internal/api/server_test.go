package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aquamind/growthengine/internal/database"
	"github.com/aquamind/growthengine/internal/dispatch"
	"github.com/aquamind/growthengine/pkg/forecast"
	"github.com/aquamind/growthengine/pkg/liveprojection"
	"github.com/aquamind/growthengine/pkg/projection"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires a Server against a fresh in-memory sqlite database, the
// same way cmd/aquamind wires the production server, so these are smoke
// tests of the real routing/binding/persistence path rather than a mocked
// handler test.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := database.NewRepository(db)
	disp := dispatch.NewDispatcher(repo, zerolog.Nop())
	projEngine := projection.NewEngine(repo)
	liveEngine := liveprojection.NewEngine(repo, liveprojection.Config{})
	forecastEngine := forecast.NewEngine(repo)

	return NewServer(repo, "0", projEngine, liveEngine, forecastEngine, disp)
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBatch_PersistsAndReturns201(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/v1/batches", batchRequest{
		ExternalNumber: "B-001",
		Species:        "salmon",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out["ID"])
}

func TestCreateBatch_MissingRequiredFieldReturns400(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/v1/batches", map[string]interface{}{
		"species": "salmon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Creating a growth sample must notify the dispatcher without the caller
// ever seeing that as a failure, even though the dispatcher's queue here is
// the same repo instance (§4.9 best-effort semantics).
func TestCreateGrowthSample_TriggersDispatchWithoutError(t *testing.T) {
	s := newTestServer(t)

	batchRec := doRequest(s, http.MethodPost, "/api/v1/batches", batchRequest{
		ExternalNumber: "B-001", Species: "salmon", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, batchRec.Code)
	var batch map[string]interface{}
	require.NoError(t, json.Unmarshal(batchRec.Body.Bytes(), &batch))

	containerRec := doRequest(s, http.MethodPost, "/api/v1/containers", containerRequest{Name: "C-1", Class: "tank"})
	require.Equal(t, http.StatusCreated, containerRec.Code)
	var container map[string]interface{}
	require.NoError(t, json.Unmarshal(containerRec.Body.Bytes(), &container))

	assignmentRec := doRequest(s, http.MethodPost, "/api/v1/assignments", assignmentRequest{
		BatchID:         batch["ID"].(string),
		ContainerID:     container["ID"].(string),
		Stage:           "parr",
		AssignmentDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PopulationCount: 1000,
		AvgWeightG:      50.0,
	})
	require.Equal(t, http.StatusCreated, assignmentRec.Code)
	var assignment map[string]interface{}
	require.NoError(t, json.Unmarshal(assignmentRec.Body.Bytes(), &assignment))

	weight := 55.0
	sampleRec := doRequest(s, http.MethodPost, "/api/v1/growth_sample", growthSampleRequest{
		AssignmentID: assignment["ID"].(string),
		SampleDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		AvgWeightG:   &weight,
	})
	assert.Equal(t, http.StatusCreated, sampleRec.Code)
}

func TestGetScenario_UnknownIDReturnsError(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/v1/scenario/does-not-exist", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
