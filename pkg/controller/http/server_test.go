package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/fusa-lab/talos/pkg/controller/http"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/repository/memory"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/usecase"
)

func setupServer(t *testing.T) (*httptest.Server, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	catalogSvc, err := catalog.New()
	gt.NoError(t, err).Required()
	uc := usecase.New(repo, catalogSvc)
	srv := httptest.NewServer(httpctrl.New(uc))
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	gt.NoError(t, err).Required()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getPath(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(dst)).Required()
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupServer(t)

	resp := getPath(t, srv, "/health")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
}

func TestServer_CreateAndGetSession(t *testing.T) {
	srv, _ := setupServer(t)

	resp := postJSON(t, srv, "/api/sessions", map[string]string{
		"item_name": "Electric Power Steering",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)

	var created struct {
		ID       string `json:"id"`
		ItemName string `json:"item_name"`
		Stage    string `json:"stage"`
	}
	decodeBody(t, resp, &created)
	gt.Value(t, created.ItemName).Equal("Electric Power Steering")
	gt.Value(t, created.Stage).Equal(string(types.StageNotStarted))

	resp = getPath(t, srv, "/api/sessions/"+created.ID)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var fetched struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &fetched)
	gt.Value(t, fetched.ID).Equal(created.ID)
}

func TestServer_CreateSessionWithoutItemName(t *testing.T) {
	srv, _ := setupServer(t)

	resp := postJSON(t, srv, "/api/sessions", map[string]string{})
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}

func TestServer_GetSessionNotFound(t *testing.T) {
	srv, _ := setupServer(t)

	resp := getPath(t, srv, "/api/sessions/no-such-session")
	gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
}

func TestServer_ListSessions(t *testing.T) {
	srv, _ := setupServer(t)

	postJSON(t, srv, "/api/sessions", map[string]string{"item_name": "Item A"})
	postJSON(t, srv, "/api/sessions", map[string]string{"item_name": "Item B"})

	resp := getPath(t, srv, "/api/sessions")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		Sessions []struct {
			ItemName string `json:"item_name"`
		} `json:"sessions"`
	}
	decodeBody(t, resp, &body)
	gt.Array(t, body.Sessions).Length(2)
}

func TestServer_AdvanceStage(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	sess, err := repo.Session().Create(ctx, model.NewSession("Brake Controller", ""))
	gt.NoError(t, err).Required()
	id := string(sess.ID)

	// No item definition yet, the prerequisite fails.
	resp := postJSON(t, srv, "/api/sessions/"+id+"/advance", map[string]string{
		"target": string(types.StageFunctionsExtracted),
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusPreconditionFailed)

	sess.ItemDefinition = "Electronic brake actuation without mechanical fallback."
	_, err = repo.Session().Update(ctx, sess)
	gt.NoError(t, err).Required()

	resp = postJSON(t, srv, "/api/sessions/"+id+"/advance", map[string]string{
		"target": string(types.StageFunctionsExtracted),
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		Stage string `json:"stage"`
	}
	decodeBody(t, resp, &body)
	gt.Value(t, body.Stage).Equal(string(types.StageFunctionsExtracted))

	resp = getPath(t, srv, "/api/sessions/"+id+"/stage")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	decodeBody(t, resp, &body)
	gt.Value(t, body.Stage).Equal(string(types.StageFunctionsExtracted))
}

func TestServer_AdvanceStageInvalidTarget(t *testing.T) {
	srv, repo := setupServer(t)

	sess, err := repo.Session().Create(context.Background(), model.NewSession("Brake Controller", ""))
	gt.NoError(t, err).Required()

	resp := postJSON(t, srv, "/api/sessions/"+string(sess.ID)+"/advance", map[string]string{
		"target": "warp_speed",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}

func TestServer_ChatWithoutLLM(t *testing.T) {
	srv, repo := setupServer(t)

	sess, err := repo.Session().Create(context.Background(), model.NewSession("Brake Controller", ""))
	gt.NoError(t, err).Required()

	resp := postJSON(t, srv, "/api/sessions/"+string(sess.ID)+"/chat", map[string]string{
		"message": "extract the functions",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusServiceUnavailable)
}

func TestServer_Classify(t *testing.T) {
	srv, _ := setupServer(t)

	resp := postJSON(t, srv, "/api/classify", map[string]string{
		"severity":        "S3",
		"exposure":        "E4",
		"controllability": "C3",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		ASIL               string `json:"asil"`
		RequiresSafetyGoal bool   `json:"requires_safety_goal"`
	}
	decodeBody(t, resp, &body)
	gt.Value(t, body.ASIL).Equal(string(types.ASILD))
	gt.Bool(t, body.RequiresSafetyGoal).True()
}

func TestServer_ClassifyInvalidRating(t *testing.T) {
	srv, _ := setupServer(t)

	resp := postJSON(t, srv, "/api/classify", map[string]string{
		"severity":        "S9",
		"exposure":        "E2",
		"controllability": "C1",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}

func TestServer_CombineExposure(t *testing.T) {
	srv, _ := setupServer(t)

	resp := postJSON(t, srv, "/api/exposure/combine", map[string]any{
		"exposures": []string{"E4", "E2", "E3"},
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		Exposure string `json:"exposure"`
	}
	decodeBody(t, resp, &body)
	gt.Value(t, body.Exposure).Equal(string(types.ExposureE2))

	resp = postJSON(t, srv, "/api/exposure/combine", map[string]any{
		"exposures": []string{},
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}

func TestServer_ListSituations(t *testing.T) {
	srv, _ := setupServer(t)

	resp := getPath(t, srv, "/api/catalog/situations")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		Situations []struct {
			ID    string `json:"id"`
			Group string `json:"group"`
		} `json:"situations"`
	}
	decodeBody(t, resp, &body)
	gt.Number(t, len(body.Situations)).Greater(0)

	resp = getPath(t, srv, "/api/catalog/situations?group=urban")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	decodeBody(t, resp, &body)
	gt.Number(t, len(body.Situations)).Greater(0)
	for _, sit := range body.Situations {
		gt.Value(t, sit.Group).Equal(string(types.SituationGroupUrban))
	}

	resp = getPath(t, srv, "/api/catalog/situations?group=underwater")
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}

func TestServer_Report(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	sess := model.NewSession("Electric Power Steering", "")
	sess.Hazards = []*model.Hazard{{
		ID:              model.NewHazardID(1),
		Function:        "Assist torque",
		GuideWord:       types.GuideWordMore,
		Malfunction:     "Excessive assist torque",
		Event:           "Unintended self steering at speed",
		Severity:        types.SeverityS3,
		Exposure:        types.ExposureE4,
		Controllability: types.ControllabilityC3,
		ASIL:            types.ASILD,
	}}
	_, err := repo.Session().Create(ctx, sess)
	gt.NoError(t, err).Required()

	resp := getPath(t, srv, "/api/sessions/"+string(sess.ID)+"/report")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	gt.Value(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown")).Equal(true)
}

func TestServer_Activities(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	sess, err := repo.Session().Create(ctx, model.NewSession("Brake Controller", ""))
	gt.NoError(t, err).Required()

	entry := &model.Activity{
		ID:        model.NewActivityID(),
		SessionID: sess.ID,
		Tool:      "talos_extract_functions",
		Message:   "ok",
	}
	_, err = repo.Activity().Create(ctx, entry)
	gt.NoError(t, err).Required()

	resp := getPath(t, srv, "/api/sessions/"+string(sess.ID)+"/activities")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body struct {
		Activities []struct {
			Tool string `json:"tool"`
		} `json:"activities"`
	}
	decodeBody(t, resp, &body)
	gt.Array(t, body.Activities).Length(1)
	gt.Value(t, body.Activities[0].Tool).Equal("talos_extract_functions")
}
