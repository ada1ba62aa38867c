package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/usecase"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func sessionIDParam(r *http.Request) model.SessionID {
	return model.SessionID(chi.URLParam(r, "sessionID"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// --- sessions ---

type functionResponse struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Manual      bool   `json:"manual,omitempty"`
}

type situationRefResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Exposure string `json:"exposure"`
}

type hazardResponse struct {
	ID              string                 `json:"id"`
	Function        string                 `json:"function"`
	GuideWord       string                 `json:"guide_word"`
	Malfunction     string                 `json:"malfunction"`
	Event           string                 `json:"event"`
	Situations      []situationRefResponse `json:"situations,omitempty"`
	Severity        string                 `json:"severity,omitempty"`
	Exposure        string                 `json:"exposure,omitempty"`
	Controllability string                 `json:"controllability,omitempty"`
	ASIL            string                 `json:"asil,omitempty"`
	SafetyGoal      string                 `json:"safety_goal,omitempty"`
	SafeState       string                 `json:"safe_state,omitempty"`
	FTTI            string                 `json:"ftti,omitempty"`
}

type goalResponse struct {
	HazardID  string `json:"hazard_id"`
	ASIL      string `json:"asil"`
	Statement string `json:"statement"`
	SafeState string `json:"safe_state"`
	FTTI      string `json:"ftti"`
}

type sessionResponse struct {
	ID              string             `json:"id"`
	ItemName        string             `json:"item_name"`
	Stage           string             `json:"stage"`
	Functions       []functionResponse `json:"functions,omitempty"`
	Hazards         []hazardResponse   `json:"hazards,omitempty"`
	SafetyGoals     []goalResponse     `json:"safety_goals,omitempty"`
	NoGoalsRequired bool               `json:"no_goals_required,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type sessionSummaryResponse struct {
	ID        string    `json:"id"`
	ItemName  string    `json:"item_name"`
	Stage     string    `json:"stage"`
	Hazards   int       `json:"hazards"`
	CreatedAt time.Time `json:"created_at"`
}

func toSessionResponse(sess *model.Session) *sessionResponse {
	resp := &sessionResponse{
		ID:              string(sess.ID),
		ItemName:        sess.ItemName,
		Stage:           string(sess.Stage.Normalize()),
		NoGoalsRequired: sess.NoGoalsRequired,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
	}
	for _, f := range sess.Functions {
		resp.Functions = append(resp.Functions, functionResponse{
			Number:      f.Number,
			Name:        f.Name,
			Description: f.Description,
			Manual:      f.Manual,
		})
	}
	for _, h := range sess.Hazards {
		hr := hazardResponse{
			ID:              string(h.ID),
			Function:        h.Function,
			GuideWord:       string(h.GuideWord),
			Malfunction:     h.Malfunction,
			Event:           h.Event,
			Severity:        string(h.Severity),
			Exposure:        string(h.Exposure),
			Controllability: string(h.Controllability),
			ASIL:            string(h.ASIL),
			SafetyGoal:      h.SafetyGoal,
			SafeState:       h.SafeState,
			FTTI:            h.FTTI,
		}
		for _, ref := range h.Situations {
			hr.Situations = append(hr.Situations, situationRefResponse{
				ID:       string(ref.ID),
				Name:     ref.Name,
				Exposure: string(ref.Exposure),
			})
		}
		resp.Hazards = append(resp.Hazards, hr)
	}
	for _, g := range sess.SafetyGoals {
		resp.SafetyGoals = append(resp.SafetyGoals, goalResponse{
			HazardID:  string(g.HazardID),
			ASIL:      string(g.ASIL),
			Statement: g.Statement,
			SafeState: g.SafeState,
			FTTI:      g.FTTI,
		})
	}
	return resp
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemName       string `json:"item_name"`
		ItemDefinition string `json:"item_definition"`
	}
	if err := readJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.ItemName == "" {
		handleError(w, r, goerr.Wrap(usecase.ErrItemNameRequired, "item_name is required"))
		return
	}

	sess, err := s.uc.Session.Create(r.Context(), req.ItemName, req.ItemDefinition)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.uc.Session.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := struct {
		Sessions []sessionSummaryResponse `json:"sessions"`
	}{Sessions: make([]sessionSummaryResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionSummaryResponse{
			ID:        string(sess.ID),
			ItemName:  sess.ItemName,
			Stage:     string(sess.Stage.Normalize()),
			Hazards:   len(sess.Hazards),
			CreatedAt: sess.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.uc.Session.Get(r.Context(), sessionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(sess))
}

// --- workflow ---

func (s *Server) handleGetStage(w http.ResponseWriter, r *http.Request) {
	stage, err := s.uc.Workflow.CurrentStage(r.Context(), sessionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"stage": string(stage)})
}

func (s *Server) handleAdvanceStage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
	}
	if err := readJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	target, err := types.ParseStage(req.Target)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stage, err := s.uc.Workflow.TryAdvance(r.Context(), sessionIDParam(r), target)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"stage": string(stage)})
}

// --- chat ---

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.uc.Chat == nil {
		handleError(w, r, goerr.Wrap(usecase.ErrLLMNotConfigured, "chat is unavailable"))
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Message == "" {
		handleError(w, r, goerr.Wrap(errBadRequest, "message is required"))
		return
	}

	reply, err := s.uc.Chat.Chat(r.Context(), sessionIDParam(r), req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"response": reply})
}

// --- report ---

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	out, err := s.uc.Report.Render(r.Context(), sessionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(out)) //nolint:errcheck // header already committed
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	entries, err := s.uc.Session.Activities(r.Context(), sessionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	type activityResponse struct {
		ID        string    `json:"id"`
		Tool      string    `json:"tool"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	}
	resp := struct {
		Activities []activityResponse `json:"activities"`
	}{Activities: make([]activityResponse, 0, len(entries))}
	for _, a := range entries {
		resp.Activities = append(resp.Activities, activityResponse{
			ID:        string(a.ID),
			Tool:      a.Tool,
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// --- risk ---

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Severity        string `json:"severity"`
		Exposure        string `json:"exposure"`
		Controllability string `json:"controllability"`
	}
	if err := readJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	asil, err := s.uc.Risk.Classify(req.Severity, req.Exposure, req.Controllability)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"asil":                 string(asil),
		"label":                asil.Label(),
		"requires_safety_goal": asil.RequiresSafetyGoal(),
	})
}

func (s *Server) handleCombineExposure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exposures []string `json:"exposures"`
	}
	if err := readJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	combined, err := s.uc.Risk.CombineExposure(req.Exposures)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"exposure": string(combined)})
}

// --- catalog ---

func (s *Server) handleListSituations(w http.ResponseWriter, r *http.Request) {
	situations, err := s.uc.Risk.Situations(r.URL.Query().Get("group"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	type situationResponse struct {
		ID                 string `json:"id"`
		Group              string `json:"group"`
		Name               string `json:"name"`
		Exposure           string `json:"exposure"`
		ExposurePercentage string `json:"exposure_percentage,omitempty"`
		Description        string `json:"description,omitempty"`
		Rationale          string `json:"rationale,omitempty"`
	}
	resp := struct {
		Situations []situationResponse `json:"situations"`
	}{Situations: make([]situationResponse, 0, len(situations))}
	for _, sit := range situations {
		resp.Situations = append(resp.Situations, situationResponse{
			ID:                 string(sit.ID),
			Group:              string(sit.Group),
			Name:               sit.Name,
			Exposure:           string(sit.Exposure),
			ExposurePercentage: sit.ExposurePercentage,
			Description:        sit.Description,
			Rationale:          sit.Rationale,
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}
