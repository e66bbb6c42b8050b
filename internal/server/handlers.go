package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- Plans ---

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Plans())
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	detail := s.svc.PlanDetailByID(id)
	if detail == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title required"})
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.CreatePlan(req.Title, req.Notes))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.DeletePlan(id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Draft lifecycle ---

func (s *Server) handleOpenDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	d := s.svc.OpenDraft(id)
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	d := s.svc.DraftFor(id)
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no open draft"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCommitDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.CommitDraft(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.CancelDraft(id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Draft edits ---

func (s *Server) handlePatchDraftPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Title    string `json:"title"`
		Notes    string `json:"notes"`
		Favorite bool   `json:"is_favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.UpdateDraftPlan(id, req.Title, req.Notes, req.Favorite); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddDraftPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		CatalogID string `json:"catalog_id"`
		Name      string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.CatalogID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "catalog_id required"})
		return
	}
	p, err := s.svc.AddDraftPrescription(id, req.CatalogID, req.Name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePatchDraftPrescription(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	prescID, ok := pathUUID(w, r, "prescID")
	if !ok {
		return
	}
	var patch service.PrescriptionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.UpdateDraftPrescription(planID, prescID, patch); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveDraftPrescription(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	prescID, ok := pathUUID(w, r, "prescID")
	if !ok {
		return
	}
	if err := s.svc.RemoveDraftPrescription(planID, prescID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddDraftSet(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	prescID, ok := pathUUID(w, r, "prescID")
	if !ok {
		return
	}
	set, err := s.svc.AddDraftSet(planID, prescID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handlePatchDraftSet(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	setID, ok := pathUUID(w, r, "setID")
	if !ok {
		return
	}
	var patch service.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.UpdateDraftSet(planID, setID, patch); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveDraftSet(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	setID, ok := pathUUID(w, r, "setID")
	if !ok {
		return
	}
	if err := s.svc.RemoveDraftSet(planID, setID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Suggestions ---

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.PendingSuggestions(id))
}

func (s *Server) handleGroupedSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.GroupedSuggestions(id))
}

func (s *Server) handleSubmitSuggestions(w http.ResponseWriter, r *http.Request) {
	var candidates []models.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&candidates); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	stored := s.svc.SubmitSuggestions(candidates)
	writeJSON(w, http.StatusOK, map[string]any{
		"received": len(candidates),
		"stored":   stored,
	})
}

func (s *Server) handleAcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.AcceptSuggestion(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.RejectSuggestion(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeferSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.svc.DeferSuggestion(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAcceptAllSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	n := s.svc.AcceptAllSuggestions(id)
	writeJSON(w, http.StatusOK, map[string]int{"accepted": n})
}

// --- Performances and history ---

func (s *Server) handleRecordPerformance(w http.ResponseWriter, r *http.Request) {
	var p models.Performance
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if p.CatalogID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "catalog_id required"})
		return
	}
	stored, history, err := s.svc.RecordPerformance(r.Context(), p)
	if err != nil {
		s.log.Error("record performance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"performance_id": stored.ID,
		"history":        history,
	})
}

func (s *Server) handleDeletePerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.DeletePerformance(r.Context(), id); err != nil {
		s.log.Error("delete performance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPerformances(w http.ResponseWriter, r *http.Request) {
	catalogID := r.URL.Query().Get("catalog_id")
	if catalogID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "catalog_id parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Performances(catalogID))
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	catalogID := chi.URLParam(r, "catalogID")
	writeJSON(w, http.StatusOK, s.svc.ExerciseHistory(catalogID))
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
