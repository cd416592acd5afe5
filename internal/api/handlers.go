package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"JudgmentScanner/internal/domain"
)

var judgeFilterParams = []string{"circuit_id", "judge_type_id"}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.reader.ListCases(r.Context())
	if err != nil {
		s.internalError(w, "list cases", err)
		return
	}
	if len(cases) == 0 {
		writeMessage(w, http.StatusNotFound, "No cases found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseNo := chi.URLParam(r, "case_no")

	c, err := s.reader.CaseByNumber(r.Context(), caseNo)
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Case not found")
		return
	}
	if err != nil {
		s.internalError(w, "get case", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"case": c})
}

func (s *Server) handleListJudges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := map[string]int{}

	for key := range query {
		if !isJudgeFilter(key) {
			writeMessage(w, http.StatusBadRequest, "Unknown filter: "+key)
			return
		}
	}
	for _, key := range judgeFilterParams {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid "+key)
			return
		}
		filters[key] = value
	}

	judges, err := s.reader.ListJudges(r.Context(), filters)
	if errors.Is(err, domain.ErrUnknownFilter) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "list judges", err)
		return
	}
	if len(judges) == 0 {
		writeMessage(w, http.StatusNotFound, "No judges found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"judges": judges})
}

func (s *Server) handleGetJudge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "judge_id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid judge id")
		return
	}

	judge, err := s.reader.JudgeByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Judge not found")
		return
	}
	if err != nil {
		s.internalError(w, "get judge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"judge": judge})
}

func (s *Server) handleListCircuits(w http.ResponseWriter, r *http.Request) {
	circuits, err := s.reader.ListCircuits(r.Context())
	if err != nil {
		s.internalError(w, "list circuits", err)
		return
	}
	if len(circuits) == 0 {
		writeMessage(w, http.StatusNotFound, "No circuits found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"circuits": circuits})
}

func (s *Server) handleListJudgeTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.reader.ListJudgeTypes(r.Context())
	if err != nil {
		s.internalError(w, "list judge types", err)
		return
	}
	if len(types) == 0 {
		writeMessage(w, http.StatusNotFound, "No judge types found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"judge_types": types})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

func isJudgeFilter(key string) bool {
	for _, allowed := range judgeFilterParams {
		if key == allowed {
			return true
		}
	}
	return false
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
