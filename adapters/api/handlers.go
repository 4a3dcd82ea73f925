package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// predictRequest is the wire shape of a prediction call: the flat
// feature payload keyed by column name.
type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Position   gridiron.Position  `json:"position"`
	Prediction map[string]float64 `json:"prediction"`
	Cached     bool               `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	position := gridiron.Position(strings.ToUpper(chi.URLParam(r, "position")))
	if !position.Valid() {
		writeError(w, http.StatusBadRequest, "unsupported position")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Features) == 0 {
		writeError(w, http.StatusBadRequest, "features payload is required")
		return
	}

	result, err := s.predictions.Predict(r.Context(), position, req.Features)
	if err != nil {
		switch {
		case core.IsContractViolation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case core.IsNotFoundError(err):
			writeError(w, http.StatusNotFound, err.Error())
		case core.IsVersionError(err):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.logger.Error("[API] prediction failed: %v", err)
			writeError(w, http.StatusInternalServerError, "prediction failed")
		}
		return
	}

	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Position:   position,
		Prediction: result.Prediction.Flatten(),
		Cached:     result.CacheHit,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.predictions.CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.predictions.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleDiagnosticsReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.diagnostics.Report(r.Context())
	if err != nil {
		s.logger.Error("[API] diagnostics report failed: %v", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	md := report.Markdown()
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(md))
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(markdown.ToHTML([]byte(md), p, renderer))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
