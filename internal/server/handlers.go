package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/njchilds90/gocalculus/analysis"
	"github.com/njchilds90/gocalculus/render"
	"github.com/njchilds90/gocalculus/symbolic"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Fields    []FieldError `json:"fields,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Schema())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	rep, err := s.analyze(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	format := render.PNG
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := render.ParseFormat(q)
		if err != nil {
			s.writeError(w, r, &ValidationError{Fields: []FieldError{{Field: "format", Rule: "oneof=png svg html"}}})
			return
		}
		format = f
	}

	rep, err := s.analyze(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(rep.Series) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:     "nothing to plot",
			RequestID: chimiddleware.GetReqID(r.Context()),
		})
		return
	}

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := rep.Figure().Render(&buf, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Analysis-ID", rep.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// analyze decodes, validates and runs the body of an analysis request.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*analysis.Report, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var body AnalyzeRequest
	if err := dec.Decode(&body); err != nil {
		return nil, &decodeError{err: err}
	}
	if dec.More() {
		return nil, &decodeError{err: errors.New("invalid JSON: trailing data")}
	}
	if err := validateRequest(s.validate, &body); err != nil {
		return nil, err
	}
	req, err := body.toRequest()
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	rep, err := s.engine.Analyze(ctx, req)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(rep.Warnings) > 0:
		outcome = "warning"
	}
	s.metrics.observeAnalysis(body.Analysis, outcome, time.Since(start))
	return rep, err
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error(), RequestID: chimiddleware.GetReqID(r.Context())}
	status := http.StatusInternalServerError

	var (
		decErr   *decodeError
		tooLarge *http.MaxBytesError
		valErr   *ValidationError
		parseErr *symbolic.ParseError
		paramErr *analysis.ParamError
	)
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &decErr), errors.As(err, &parseErr):
		status = http.StatusBadRequest
	case errors.As(err, &valErr):
		status = http.StatusUnprocessableEntity
		resp.Fields = valErr.Fields
	case errors.As(err, &paramErr):
		status = http.StatusUnprocessableEntity
		resp.Fields = []FieldError{{Field: paramErr.Field, Rule: paramErr.Msg}}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		s.log.Error("request error", zap.String("request_id", resp.RequestID), zap.Error(err))
		if status == http.StatusInternalServerError {
			resp.Error = "internal server error"
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
