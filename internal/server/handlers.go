package server

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// parsedRequest is a decoded form plus the uploaded files to close afterwards.
type parsedRequest struct {
	input pipeline.Input
	files []multipart.File
	form  *multipart.Form
}

func (p *parsedRequest) close() {
	for _, f := range p.files {
		_ = f.Close()
	}
	if p.form != nil {
		_ = p.form.RemoveAll()
	}
}

// handleTranscribe runs the pipeline and answers with the mode's result shape.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer req.close()

	result, err := s.runner.Run(r.Context(), req.input)
	if err != nil {
		if isClientAbort(err) {
			s.logger.Warn("client went away", "request_id", req.input.RunID)
			return
		}
		s.logger.Error("pipeline run failed", "request_id", req.input.RunID, "status", HTTPStatus(err), "error", err)
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleTranscribeStream runs the pipeline and streams progress via SSE
func (s *Server) handleTranscribeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer req.close()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	runID := req.input.RunID
	req.input.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, event); err != nil {
			s.logger.Warn("failed to write progress event", "request_id", runID, "error", err)
		}
	}

	stopHeartbeat := sse.StartHeartbeat(r.Context(), s.heartbeat)
	result, err := s.runner.Run(r.Context(), req.input)
	stopHeartbeat()

	status := "completed"
	switch {
	case err != nil && isClientAbort(err):
		s.logger.Warn("client went away", "request_id", runID)
		return
	case err != nil:
		s.logger.Error("pipeline run failed", "request_id", runID, "status", HTTPStatus(err), "error", err)
		status = "failed"
		err = sse.WriteError(err)
	default:
		err = sse.WriteEvent(EventResult, result)
	}
	if err == nil {
		err = sse.WriteComplete(runID, status)
	}
	if err != nil {
		s.logger.Warn("failed to finish event stream", "request_id", runID, "error", err)
	}
}

// parseRequest decodes the multipart (or urlencoded) form into a pipeline input.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (*parsedRequest, error) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "body", Message: "request exceeds upload size limit"}
		}
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}

	req := &parsedRequest{form: r.MultipartForm}
	in := &req.input
	in.RunID = requestID(r.Context())
	in.Mode = generation.ParseMode(r.FormValue("mode"))
	in.AudioURL = strings.TrimSpace(r.FormValue("audioUrl"))
	in.Transcript = r.FormValue("transcript")

	if in.SkipSummary, err = parseBool(r.FormValue("skipSummary")); err != nil {
		req.close()
		return nil, &ErrValidation{Field: "skipSummary", Message: "must be a boolean"}
	}

	if in.Audio, err = req.formFile(r, "audio"); err != nil {
		req.close()
		return nil, err
	}
	if in.Document, err = req.formFile(r, "file"); err != nil {
		req.close()
		return nil, err
	}

	in.Params = generation.Params{
		Instruction: r.FormValue("prompt"),
		Curriculum: generation.CurriculumParams{
			Title:       r.FormValue("title"),
			Subtitle:    r.FormValue("subtitle"),
			Description: r.FormValue("description"),
			Overview:    r.FormValue("overview"),
			Topics:      parseTopics(r.Form["topics"]),
			Level:       r.FormValue("level"),
			Duration:    r.FormValue("duration"),
		},
		Quiz: generation.QuizParams{
			ExamTitle:       r.FormValue("examTitle"),
			DifficultyLevel: r.FormValue("difficultyLevel"),
			Topic:           r.FormValue("topic"),
		},
	}

	if raw := strings.TrimSpace(r.FormValue("questionConfigs")); raw != "" {
		var configs []types.QuestionConfig
		if err := json.Unmarshal([]byte(raw), &configs); err != nil {
			req.close()
			return nil, &ErrValidation{Field: "questionConfigs", Message: "must be a JSON array of {type, count}"}
		}
		in.Params.Quiz.QuestionConfigs = configs
	}

	return req, nil
}

// formFile opens an optional uploaded file. A missing file is not an error.
func (p *parsedRequest) formFile(r *http.Request, field string) (*pipeline.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: err.Error()}
	}
	p.files = append(p.files, f)
	return &pipeline.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     f,
	}, nil
}

func parseBool(v string) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// parseTopics accepts repeated fields, a JSON array, or a comma-separated list.
func parseTopics(values []string) []string {
	var topics []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		var list []string
		if !strings.HasPrefix(v, "[") || json.Unmarshal([]byte(v), &list) != nil {
			list = strings.Split(v, ",")
		}
		for _, t := range list {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	return topics
}
