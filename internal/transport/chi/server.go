package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	logpkg "github.com/kailas-cloud/prepscore/internal/logger"
	"github.com/kailas-cloud/prepscore/internal/metrics"
	gen "github.com/kailas-cloud/prepscore/internal/transport/generated"
	healthuc "github.com/kailas-cloud/prepscore/internal/usecase/health"
	"github.com/kailas-cloud/prepscore/internal/usecase/live"
	usageuc "github.com/kailas-cloud/prepscore/internal/usecase/usage"
)

const maxEvaluationBody = 1 << 20

// Evaluator scores a question/answer pair.
type Evaluator interface {
	Score(ctx context.Context, req domain.EvaluationRequest) (domain.CompositeScore, error)
}

// Captures manages live answer captures.
type Captures interface {
	Start(ctx context.Context) (live.Info, error)
	Feed(id string) (io.Writer, error)
	Events(id string) (<-chan domain.CaptureEvent, func(), error)
	Stop(id string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	evaluator     Evaluator
	captures      Captures
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. A nil captures disables the live capture routes.
func NewServer(
	evaluator Evaluator,
	captures Captures,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		evaluator: evaluator,
		captures:  captures,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrCaptureNotFound, http.StatusNotFound, gen.ErrorResponseCodeCaptureNotFound),
		sentinelHandler(domain.ErrCapabilityUnavailable,
			http.StatusServiceUnavailable, gen.ErrorResponseCodeCapabilityUnavailable),
		sentinelHandler(domain.ErrDeviceBusy, http.StatusConflict, gen.ErrorResponseCodeDeviceBusy),
		sentinelHandler(domain.ErrSessionActive, http.StatusConflict, gen.ErrorResponseCodeSessionActive),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, gen.ErrorResponseCodeEmbeddingQuotaExceeded),
	}
	return s
}

// ParamErrorHandler answers requests whose path or query parameters fail to bind.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, err.Error())
}

// CreateEvaluation handles POST /v1/evaluations.
func (s *Server) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var body gen.CreateEvaluationJSONRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEvaluationBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "invalid request body")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	score, err := s.evaluator.Score(ctx, domain.EvaluationRequest{
		Question: body.Question,
		Answer:   body.Answer,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	degraded := score.Degraded
	if degraded == nil {
		degraded = []string{}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, gen.EvaluationResponse{
		Score:            score.Score,
		Relevance:        score.Relevance,
		GrammarErrorRate: score.GrammarErrorRate,
		Perfection:       score.Perfection,
		Degraded:         degraded,
	})
}

// ClassifyVoice handles POST /v1/voice/classify.
func (s *Server) ClassifyVoice(w http.ResponseWriter, r *http.Request) {
	var body gen.ClassifyVoiceJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "invalid request body")
		return
	}
	if body.Level == nil || *body.Level < 0 || *body.Level > domain.MaxLevel {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest,
			fmt.Sprintf("level must be between 0 and %d", domain.MaxLevel))
		return
	}

	writeJSON(w, http.StatusOK, voiceToGen(domain.Classify(uint8(*body.Level))))
}

// StartCapture handles POST /v1/captures.
func (s *Server) StartCapture(w http.ResponseWriter, r *http.Request) {
	if s.captures == nil {
		s.handleDomainError(w, r, domain.ErrCapabilityUnavailable)
		return
	}
	info, err := s.captures.Start(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/captures/"+info.ID)
	writeJSON(w, http.StatusCreated, gen.CaptureInfo{Id: info.ID, Speech: info.Speech})
}

// FeedCaptureAudio handles PUT /v1/captures/{id}/audio. The body is raw
// PCM16LE mono and may be streamed for the lifetime of the capture, so the
// server-wide read timeout is lifted for this request.
func (s *Server) FeedCaptureAudio(w http.ResponseWriter, r *http.Request, id gen.CaptureId) {
	if s.captures == nil {
		s.handleDomainError(w, r, domain.ErrCaptureNotFound)
		return
	}
	sink, err := s.captures.Feed(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger := logpkg.FromContext(r.Context(), s.logger)
	if err := http.NewResponseController(w).SetReadDeadline(time.Time{}); err != nil &&
		!errors.Is(err, http.ErrNotSupported) {
		logger.Warn("failed to clear read deadline", zap.Error(err))
	}

	n, err := io.Copy(sink, r.Body)
	w.Header().Set("X-Audio-Bytes", strconv.FormatInt(n, 10))
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		logger.Warn("audio upload interrupted", zap.Int64("bytes", n), zap.Error(err))
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "audio upload interrupted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamCaptureEvents handles GET /v1/captures/{id}/events as server-sent events.
func (s *Server) StreamCaptureEvents(w http.ResponseWriter, r *http.Request, id gen.CaptureId) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "streaming unsupported")
		return
	}
	if s.captures == nil {
		s.handleDomainError(w, r, domain.ErrCaptureNotFound)
		return
	}

	events, cancel, err := s.captures.Events(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
			if ev.Type == domain.CaptureEventEnd {
				return
			}
		}
	}
}

// StopCapture handles DELETE /v1/captures/{id}.
func (s *Server) StopCapture(w http.ResponseWriter, r *http.Request, id gen.CaptureId) {
	if s.captures == nil {
		s.handleDomainError(w, r, domain.ErrCaptureNotFound)
		return
	}
	if err := s.captures.Stop(id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params gen.GetUsageParams) {
	var raw string
	if params.Period != nil {
		raw = string(*params.Period)
	}
	period, err := usageuc.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	u := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, gen.UsageResponse{
		Period:    gen.UsageResponsePeriod(u.Period),
		Limit:     u.Limit,
		Used:      u.Used,
		Remaining: u.Remaining,
		Exhausted: u.Exhausted,
		ResetsAt:  u.ResetsAt,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: gen.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func voiceToGen(m domain.VoiceMetrics) gen.VoiceMetrics {
	return gen.VoiceMetrics{
		Level:   int(m.Level),
		Volume:  m.Volume,
		Pace:    gen.VoiceMetricsPace(m.Pace),
		Clarity: gen.VoiceMetricsClarity(m.Clarity),
	}
}

func eventToGen(ev domain.CaptureEvent) gen.CaptureEvent {
	out := gen.CaptureEvent{
		CaptureId: ev.CaptureID,
		Type:      gen.CaptureEventType(ev.Type),
		Time:      ev.Time,
	}
	if ev.Transcript != nil {
		out.Transcript = &gen.TranscriptUpdate{Transcript: ev.Transcript.Transcript, Final: ev.Transcript.Final}
	}
	if ev.Voice != nil {
		v := voiceToGen(*ev.Voice)
		out.Voice = &v
	}
	if ev.Error != "" {
		msg := ev.Error
		out.Error = &msg
	}
	return out
}

func writeEvent(w io.Writer, ev domain.CaptureEvent) error {
	data, err := json.Marshal(eventToGen(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Invalid input keeps its
// detail (which field failed); everything else is reduced to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrEmptyText,
		domain.ErrCaptureNotFound,
		domain.ErrCapabilityUnavailable,
		domain.ErrDeviceBusy,
		domain.ErrSessionActive,
		domain.ErrEmbeddingQuotaExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
}
