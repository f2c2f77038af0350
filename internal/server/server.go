// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// server.go - Mock planning server speaking the /plan-event protocol.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/eventplan-tui/internal/api"
	"github.com/jeranaias/eventplan-tui/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the mock server.
	DefaultPort = 8000

	// MaxRequestBodySize caps request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageCount caps the number of messages in a request.
	MaxMessageCount = 100

	// MaxTokensLimit is the largest accepted max_tokens value.
	MaxTokensLimit = 8192
)

// ============================================================================
// SERVER
// ============================================================================

// Options configures the mock server.
type Options struct {
	// ChunkDelay inserts a pause between streamed chunks so streaming
	// behavior is visible interactively. Zero means no delay.
	ChunkDelay time.Duration

	// ChunkSize is the number of bytes per streamed chunk. Chunks are
	// cut at rune boundaries regardless, matching the real backend.
	ChunkSize int

	// Logger receives request logs. Nil disables logging.
	Logger *log.Logger

	// RequestsPerMinute enables per-client rate limiting when positive,
	// answering excess requests with 429 like the production quota.
	RequestsPerMinute int
}

// Server is the mock planning server.
type Server struct {
	opts    Options
	limiter *rateLimiter
}

// New creates a mock server.
func New(opts Options) *Server {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 48
	}
	s := &Server{opts: opts}
	if opts.RequestsPerMinute > 0 {
		s.limiter = newRateLimiter(opts.RequestsPerMinute, time.Minute)
	}
	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/plan-event", s.handlePlanEvent)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/models", s.handleModels)

	var h http.Handler = mux
	if s.limiter != nil {
		h = rateLimitMiddleware(s.limiter)(h)
	}
	if s.opts.Logger != nil {
		h = loggingMiddleware(s.opts.Logger)(h)
	}
	return h
}

// ListenAndServe runs the mock server on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"models": model.ModelIDs()})
}

func (s *Server) handlePlanEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.PlanRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if detail := validateRequest(&req); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}

	plan := generatePlan(&req)

	if !req.Stream {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.PlanResponse{
			Message: model.WireMessage{Role: string(model.RoleModel), Content: plan},
			Model:   req.Model,
			Usage: api.UsageInfo{
				PromptTokens:     estimateTokens(req.Messages),
				CompletionTokens: len(plan) / 4,
				TotalTokens:      estimateTokens(req.Messages) + len(plan)/4,
			},
		})
		return
	}

	s.streamPlan(w, r, plan)
}

// streamPlan writes the plan as unframed UTF-8 chunks, flushing after
// each so clients observe incremental arrival.
func (s *Server) streamPlan(w http.ResponseWriter, r *http.Request, plan string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	for _, chunk := range splitChunks(plan, s.opts.ChunkSize) {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		if _, err := fmt.Fprint(w, chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if s.opts.ChunkDelay > 0 {
			time.Sleep(s.opts.ChunkDelay)
		}
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// validateRequest mirrors the production service's request checks.
// Returns an empty string when the request is acceptable.
func validateRequest(req *api.PlanRequest) string {
	if !model.ValidModel(req.Model) {
		return fmt.Sprintf("unknown model: %s", req.Model)
	}
	if len(req.Messages) == 0 {
		return "messages must not be empty"
	}
	if len(req.Messages) > MaxMessageCount {
		return fmt.Sprintf("too many messages (max %d)", MaxMessageCount)
	}
	for _, msg := range req.Messages {
		role := model.Role(msg.Role)
		if role != model.RoleUser && role != model.RoleModel {
			return fmt.Sprintf("invalid role: %s", msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" {
			return "message content must not be empty"
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return "temperature must be between 0 and 2"
	}
	if req.MaxTokens != nil && (*req.MaxTokens <= 0 || *req.MaxTokens > MaxTokensLimit) {
		return fmt.Sprintf("max_tokens must be between 1 and %d", MaxTokensLimit)
	}
	return ""
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// ============================================================================
// PLAN GENERATION
// ============================================================================

// generatePlan produces a deterministic canned plan derived from the
// last user message, with a title heading the client can extract.
func generatePlan(req *api.PlanRequest) string {
	prompt := ""
	for _, msg := range req.Messages {
		if model.Role(msg.Role) == model.RoleUser {
			prompt = msg.Content
		}
	}

	title := deriveTitle(prompt)

	var b strings.Builder
	fmt.Fprintf(&b, "## Event: %s\n\n", title)
	b.WriteString("### Overview\n\n")
	fmt.Fprintf(&b, "A plan generated by the mock server for: %s\n\n", strings.TrimSpace(prompt))
	b.WriteString("### Schedule\n\n")
	b.WriteString("| Time | Activity |\n|------|----------|\n")
	b.WriteString("| 18:00 | Doors open and welcome |\n")
	b.WriteString("| 18:30 | Main activity begins |\n")
	b.WriteString("| 20:00 | Break and refreshments |\n")
	b.WriteString("| 21:30 | Wrap-up and awards |\n\n")
	b.WriteString("### Checklist\n\n")
	b.WriteString("- [ ] Book the venue\n")
	b.WriteString("- [ ] Send invitations\n")
	b.WriteString("- [ ] Prepare materials\n")
	return b.String()
}

// deriveTitle builds a short title from the first words of the prompt.
func deriveTitle(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return "Untitled Event"
	}
	if len(words) > 5 {
		words = words[:5]
	}
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// splitChunks cuts s into chunks of roughly size bytes, never splitting
// a rune. The network may still fragment a chunk mid-rune in transit;
// reassembly is the client's job.
func splitChunks(s string, size int) []string {
	if size <= 0 {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder
	for _, r := range s {
		current.WriteRune(r)
		if current.Len() >= size {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func estimateTokens(messages []model.WireMessage) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total
}
