// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/eventplan-tui/internal/api"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyPrompt is returned when the prompt is empty after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrSubmitInFlight is returned when an operation requires an idle
	// controller but a submission is still pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrNotResendable is returned by Resend when the target is not an
	// error message immediately preceded by a user message.
	ErrNotResendable = errors.New("message is not resendable")

	// ErrUnknownModel is returned by SetModel for an id not in the
	// model registry.
	ErrUnknownModel = errors.New("unknown model")
)

// =============================================================================
// SUBMISSION STATE MACHINE
// =============================================================================

type submitState int

const (
	stateIdle submitState = iota
	stateSubmitting
)

// =============================================================================
// CONTROLLER
// =============================================================================

// PlanStreamer is the slice of the planner client the controller needs.
type PlanStreamer interface {
	PlanEventStream(ctx context.Context, req api.PlanRequest, h api.StreamHandler) error
}

// Options configures a Controller.
type Options struct {
	// Model is the initial planner model (empty = registry default).
	Model string
	// Temperature is forwarded with each request when non-zero.
	Temperature float64
	// MaxTokens is forwarded with each request when non-zero.
	MaxTokens int
	// Logger receives load/persist diagnostics (nil = log.Default()).
	Logger *log.Logger
	// OnUpdate is invoked after every observable state change so the UI
	// can redraw. Called without the controller lock held. May be nil.
	OnUpdate func()
}

// Controller owns the conversation and drives submission, streaming,
// title extraction, persistence, and failure recovery.
type Controller struct {
	mu    sync.Mutex
	state submitState
	conv  *model.Conversation

	client PlanStreamer
	store  storage.KV
	logger *log.Logger

	temperature float64
	maxTokens   int
	onUpdate    func()
}

// New creates a controller backed by the given planner client and store.
func New(client PlanStreamer, store storage.KV, opts Options) *Controller {
	conv := model.NewConversation()
	if opts.Model != "" {
		conv.Model = opts.Model
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		conv:        conv,
		client:      client,
		store:       store,
		logger:      logger,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		onUpdate:    opts.OnUpdate,
	}
}

// =============================================================================
// LOAD & PERSIST
// =============================================================================

// Load restores the conversation and title from the store. Corrupt or
// unreadable state is discarded and logged; Load never fails the caller
// because of bad persisted data. The two keys restore as a unit: a
// conversation that cannot be read takes the stored title down with it,
// so a title never floats over an empty conversation.
func (c *Controller) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.store.Get(storage.KeyConversation)
	if err != nil {
		c.logger.Printf("conversation restore failed: %v", err)
		return
	}
	if !ok {
		return
	}
	msgs, err := model.DecodeMessages(raw)
	if err != nil {
		c.logger.Printf("discarding corrupt stored conversation: %v", err)
		return
	}
	c.conv.Messages = msgs

	title, ok, err := c.store.Get(storage.KeyTitle)
	if err != nil {
		c.logger.Printf("title restore failed: %v", err)
	} else if ok {
		c.conv.Title = title
	}
}

// persistLocked writes the full conversation and title through to the
// store. Persistence failures are logged, never propagated: losing a
// write must not break an in-flight stream.
func (c *Controller) persistLocked() {
	encoded, err := model.EncodeMessages(c.conv.Messages)
	if err != nil {
		c.logger.Printf("conversation encode failed: %v", err)
		return
	}
	if err := c.store.Set(storage.KeyConversation, encoded); err != nil {
		c.logger.Printf("conversation persist failed: %v", err)
	}
	if err := c.store.Set(storage.KeyTitle, c.conv.Title); err != nil {
		c.logger.Printf("title persist failed: %v", err)
	}
}

func (c *Controller) notifyUpdate() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// =============================================================================
// SUBMISSION PIPELINE
// =============================================================================

// Submit appends the trimmed prompt as a user message and streams the
// planner's reply into the conversation. It blocks until the stream
// completes or fails; UI callers run it from their own goroutine.
//
// Validation failures (empty prompt, overlapping submission) return an
// error and leave the conversation untouched. Transport and stream
// failures do NOT return an error: they are converted into a visible
// error message in the conversation, recoverable via Resend.
func (c *Controller) Submit(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.state == stateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state = stateSubmitting
	c.conv.Pending = true
	c.conv.LastError = ""

	c.conv.Append(model.NewUserMessage(prompt))
	c.persistLocked()

	req := c.buildRequestLocked()
	c.mu.Unlock()
	c.notifyUpdate()

	c.runStream(ctx, req)
	return nil
}

// buildRequestLocked assembles the outbound payload from the current
// conversation state.
func (c *Controller) buildRequestLocked() api.PlanRequest {
	req := api.PlanRequest{
		Messages: c.conv.ToWireMessages(),
		Model:    c.conv.Model,
		Stream:   true,
	}
	if c.temperature != 0 {
		t := c.temperature
		req.Temperature = &t
	}
	if c.maxTokens != 0 {
		n := c.maxTokens
		req.MaxTokens = &n
	}
	return req
}

// runStream drives one streaming request to completion. The placeholder
// model message is appended only once the response is validated (the
// client fires OnStart after checking the status), so a rejected request
// never leaves a partial assistant entry behind.
func (c *Controller) runStream(ctx context.Context, req api.PlanRequest) {
	var (
		placeholder *model.Message
		buffer      strings.Builder
	)

	handler := api.StreamHandler{
		OnStart: func() {
			c.mu.Lock()
			placeholder = model.NewModelMessage()
			c.conv.Append(placeholder)
			c.persistLocked()
			c.mu.Unlock()
			c.notifyUpdate()
		},
		OnChunk: func(text string) {
			buffer.WriteString(text)
			full := buffer.String()

			c.mu.Lock()
			placeholder.SetStreamContent(full)
			if title, changed := ExtractTitle(full, c.conv.Title); changed {
				c.conv.Title = title
			}
			c.persistLocked()
			c.mu.Unlock()
			c.notifyUpdate()
		},
	}

	err := c.client.PlanEventStream(ctx, req, handler)

	c.mu.Lock()
	if err != nil {
		c.recoverLocked(placeholder, err)
	} else {
		if placeholder != nil {
			placeholder.Finalize()
		}
		c.conv.Pending = false
		c.conv.LastError = ""
		c.state = stateIdle
		c.persistLocked()
	}
	c.mu.Unlock()
	c.notifyUpdate()
}

// =============================================================================
// RECOVERY PATH
// =============================================================================

// recoverLocked rolls back a failed submission: the partial placeholder
// (if one was appended) is removed, an error message is appended in its
// place, and the controller returns to idle. The conversation never
// silently retains a truncated assistant answer.
func (c *Controller) recoverLocked(placeholder *model.Message, err error) {
	description := describeFailure(err)

	if placeholder != nil {
		c.conv.Remove(placeholder.ID)
	}
	c.conv.Append(model.NewErrorMessage(description))
	c.conv.Pending = false
	c.conv.LastError = description
	c.state = stateIdle
	c.persistLocked()

	c.logger.Printf("submission failed: %v", err)
}

// describeFailure derives the user-facing description for a failure.
// The client already prefers the server's structured error detail, then
// raw body text, then a status-based message; anything else gets the
// generic rendering.
func describeFailure(err error) string {
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Message
	}
	return err.Error()
}

// Resend retries the submission that produced the error message with
// the given id. The error message and the user message immediately
// before it are dropped, then that prompt is submitted again against
// the truncated history. Returns ErrNotResendable when the target is
// not an error entry directly preceded by a user message.
func (c *Controller) Resend(ctx context.Context, errorID string) error {
	c.mu.Lock()
	if c.state == stateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	idx := c.conv.IndexOf(errorID)
	if idx <= 0 {
		c.mu.Unlock()
		return ErrNotResendable
	}
	errMsg := c.conv.Messages[idx]
	prev := c.conv.Messages[idx-1]
	if errMsg.Role != model.RoleError || prev.Role != model.RoleUser {
		c.mu.Unlock()
		return ErrNotResendable
	}

	prompt := prev.Content
	c.conv.TruncateAt(idx - 1)
	c.persistLocked()
	c.mu.Unlock()
	c.notifyUpdate()

	return c.Submit(ctx, prompt)
}

// =============================================================================
// CLEAR & OBSERVATION
// =============================================================================

// Clear resets the conversation to empty and removes both persisted
// entries. Rejected while a submission is in flight.
func (c *Controller) Clear() error {
	c.mu.Lock()
	if c.state == stateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	c.conv.Reset()
	err1 := c.store.Delete(storage.KeyConversation)
	err2 := c.store.Delete(storage.KeyTitle)
	c.mu.Unlock()
	c.notifyUpdate()

	if err1 != nil {
		return err1
	}
	return err2
}

// Snapshot is a point-in-time copy of the observable conversation state
// for rendering. Messages are copied by value so the renderer never
// races a streaming mutation.
type Snapshot struct {
	Messages  []model.Message
	Title     string
	Model     string
	Pending   bool
	LastError string
}

// Snapshot returns a copy of the current conversation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]model.Message, len(c.conv.Messages))
	for i, m := range c.conv.Messages {
		msgs[i] = *m
	}

	return Snapshot{
		Messages:  msgs,
		Title:     c.conv.Title,
		Model:     c.conv.Model,
		Pending:   c.conv.Pending,
		LastError: c.conv.LastError,
	}
}

// Pending reports whether a submission is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateSubmitting
}

// Model returns the currently selected planner model.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Model
}

// SetModel selects the planner model for subsequent submissions.
func (c *Controller) SetModel(id string) error {
	if !model.ValidModel(id) {
		return ErrUnknownModel
	}
	c.mu.Lock()
	c.conv.Model = id
	c.mu.Unlock()
	c.notifyUpdate()
	return nil
}

// CycleModel advances to the next model in the registry and returns it.
func (c *Controller) CycleModel() string {
	c.mu.Lock()
	c.conv.Model = model.NextModel(c.conv.Model)
	next := c.conv.Model
	c.mu.Unlock()
	c.notifyUpdate()
	return next
}
