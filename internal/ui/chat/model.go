// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eventplan-tui/internal/controller"
	"github.com/jeranaias/eventplan-tui/internal/export"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/ui/styles"
	"github.com/jeranaias/eventplan-tui/internal/util"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Opts configures the chat view.
type Opts struct {
	// ShowTokens displays an estimated token count in the status bar.
	ShowTokens bool
	// CompactMode drops bubbles in favor of plain role-prefixed lines.
	CompactMode bool
	// Markdown renders planner replies through glamour.
	Markdown bool
	// ExportDir receives exported plans (empty = current directory).
	ExportDir string
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl    *controller.Controller
	updates <-chan struct{}
	opts    Opts

	theme    *styles.Theme
	markdown *markdownRenderer

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	// confirmingClear gates the destructive clear behind a y/n prompt.
	confirmingClear bool

	// status holds a transient one-line notice (validation errors,
	// export results). Cleared on the next keypress.
	status string
}

// New creates the chat view bound to a controller. updates must be the
// channel fed by the controller's OnUpdate callback.
func New(ctrl *controller.Controller, updates <-chan struct{}, opts Opts) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the event you want to plan..."
	ta.Prompt = "> "
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := styles.NewTheme()
	sp.Style = theme.Spinner

	return Model{
		ctrl:     ctrl,
		updates:  updates,
		opts:     opts,
		theme:    theme,
		markdown: newMarkdownRenderer(80),
		textarea: ta,
		spinner:  sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForUpdate())
}

// waitForUpdate blocks on the controller's notification channel and
// re-enters the event loop when state changed. Notifications coalesce;
// the refresh always reads a full snapshot, so dropped signals while
// one is pending lose nothing.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return StateUpdatedMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.markdown.setWidth(msg.Width - 8)

		headerHeight := 1
		footerHeight := m.textarea.Height() + 3 // input border + status bar
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateUpdatedMsg:
		m.refreshViewport()
		cmds = append(cmds, m.waitForUpdate())

	case SubmitFinishedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}
		m.refreshViewport()

	case ExportFinishedMsg:
		if msg.Err != nil {
			m.status = "export failed: " + msg.Err.Error()
		} else {
			m.status = "plan saved to " + msg.Path
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear confirmation intercepts everything until answered.
	if m.confirmingClear {
		switch msg.String() {
		case "y", "Y":
			m.confirmingClear = false
			if err := m.ctrl.Clear(); err != nil {
				m.status = err.Error()
			}
			m.refreshViewport()
		case "n", "N", "esc":
			m.confirmingClear = false
		}
		return m, nil
	}

	m.status = ""

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		prompt := strings.TrimSpace(m.textarea.Value())
		if prompt == "" {
			return m, nil
		}
		m.textarea.Reset()
		return m, m.submitCmd(prompt)

	case "ctrl+r":
		return m, m.resendCmd()

	case "ctrl+l":
		m.confirmingClear = true
		return m, nil

	case "tab":
		m.ctrl.CycleModel()
		return m, nil

	case "ctrl+s":
		return m, m.exportCmd()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd runs the blocking submission in its own goroutine. Chunk
// progress arrives through the update channel, not this command.
func (m Model) submitCmd(prompt string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return SubmitFinishedMsg{Err: ctrl.Submit(context.Background(), prompt)}
	}
}

// resendCmd retries the trailing error entry, if any.
func (m Model) resendCmd() tea.Cmd {
	snap := m.ctrl.Snapshot()
	if len(snap.Messages) == 0 {
		return nil
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != model.RoleError {
		return nil
	}

	ctrl := m.ctrl
	return func() tea.Msg {
		return SubmitFinishedMsg{Err: ctrl.Resend(context.Background(), last.ID)}
	}
}

// exportCmd writes the latest finished plan to a markdown file.
func (m Model) exportCmd() tea.Cmd {
	snap := m.ctrl.Snapshot()

	var plan *model.Message
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		msg := snap.Messages[i]
		if msg.Role == model.RoleModel && !msg.IsStreaming {
			plan = &msg
			break
		}
	}
	if plan == nil {
		return func() tea.Msg {
			return ExportFinishedMsg{Err: errors.New("no finished plan to export")}
		}
	}

	path := filepath.Join(m.opts.ExportDir, ExportFilename(snap.Title))
	doc := &export.Document{
		Title:       snap.Title,
		Model:       snap.Model,
		GeneratedAt: time.Now(),
		Plan:        plan.Content,
	}

	return func() tea.Msg {
		err := export.WriteFile(path, doc)
		return ExportFinishedMsg{Path: path, Err: err}
	}
}

// ExportFilename derives a safe filename from the event title.
func ExportFilename(title string) string {
	if title == "" {
		return "event-plan.md"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	safe = strings.Trim(strings.ToLower(safe), "-")
	if safe == "" {
		return "event-plan.md"
	}
	return safe + ".md"
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.confirmingClear {
		b.WriteString(m.theme.ConfirmBox.Render("Clear the whole conversation? (y/n)"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.textarea.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.statusView())
	return b.String()
}

func (m Model) headerView() string {
	snap := m.ctrl.Snapshot()

	left := m.theme.HeaderTitle.Render("eventplan")
	if snap.Title != "" {
		left += "  " + m.theme.EventTitle.Render(util.TruncateWidth(snap.Title, m.width/2))
	}
	return m.theme.Header.Width(m.width).Render(left)
}

func (m Model) statusView() string {
	snap := m.ctrl.Snapshot()

	parts := []string{m.theme.ModelBadge.Render(snap.Model)}

	if snap.Pending {
		parts = append(parts, m.theme.PendingBadge.Render(m.spinner.View()+"planning..."))
	}
	if m.opts.ShowTokens {
		tokens := 0
		for i := range snap.Messages {
			tokens += snap.Messages[i].EstimateTokens()
		}
		parts = append(parts, fmt.Sprintf("~%d tok", tokens))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	help := m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send  ") +
		m.theme.ShortcutKey.Render("^r") + m.theme.ShortcutDesc.Render(" retry  ") +
		m.theme.ShortcutKey.Render("^l") + m.theme.ShortcutDesc.Render(" clear  ") +
		m.theme.ShortcutKey.Render("tab") + m.theme.ShortcutDesc.Render(" model  ") +
		m.theme.ShortcutKey.Render("^s") + m.theme.ShortcutDesc.Render(" save")

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  ") + "  " + help)
}

// refreshViewport re-renders the conversation into the viewport and
// follows the tail while a reply is streaming.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	snap := m.ctrl.Snapshot()
	wasAtBottom := m.viewport.AtBottom()

	var sections []string
	for i := range snap.Messages {
		sections = append(sections, m.renderMessage(&snap.Messages[i]))
	}
	m.viewport.SetContent(strings.Join(sections, "\n\n"))

	if snap.Pending || wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(msg *model.Message) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())

	if m.opts.CompactMode {
		return label + ": " + msg.Content
	}

	switch msg.Role {
	case model.RoleUser:
		bubble := m.theme.UserBubble.MaxWidth(m.width - 4).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Right, label, bubble)

	case model.RoleError:
		body := msg.Content + "\n" + m.theme.ShortcutDesc.Render("press ctrl+r to retry")
		return lipgloss.JoinVertical(lipgloss.Left, label, m.theme.ErrorEntry.Render(body))

	default:
		content := msg.Content
		// Streaming text is rendered raw; glamour reflows whole
		// documents and would make partial output jump around.
		if m.opts.Markdown && !msg.IsStreaming {
			content = m.markdown.render(content)
		}
		return lipgloss.JoinVertical(lipgloss.Left, label, m.theme.PlannerBubble.MaxWidth(m.width-4).Render(content))
	}
}

// ExportDirDefault resolves the default export directory, preferring
// ~/.eventplan/plans and falling back to the working directory.
func ExportDirDefault() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".eventplan", "plans")
}
