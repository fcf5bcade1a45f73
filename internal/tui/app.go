package tui

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/manimstudio/internal/editor"
	"github.com/jask/manimstudio/internal/history"
	"github.com/jask/manimstudio/internal/scene"
)

// TaskMsg carries a closure that must run on the UI event loop. The render
// executor's Schedule hook wraps completion callbacks in one of these and
// posts it with Program.Send, so panel updates always happen inside Update.
type TaskMsg struct {
	Run func()
}

// App is the terminal shell. It implements the editor panel interfaces so
// the Coordinator can push updates straight into view state.
type App struct {
	ctx     context.Context
	coord   *editor.Coordinator
	renders *history.Repo

	// PreviewFile, when set, receives a copy of the latest preview PNG so
	// it can be opened in an external viewer.
	PreviewFile string

	state appState
	modal modalState

	// timeline pane
	blocks      []timelineBlock
	highlighted string
	cursor      int

	// properties pane
	propID   string
	props    map[string]any
	propKeys []string
	propCur  int

	// preview pane
	rendering    bool
	previewNote  string
	previewBytes int

	// modals
	input       textinput.Model
	editingKey  string
	animCursor  int
	recentlyRun []history.Record

	status string
	width  int
}

type timelineBlock struct {
	id  string
	typ scene.ObjectType
}

type appState string

const (
	viewEditor  appState = "editor"
	viewHistory appState = "history"
)

type modalState string

const (
	modalNone          modalState = ""
	modalPropertyEdit  modalState = "propertyEdit"
	modalAnimationPick modalState = "animationPick"
	modalConfirmDelete modalState = "confirmDelete"
)

var animationOptions = []string{
	scene.AnimNone,
	scene.AnimFadeIn,
	scene.AnimGrowFromCenter,
	scene.AnimWrite,
}

// Display order for the properties pane. Keys missing from a snapshot are
// skipped; unknown keys sort last.
var propertyOrder = []string{
	"pos_x", "pos_y", "pos_z",
	"radius", "side_length",
	"text_content", "font_size",
	"fill_color", "opacity",
	"stroke_color", "stroke_width", "stroke_opacity",
	"animation",
}

func New(ctx context.Context, coord *editor.Coordinator, renders *history.Repo) *App {
	inp := textinput.New()
	inp.CharLimit = 120
	a := &App{
		ctx:     ctx,
		coord:   coord,
		renders: renders,
		state:   viewEditor,
		input:   inp,
		status:  "Ready",
	}
	coord.Panels = editor.Panels{Timeline: a, Properties: a, Preview: a, Status: a}
	return a
}

func (a *App) Init() tea.Cmd { return nil }

// ---- editor.Timeline ----

func (a *App) AddBlock(id string, typ scene.ObjectType) {
	a.blocks = append(a.blocks, timelineBlock{id: id, typ: typ})
}

func (a *App) HighlightBlock(id string) {
	a.highlighted = id
	for i, b := range a.blocks {
		if b.id == id {
			a.cursor = i
			return
		}
	}
}

func (a *App) DeleteBlock(id string) {
	for i, b := range a.blocks {
		if b.id == id {
			a.blocks = append(a.blocks[:i], a.blocks[i+1:]...)
			break
		}
	}
	if a.cursor >= len(a.blocks) && a.cursor > 0 {
		a.cursor = len(a.blocks) - 1
	}
}

// ---- editor.PropertiesPane ----

func (a *App) DisplayProperties(id string, props map[string]any) {
	a.propID = id
	a.props = props
	a.propKeys = orderedKeys(props)
	if a.propCur >= len(a.propKeys) {
		a.propCur = 0
	}
}

func (a *App) ShowPlaceholder() {
	a.propID = ""
	a.props = nil
	a.propKeys = nil
	a.propCur = 0
}

// ---- editor.Preview ----

func (a *App) DisplayImage(data []byte) {
	a.previewBytes = len(data)
	if a.PreviewFile != "" {
		if err := os.WriteFile(a.PreviewFile, data, 0o644); err != nil {
			log.Printf("preview: write %s: %v", a.PreviewFile, err)
		}
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		a.previewNote = fmt.Sprintf("preview ready (%d bytes)", len(data))
		return
	}
	a.previewNote = fmt.Sprintf("preview ready: %dx%d px (%d bytes)", cfg.Width, cfg.Height, len(data))
	if a.PreviewFile != "" {
		a.previewNote += "\nsaved to " + a.PreviewFile
	}
}

func (a *App) ShowRenderingState() { a.rendering = true }
func (a *App) ShowIdleState()      { a.rendering = false }

// ---- editor.StatusBar ----

func (a *App) SetStatus(status string) { a.status = status }

// ---- tea.Model ----

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case TaskMsg:
		if m.Run != nil {
			m.Run()
		}
		return a, nil
	case tea.WindowSizeMsg:
		a.width = m.Width
		return a, nil
	case rendersMsg:
		a.recentlyRun = []history.Record(m)
		return a, nil
	case errMsg:
		a.status = "error: " + m.Error()
		return a, nil
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewHistory {
			return a.handleHistoryKey(m)
		}
		return a.handleEditorKey(m)
	}
	return a, nil
}

func (a *App) handleEditorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "c":
		a.coord.AddObject("Circle")
	case "s":
		a.coord.AddObject("Square")
	case "t":
		a.coord.AddObject("Text")
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
			a.coord.SelectObject(a.blocks[a.cursor].id)
		}
	case "down", "j":
		if a.cursor < len(a.blocks)-1 {
			a.cursor++
			a.coord.SelectObject(a.blocks[a.cursor].id)
		}
	case "enter":
		if len(a.blocks) > 0 {
			a.coord.SelectObject(a.blocks[a.cursor].id)
		}
	case "esc":
		a.coord.SelectObject("")
	case "left", "[":
		if a.propCur > 0 {
			a.propCur--
		}
	case "right", "]":
		if a.propCur < len(a.propKeys)-1 {
			a.propCur++
		}
	case "e":
		if a.propID != "" && len(a.propKeys) > 0 {
			key := a.propKeys[a.propCur]
			if key == "animation" {
				a.openAnimationPicker()
				return a, nil
			}
			a.editingKey = key
			a.input.SetValue(formatValue(a.props[key]))
			a.input.CursorEnd()
			a.input.Focus()
			a.modal = modalPropertyEdit
		}
	case "a":
		if a.propID != "" {
			a.openAnimationPicker()
		}
	case "d", "delete", "backspace":
		if a.coord.SelectedID() != "" {
			a.modal = modalConfirmDelete
		} else {
			a.status = "Nothing selected"
		}
	case "p":
		a.coord.RefreshPreview()
	case "v":
		a.coord.RenderVideo()
	case "h":
		a.state = viewHistory
		return a, a.loadRenders()
	}
	return a, nil
}

func (a *App) openAnimationPicker() {
	current, _ := a.props["animation"].(string)
	a.animCursor = 0
	for i, opt := range animationOptions {
		if opt == current {
			a.animCursor = i
		}
	}
	a.modal = modalAnimationPick
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalPropertyEdit:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.input.Blur()
		case tea.KeyEnter:
			value := strings.TrimSpace(a.input.Value())
			key := a.editingKey
			a.modal = modalNone
			a.input.Blur()
			a.coord.ChangeProperty(a.propID, key, value, -1)
		default:
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(m)
			return a, cmd
		}
	case modalAnimationPick:
		switch m.String() {
		case "esc":
			a.modal = modalNone
		case "up", "k":
			if a.animCursor > 0 {
				a.animCursor--
			}
		case "down", "j":
			if a.animCursor < len(animationOptions)-1 {
				a.animCursor++
			}
		case "enter":
			a.modal = modalNone
			a.coord.ChangeAnimation(a.propID, animationOptions[a.animCursor])
		}
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.coord.DeleteSelected()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	}
	return a, nil
}

func (a *App) handleHistoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "h":
		a.state = viewEditor
	case "r":
		return a, a.loadRenders()
	}
	return a, nil
}

// commands

type rendersMsg []history.Record

type errMsg struct{ error }

func (a *App) loadRenders() tea.Cmd {
	return func() tea.Msg {
		if a.renders == nil {
			return rendersMsg(nil)
		}
		recs, err := a.renders.Recent(a.ctx, 20)
		if err != nil {
			return errMsg{err}
		}
		return rendersMsg(recs)
	}
}

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func (a *App) View() string {
	if a.state == viewHistory {
		return a.renderHistory()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(a.renderTimeline()),
		paneStyle.Render(a.renderProperties()),
		paneStyle.Render(a.renderPreview()),
	)
	out := titleStyle.Render("Manim Studio") + "\n" + body
	if a.modal != modalNone {
		out += "\n" + a.renderModal()
	}
	out += "\n" + a.renderHelp() + "\n" + a.status
	return out
}

func (a *App) renderTimeline() string {
	out := "Timeline\n"
	if len(a.blocks) == 0 {
		return out + dimStyle.Render("(empty scene)")
	}
	for i, b := range a.blocks {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %s %s", marker, b.typ, b.id)
		if b.id == a.highlighted {
			line = selectStyle.Render(line)
		}
		out += line + "\n"
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderProperties() string {
	out := "Properties\n"
	if a.propID == "" {
		return out + dimStyle.Render("Select an object to edit its properties.")
	}
	out += dimStyle.Render(a.propID) + "\n"
	for i, key := range a.propKeys {
		marker := " "
		if i == a.propCur {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-14s %s\n", marker, key, formatValue(a.props[key]))
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderPreview() string {
	out := "Preview\n"
	if a.rendering {
		return out + "Rendering..."
	}
	if a.previewNote == "" {
		return out + dimStyle.Render("No preview yet. Press [p] to render one.")
	}
	return out + a.previewNote
}

func (a *App) renderHistory() string {
	out := titleStyle.Render("Render History") + "\n"
	if len(a.recentlyRun) == 0 {
		out += dimStyle.Render("No renders recorded yet.") + "\n"
	}
	for _, r := range a.recentlyRun {
		line := fmt.Sprintf("%s  %-7s %-12s %-9s", r.StartedAt.Format("15:04:05"), r.Kind, r.Scene, r.Status)
		if r.Artifact != "" {
			line += "  " + filepath.Base(r.Artifact)
		}
		if r.Status == history.StatusFailed && r.Message != "" {
			line += "\n    " + dimStyle.Render(r.Message)
		}
		out += line + "\n"
	}
	out += "[r] Refresh  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalPropertyEdit:
		return titleStyle.Render("Edit "+a.editingKey) + "\n" + a.input.View() + "\n[enter] Apply  [esc] Cancel"
	case modalAnimationPick:
		out := titleStyle.Render("Intro animation") + "\n"
		for i, opt := range animationOptions {
			marker := " "
			if i == a.animCursor {
				marker = "▶"
			}
			label := opt
			if label == "" {
				label = "(none)"
			}
			out += fmt.Sprintf("%s %s\n", marker, label)
		}
		return out + "[enter] Select  [esc] Cancel"
	case modalConfirmDelete:
		return titleStyle.Render("Delete "+a.coord.SelectedID()+"?") + "\n[y] Yes  [n] No"
	default:
		return ""
	}
}

func (a *App) renderHelp() string {
	return dimStyle.Render("[c] Circle  [s] Square  [t] Text  [↑↓] Select  [←→] Property  [e] Edit  [a] Animation  [d] Delete  [p] Preview  [v] Video  [h] History  [q] Quit")
}

func orderedKeys(props map[string]any) []string {
	var keys []string
	for _, key := range propertyOrder {
		if _, ok := props[key]; ok {
			keys = append(keys, key)
		}
	}
	for key := range props {
		known := false
		for _, k := range propertyOrder {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			keys = append(keys, key)
		}
	}
	return keys
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
