package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/manimstudio/internal/manim"
	"github.com/jask/manimstudio/internal/scene"
)

type fakeTimeline struct {
	blocks      []string
	highlighted string
	deleted     []string
}

func (f *fakeTimeline) AddBlock(id string, typ scene.ObjectType) { f.blocks = append(f.blocks, id) }
func (f *fakeTimeline) HighlightBlock(id string)                 { f.highlighted = id }
func (f *fakeTimeline) DeleteBlock(id string)                    { f.deleted = append(f.deleted, id) }

type fakeProperties struct {
	shownID     string
	shownProps  map[string]any
	placeholder bool
}

func (f *fakeProperties) DisplayProperties(id string, props map[string]any) {
	f.shownID = id
	f.shownProps = props
	f.placeholder = false
}

func (f *fakeProperties) ShowPlaceholder() {
	f.shownID = ""
	f.shownProps = nil
	f.placeholder = true
}

type fakePreview struct {
	image     []byte
	rendering bool
}

func (f *fakePreview) DisplayImage(png []byte) { f.image = png }
func (f *fakePreview) ShowRenderingState()     { f.rendering = true }
func (f *fakePreview) ShowIdleState()          { f.rendering = false }

type fakeStatus struct {
	last string
}

func (f *fakeStatus) SetStatus(status string) { f.last = status }

// fakeRenderer captures requests and lets the test fire completions in
// any order.
type fakeRenderer struct {
	reqs  []manim.Request
	dones []func(manim.Result)
}

func (f *fakeRenderer) RenderAsync(req manim.Request, done func(manim.Result)) {
	f.reqs = append(f.reqs, req)
	f.dones = append(f.dones, done)
}

type logEntry struct {
	id, kind, scene, status, artifact, message string
}

type fakeLog struct {
	entries []logEntry
}

func (f *fakeLog) Start(_ context.Context, kind, sceneName string) (string, error) {
	id := string(rune('a' + len(f.entries)))
	f.entries = append(f.entries, logEntry{id: id, kind: kind, scene: sceneName, status: "running"})
	return id, nil
}

func (f *fakeLog) Finish(_ context.Context, id, status, artifact, message string) error {
	for i := range f.entries {
		if f.entries[i].id == id {
			f.entries[i].status = status
			f.entries[i].artifact = artifact
			f.entries[i].message = message
		}
	}
	return nil
}

type harness struct {
	coord    *Coordinator
	timeline *fakeTimeline
	props    *fakeProperties
	preview  *fakePreview
	status   *fakeStatus
	renderer *fakeRenderer
	logbook  *fakeLog
}

func newHarness() *harness {
	h := &harness{
		timeline: &fakeTimeline{},
		props:    &fakeProperties{},
		preview:  &fakePreview{},
		status:   &fakeStatus{},
		renderer: &fakeRenderer{},
		logbook:  &fakeLog{},
	}
	h.coord = &Coordinator{
		Scene:    &scene.Builder{},
		Renderer: h.renderer,
		History:  h.logbook,
		Panels: Panels{
			Timeline:   h.timeline,
			Properties: h.props,
			Preview:    h.preview,
			Status:     h.status,
		},
	}
	return h
}

func TestAddObjectUpdatesTimeline(t *testing.T) {
	h := newHarness()

	h.coord.AddObject("Circle")

	require.Len(t, h.timeline.blocks, 1)
	assert.Contains(t, h.status.last, "Circle added")
	assert.Contains(t, h.status.last, h.timeline.blocks[0])
	assert.Empty(t, h.coord.SelectedID(), "adding must not change selection")
}

func TestAddObjectUnknownType(t *testing.T) {
	h := newHarness()

	h.coord.AddObject("Hexagon")

	assert.Empty(t, h.timeline.blocks)
	assert.Contains(t, h.status.last, "Error:")
}

func TestSelectObjectShowsProperties(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Square")
	id := h.timeline.blocks[0]

	h.coord.SelectObject(id)

	assert.Equal(t, id, h.coord.SelectedID())
	assert.Equal(t, id, h.timeline.highlighted)
	assert.Equal(t, id, h.props.shownID)
	assert.Equal(t, 2.0, h.props.shownProps["side_length"])
}

func TestSelectObjectEmptyClearsSelection(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Square")
	h.coord.SelectObject(h.timeline.blocks[0])

	h.coord.SelectObject("")

	assert.Empty(t, h.coord.SelectedID())
	assert.True(t, h.props.placeholder)
	assert.Empty(t, h.timeline.highlighted)
}

func TestSelectObjectStaleID(t *testing.T) {
	h := newHarness()

	h.coord.SelectObject("circle_deadbe")

	assert.Empty(t, h.coord.SelectedID())
	assert.True(t, h.props.placeholder)
	assert.Contains(t, h.status.last, "not found")
}

func TestChangePropertyStatus(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")
	id := h.timeline.blocks[0]

	h.coord.ChangeProperty(id, "fill_color", "#FF0000", -1)

	assert.Contains(t, h.status.last, "Fill color updated")

	props, ok := h.coord.Scene.Properties(id)
	require.True(t, ok)
	assert.Equal(t, "#FF0000", props["fill_color"])
}

func TestChangeAnimation(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")
	id := h.timeline.blocks[0]

	h.coord.ChangeAnimation(id, scene.AnimFadeIn)

	assert.Contains(t, h.status.last, "FadeIn")

	props, _ := h.coord.Scene.Properties(id)
	assert.Equal(t, scene.AnimFadeIn, props["animation"])
}

func TestDeleteSelected(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Text")
	id := h.timeline.blocks[0]
	h.coord.SelectObject(id)

	h.coord.DeleteSelected()

	assert.Equal(t, []string{id}, h.timeline.deleted)
	assert.Empty(t, h.coord.SelectedID())
	assert.Empty(t, h.timeline.highlighted)
	assert.True(t, h.props.placeholder)
	assert.Equal(t, 0, h.coord.Scene.Len())
}

func TestDeleteSelectedNothingSelected(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Text")

	h.coord.DeleteSelected()

	assert.Empty(t, h.timeline.deleted)
	assert.Equal(t, "Nothing selected", h.status.last)
	assert.Equal(t, 1, h.coord.Scene.Len())
}

func TestRefreshPreviewSuccess(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")

	h.coord.RefreshPreview()

	require.Len(t, h.renderer.reqs, 1)
	req := h.renderer.reqs[0]
	assert.Equal(t, "PreviewScene", req.SceneName)
	assert.Equal(t, []string{"-s", "-ql"}, req.QualityFlags)
	assert.Equal(t, manim.OutputImage, req.Format)
	assert.NotContains(t, req.Script, "self.play", "preview scripts are static")
	assert.True(t, h.preview.rendering)

	h.renderer.dones[0](manim.Result{OK: true, Image: []byte("png"), ArtifactPath: "/tmp/p.png"})

	assert.False(t, h.preview.rendering)
	assert.Equal(t, []byte("png"), h.preview.image)
	assert.Equal(t, "Preview updated.", h.status.last)

	require.Len(t, h.logbook.entries, 1)
	assert.Equal(t, "preview", h.logbook.entries[0].kind)
	assert.Equal(t, "succeeded", h.logbook.entries[0].status)
}

func TestRefreshPreviewFailure(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")
	h.coord.RefreshPreview()
	require.Len(t, h.renderer.dones, 1)

	h.renderer.dones[0](manim.Result{OK: false, Message: "Manim failed (code 1): boom"})

	assert.False(t, h.preview.rendering, "preview must return to idle on failure")
	assert.Nil(t, h.preview.image)
	assert.Contains(t, h.status.last, "failed")
	assert.Contains(t, h.status.last, "boom")
	assert.Equal(t, "failed", h.logbook.entries[0].status)
}

func TestOverlappingPreviewsLastCompletionWins(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")

	h.coord.RefreshPreview()
	h.coord.RefreshPreview()
	require.Len(t, h.renderer.dones, 2)

	// Completions arrive out of order: the second render finishes first.
	h.renderer.dones[1](manim.Result{OK: true, Image: []byte("second")})
	h.renderer.dones[0](manim.Result{OK: true, Image: []byte("first")})

	assert.Equal(t, []byte("first"), h.preview.image, "last completion to arrive wins")
	assert.False(t, h.preview.rendering)
}

func TestRenderVideo(t *testing.T) {
	h := newHarness()
	h.coord.AddObject("Circle")
	h.coord.ChangeAnimation(h.timeline.blocks[0], scene.AnimFadeIn)

	h.coord.RenderVideo()

	require.Len(t, h.renderer.reqs, 1)
	req := h.renderer.reqs[0]
	assert.Equal(t, "StudioScene", req.SceneName)
	assert.Equal(t, []string{"-ql"}, req.QualityFlags)
	assert.Equal(t, manim.OutputVideo, req.Format)
	assert.Contains(t, req.Script, "self.play(FadeIn(")

	h.renderer.dones[0](manim.Result{OK: true, ArtifactPath: "/tmp/out.mp4"})

	assert.Contains(t, h.status.last, "/tmp/out.mp4")
	assert.Equal(t, "video", h.logbook.entries[0].kind)
}

func TestRenderLogIsOptional(t *testing.T) {
	h := newHarness()
	h.coord.History = nil
	h.coord.AddObject("Circle")

	h.coord.RefreshPreview()
	require.Len(t, h.renderer.dones, 1)
	h.renderer.dones[0](manim.Result{OK: true, Image: []byte("png")})

	assert.Equal(t, "Preview updated.", h.status.last)
}
