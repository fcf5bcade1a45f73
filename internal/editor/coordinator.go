package editor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jask/manimstudio/internal/manim"
	"github.com/jask/manimstudio/internal/scene"
)

// Renderer abstracts the render executor. Completion callbacks arrive on
// whatever context the executor was configured to deliver on; the
// Coordinator assumes that is the same context its own methods run on.
type Renderer interface {
	RenderAsync(req manim.Request, done func(manim.Result))
}

// RenderLog records render attempts. Implementations are best-effort from
// the Coordinator's point of view: errors are logged and never block a
// render.
type RenderLog interface {
	Start(ctx context.Context, kind, sceneName string) (string, error)
	Finish(ctx context.Context, id, status, artifact, message string) error
}

// Coordinator mediates between the scene model, the render executor and
// the UI panels. Panels call its methods in response to user intent; the
// Coordinator mutates the scene, triggers renders and pushes updates back
// out. It holds the only reference to the current selection.
//
// Not safe for concurrent use: all methods and render callbacks must run
// on the same goroutine.
type Coordinator struct {
	Scene    *scene.Builder
	Renderer Renderer
	Panels   Panels

	// History is optional; nil disables render logging.
	History RenderLog
	Ctx     context.Context

	// Flag overrides; defaults match a low-quality workflow.
	PreviewFlags []string
	VideoFlags   []string

	selectedID string
}

const (
	logKindPreview = "preview"
	logKindVideo   = "video"

	logStatusSucceeded = "succeeded"
	logStatusFailed    = "failed"
)

// AddObject creates a new object of the named type and appends a timeline
// block for it. The new object is not selected.
func (c *Coordinator) AddObject(typ string) {
	id, err := c.Scene.AddObject(typ)
	if err != nil {
		c.Panels.Status.SetStatus("Error: " + err.Error())
		return
	}
	c.Panels.Timeline.AddBlock(id, scene.ObjectType(typ))
	c.Panels.Status.SetStatus(fmt.Sprintf("%s added (ID: %s)", typ, id))
}

// SelectObject makes id the current selection and shows its properties.
// An empty id clears the selection.
func (c *Coordinator) SelectObject(id string) {
	c.selectedID = id
	c.Panels.Timeline.HighlightBlock(id)
	if id == "" {
		c.Panels.Properties.ShowPlaceholder()
		c.Panels.Status.SetStatus("Ready")
		return
	}
	props, ok := c.Scene.Properties(id)
	if !ok {
		c.selectedID = ""
		c.Panels.Properties.ShowPlaceholder()
		c.Panels.Status.SetStatus(fmt.Sprintf("Error: object %s not found", id))
		return
	}
	c.Panels.Properties.DisplayProperties(id, props)
	c.Panels.Status.SetStatus("Selected: " + id)
}

// SelectedID returns the current selection, or "" when nothing is selected.
func (c *Coordinator) SelectedID() string { return c.selectedID }

// ChangeProperty applies a single property edit. axisIndex selects a
// component when key is "position"; pass -1 otherwise.
func (c *Coordinator) ChangeProperty(id, key string, value any, axisIndex int) {
	c.Scene.UpdateProperty(id, key, value, axisIndex)
	c.refreshSelection(id)
	label := strings.ReplaceAll(key, "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	c.Panels.Status.SetStatus(fmt.Sprintf("%s updated for %s", label, id))
}

// ChangeAnimation sets the intro animation for id.
func (c *Coordinator) ChangeAnimation(id, animation string) {
	c.Scene.SetAnimation(id, animation)
	c.refreshSelection(id)
	c.Panels.Status.SetStatus(fmt.Sprintf("Animation set to '%s' for %s", animation, id))
}

// refreshSelection re-pushes the selected object's snapshot after an edit
// so the properties pane never shows stale values.
func (c *Coordinator) refreshSelection(id string) {
	if id == "" || id != c.selectedID {
		return
	}
	if props, ok := c.Scene.Properties(id); ok {
		c.Panels.Properties.DisplayProperties(id, props)
	}
}

// DeleteSelected removes the currently selected object and clears the
// selection. A no-op with a status message when nothing is selected.
func (c *Coordinator) DeleteSelected() {
	id := c.selectedID
	if id == "" {
		c.Panels.Status.SetStatus("Nothing selected")
		return
	}
	c.selectedID = ""
	if !c.Scene.Remove(id) {
		c.Panels.Properties.ShowPlaceholder()
		c.Panels.Timeline.HighlightBlock("")
		c.Panels.Status.SetStatus(fmt.Sprintf("Error: object %s not found", id))
		return
	}
	c.Panels.Timeline.DeleteBlock(id)
	c.Panels.Timeline.HighlightBlock("")
	c.Panels.Properties.ShowPlaceholder()
	c.Panels.Status.SetStatus("Deleted " + id)
}

// RefreshPreview regenerates the preview script and kicks off an image
// render. The preview pane shows a busy state until the completion
// callback arrives; overlapping refreshes are allowed and the last
// completion wins.
func (c *Coordinator) RefreshPreview() {
	script, sceneName := c.Scene.GenerateScript(scene.ModePreview)
	c.Panels.Preview.ShowRenderingState()
	c.Panels.Status.SetStatus("Rendering preview...")
	logID := c.logStart(logKindPreview, sceneName)
	c.Renderer.RenderAsync(manim.Request{
		Script:       script,
		SceneName:    sceneName,
		QualityFlags: c.previewFlags(),
		Format:       manim.OutputImage,
	}, func(res manim.Result) {
		c.previewDone(logID, res)
	})
}

// RenderVideo regenerates the render script, with intro animations, and
// kicks off a full video render.
func (c *Coordinator) RenderVideo() {
	script, sceneName := c.Scene.GenerateScript(scene.ModeRender)
	c.Panels.Preview.ShowRenderingState()
	c.Panels.Status.SetStatus("Rendering video...")
	logID := c.logStart(logKindVideo, sceneName)
	c.Renderer.RenderAsync(manim.Request{
		Script:       script,
		SceneName:    sceneName,
		QualityFlags: c.videoFlags(),
		Format:       manim.OutputVideo,
	}, func(res manim.Result) {
		c.videoDone(logID, res)
	})
}

func (c *Coordinator) previewDone(logID string, res manim.Result) {
	c.Panels.Preview.ShowIdleState()
	if !res.OK {
		c.logFinish(logID, logStatusFailed, "", res.Message)
		c.Panels.Status.SetStatus("Preview failed: " + res.Message)
		return
	}
	c.Panels.Preview.DisplayImage(res.Image)
	c.logFinish(logID, logStatusSucceeded, res.ArtifactPath, res.Message)
	c.Panels.Status.SetStatus("Preview updated.")
}

func (c *Coordinator) videoDone(logID string, res manim.Result) {
	c.Panels.Preview.ShowIdleState()
	if !res.OK {
		c.logFinish(logID, logStatusFailed, "", res.Message)
		c.Panels.Status.SetStatus("Video render failed: " + res.Message)
		return
	}
	c.logFinish(logID, logStatusSucceeded, res.ArtifactPath, res.Message)
	c.Panels.Status.SetStatus("Video saved: " + res.ArtifactPath)
}

func (c *Coordinator) previewFlags() []string {
	if c.PreviewFlags != nil {
		return c.PreviewFlags
	}
	return []string{"-s", "-ql"}
}

func (c *Coordinator) videoFlags() []string {
	if c.VideoFlags != nil {
		return c.VideoFlags
	}
	return []string{"-ql"}
}

func (c *Coordinator) ctx() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

func (c *Coordinator) logStart(kind, sceneName string) string {
	if c.History == nil {
		return ""
	}
	id, err := c.History.Start(c.ctx(), kind, sceneName)
	if err != nil {
		log.Printf("history: start %s: %v", kind, err)
		return ""
	}
	return id
}

func (c *Coordinator) logFinish(id, status, artifact, message string) {
	if c.History == nil || id == "" {
		return
	}
	if err := c.History.Finish(c.ctx(), id, status, artifact, message); err != nil {
		log.Printf("history: finish %s: %v", id, err)
	}
}
