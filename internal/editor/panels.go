package editor

import "github.com/jask/manimstudio/internal/scene"

// Panel collaborator interfaces. The Coordinator is the only caller; the
// host shell implements them and renders however it likes. All arguments
// are primitives or owned snapshots.

// Timeline shows one block per scene object.
type Timeline interface {
	AddBlock(id string, typ scene.ObjectType)
	// HighlightBlock marks the block as selected; "" clears the highlight.
	HighlightBlock(id string)
	DeleteBlock(id string)
}

// PropertiesPane edits the selected object's properties.
type PropertiesPane interface {
	DisplayProperties(id string, props map[string]any)
	ShowPlaceholder()
}

// Preview displays the rendered still image and the busy/idle state.
type Preview interface {
	DisplayImage(png []byte)
	ShowRenderingState()
	ShowIdleState()
}

// StatusBar shows one-line feedback.
type StatusBar interface {
	SetStatus(status string)
}

// Panels bundles the collaborators for wiring.
type Panels struct {
	Timeline   Timeline
	Properties PropertiesPane
	Preview    Preview
	Status     StatusBar
}
