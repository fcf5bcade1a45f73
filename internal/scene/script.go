package scene

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ScriptMode selects what GenerateScript emits.
type ScriptMode string

const (
	// ModePreview renders a static snapshot: every object is added, no
	// animation plays.
	ModePreview ScriptMode = "preview"
	// ModeRender plays intro animations; objects without one are added.
	ModeRender ScriptMode = "render"
)

const (
	previewSceneName = "PreviewScene"
	renderSceneName  = "StudioScene"
)

// GenerateScript translates the scene into a Manim script and returns the
// script text plus the scene class name to render.
//
// Layering is a deliberate order-based approximation of depth, not a
// compositor: shapes carry a z_index computed from pos_z, texts are added
// after all shapes and raised to the front, with extra raises for positive
// pos_z so the highest text wins.
func (b *Builder) GenerateScript(mode ScriptMode) (string, string) {
	sceneName := renderSceneName
	if mode == ModePreview {
		sceneName = previewSceneName
	}

	var creation, play []string
	var addShapes, addTexts []*Object

	for _, obj := range b.objects {
		creation = append(creation, constructorLine(obj))

		if mode == ModeRender {
			if anim := introAnimation(obj); anim != "" {
				play = append(play, fmt.Sprintf("self.play(%s(%s))", anim, obj.ID))
				continue
			}
		}
		if obj.Type == Text {
			addTexts = append(addTexts, obj)
		} else {
			addShapes = append(addShapes, obj)
		}
	}

	byPosZ := func(objs []*Object) {
		sort.SliceStable(objs, func(i, j int) bool { return objs[i].Props.PosZ < objs[j].Props.PosZ })
	}
	byPosZ(addShapes)
	byPosZ(addTexts)

	var add []string
	for _, obj := range addShapes {
		add = append(add, fmt.Sprintf("self.add(%s)", obj.ID))
	}
	for _, obj := range addTexts {
		add = append(add, fmt.Sprintf("self.add(%s)", obj.ID))
	}
	// Raise texts above every shape, highest pos_z last.
	for _, obj := range addTexts {
		raise := fmt.Sprintf("self.bring_to_front(%s)", obj.ID)
		for i := 0; i <= stackLevel(obj.Props.PosZ); i++ {
			add = append(add, raise)
		}
	}

	var body []string
	body = append(body, creation...)
	body = append(body, play...)
	body = append(body, add...)
	if len(body) == 0 {
		body = []string{"pass  # empty scene"}
	}

	var sb strings.Builder
	sb.WriteString("# Generated by manimstudio\n")
	sb.WriteString("from manim import *\n")
	sb.WriteString("import numpy as np\n\n")
	fmt.Fprintf(&sb, "class %s(Scene):\n", sceneName)
	sb.WriteString("    def construct(self):\n")
	for _, line := range body {
		sb.WriteString("        ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), sceneName
}

// introAnimation returns the play-directive name for the object's animation,
// or "" when the object enters via a plain add. Write is Text-only; any
// other unknown name degrades to no animation.
func introAnimation(obj *Object) string {
	switch obj.Props.Animation {
	case AnimFadeIn:
		return AnimFadeIn
	case AnimGrowFromCenter:
		return AnimGrowFromCenter
	case AnimWrite:
		if obj.Type == Text {
			return AnimWrite
		}
	}
	return ""
}

// stackLevel discretizes pos_z into a stacking level.
func stackLevel(posZ float64) int {
	level := int(math.Floor(posZ * 10))
	if level < 0 {
		return 0
	}
	return level
}

func constructorLine(obj *Object) string {
	p := obj.Props
	var args []string
	switch obj.Type {
	case Circle:
		args = append(args,
			"radius="+num(p.Radius),
			"fill_color="+quote(p.FillColor),
			"fill_opacity="+num(p.Opacity),
			"stroke_color="+quote(p.StrokeColor),
			"stroke_width="+num(p.StrokeWidth),
			"stroke_opacity="+num(p.StrokeOpacity),
			"z_index="+strconv.Itoa(stackLevel(p.PosZ)),
		)
	case Square:
		args = append(args,
			"side_length="+num(p.SideLength),
			"fill_color="+quote(p.FillColor),
			"fill_opacity="+num(p.Opacity),
			"stroke_color="+quote(p.StrokeColor),
			"stroke_width="+num(p.StrokeWidth),
			"stroke_opacity="+num(p.StrokeOpacity),
			"z_index="+strconv.Itoa(stackLevel(p.PosZ)),
		)
	case Text:
		// Manim's Text takes the content positionally and uses color for
		// the primary fill. stroke_width behaves differently for fonts and
		// is left out.
		args = append(args,
			quote(p.TextContent),
			"font_size="+num(p.FontSize),
			"color="+quote(p.FillColor),
			"fill_opacity="+num(p.Opacity),
			"stroke_color="+quote(p.StrokeColor),
			"stroke_opacity="+num(p.StrokeOpacity),
		)
	}
	return fmt.Sprintf("%s = %s(%s).move_to(np.array([%s, %s, %s]))",
		obj.ID, obj.Type, strings.Join(args, ", "), num(p.PosX), num(p.PosY), num(p.PosZ))
}

// quote emits a single-quoted Python string with internal quotes escaped.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return "'" + s + "'"
}

// num emits a float in its natural decimal form (1, 0.5, -2.25).
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
