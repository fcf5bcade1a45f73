package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectType identifies the kind of scene object.
type ObjectType string

const (
	Circle ObjectType = "Circle"
	Square ObjectType = "Square"
	Text   ObjectType = "Text"
)

// Types lists the supported object types in toolbar order.
func Types() []ObjectType {
	return []ObjectType{Circle, Square, Text}
}

// Intro animation names. AnimWrite only applies to Text; the script
// generator degrades it to a plain add on other types.
const (
	AnimNone           = "None"
	AnimFadeIn         = "FadeIn"
	AnimGrowFromCenter = "GrowFromCenter"
	AnimWrite          = "Write"
)

// Animations lists the selectable animation names in menu order.
func Animations() []string {
	return []string{AnimNone, AnimFadeIn, AnimGrowFromCenter, AnimWrite}
}

// Properties holds every editable attribute across all object types. Which
// fields are live for a given object is decided by its type's key set; the
// string-key contract exists only at the panel boundary.
type Properties struct {
	PosX, PosY, PosZ float64

	Radius      float64 // Circle
	SideLength  float64 // Square
	TextContent string  // Text
	FontSize    float64 // Text, integer-valued

	FillColor     string
	Opacity       float64
	StrokeColor   string
	StrokeWidth   float64 // shapes only
	StrokeOpacity float64

	Animation string
}

// Object is one visual entity in the scene.
type Object struct {
	ID    string
	Type  ObjectType
	Props Properties
}

// Record is the boundary representation handed to panel collaborators.
// Properties is an owned snapshot; mutating it does not touch the scene.
type Record struct {
	ID         string
	Type       ObjectType
	Properties map[string]any
}

// Per-type property keys, in display order.
var (
	circleKeys = []string{"pos_x", "pos_y", "pos_z", "radius", "fill_color", "opacity", "stroke_color", "stroke_width", "stroke_opacity", "animation"}
	squareKeys = []string{"pos_x", "pos_y", "pos_z", "side_length", "fill_color", "opacity", "stroke_color", "stroke_width", "stroke_opacity", "animation"}
	textKeys   = []string{"pos_x", "pos_y", "pos_z", "text_content", "fill_color", "font_size", "opacity", "stroke_color", "stroke_opacity", "animation"}
)

// PropertyKeys returns the ordered key set for a type, for panels that need
// a stable display order. Unknown types yield nil.
func PropertyKeys(t ObjectType) []string {
	switch t {
	case Circle:
		return append([]string(nil), circleKeys...)
	case Square:
		return append([]string(nil), squareKeys...)
	case Text:
		return append([]string(nil), textKeys...)
	}
	return nil
}

// Keys coerced to float64 on update; everything else is stored verbatim as
// a string.
var numericKeys = map[string]bool{
	"pos_x": true, "pos_y": true, "pos_z": true,
	"radius": true, "side_length": true, "font_size": true,
	"opacity": true, "stroke_width": true, "stroke_opacity": true,
}

const defaultFill = "#58C4DD" // Manim's default blue

func defaultProps(t ObjectType) Properties {
	switch t {
	case Circle:
		return Properties{
			Radius:        1.0,
			FillColor:     defaultFill,
			Opacity:       1.0,
			StrokeColor:   "#FFFFFF",
			StrokeWidth:   2.0,
			StrokeOpacity: 1.0,
			Animation:     AnimNone,
		}
	case Square:
		return Properties{
			SideLength:    2.0,
			FillColor:     defaultFill,
			Opacity:       1.0,
			StrokeColor:   "#FFFFFF",
			StrokeWidth:   2.0,
			StrokeOpacity: 1.0,
			Animation:     AnimNone,
		}
	case Text:
		return Properties{
			TextContent:   "Text",
			FillColor:     "#FFFFFF",
			FontSize:      48,
			Opacity:       1.0,
			StrokeColor:   "#000000",
			StrokeOpacity: 1.0,
			Animation:     AnimNone,
		}
	}
	return Properties{}
}

// Get returns the value for key, or false when the key is not part of this
// object's type.
func (o *Object) Get(key string) (any, bool) {
	switch key {
	case "pos_x":
		return o.Props.PosX, true
	case "pos_y":
		return o.Props.PosY, true
	case "pos_z":
		return o.Props.PosZ, true
	case "radius":
		if o.Type == Circle {
			return o.Props.Radius, true
		}
	case "side_length":
		if o.Type == Square {
			return o.Props.SideLength, true
		}
	case "text_content":
		if o.Type == Text {
			return o.Props.TextContent, true
		}
	case "font_size":
		if o.Type == Text {
			return o.Props.FontSize, true
		}
	case "fill_color":
		return o.Props.FillColor, true
	case "opacity":
		return o.Props.Opacity, true
	case "stroke_color":
		return o.Props.StrokeColor, true
	case "stroke_width":
		if o.Type != Text {
			return o.Props.StrokeWidth, true
		}
	case "stroke_opacity":
		return o.Props.StrokeOpacity, true
	case "animation":
		return o.Props.Animation, true
	}
	return nil, false
}

// set writes a single property. The error reports unknown keys and failed
// float coercions; callers turn it into a diagnostic, never a panic.
func (o *Object) set(key string, value any) error {
	if numericKeys[key] {
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		switch key {
		case "pos_x":
			o.Props.PosX = f
		case "pos_y":
			o.Props.PosY = f
		case "pos_z":
			o.Props.PosZ = f
		case "radius":
			if o.Type != Circle {
				return fmt.Errorf("property %s not valid for %s", key, o.Type)
			}
			o.Props.Radius = f
		case "side_length":
			if o.Type != Square {
				return fmt.Errorf("property %s not valid for %s", key, o.Type)
			}
			o.Props.SideLength = f
		case "font_size":
			if o.Type != Text {
				return fmt.Errorf("property %s not valid for %s", key, o.Type)
			}
			o.Props.FontSize = f
		case "opacity":
			o.Props.Opacity = f
		case "stroke_width":
			if o.Type == Text {
				return fmt.Errorf("property %s not valid for %s", key, o.Type)
			}
			o.Props.StrokeWidth = f
		case "stroke_opacity":
			o.Props.StrokeOpacity = f
		}
		return nil
	}

	switch key {
	case "text_content":
		if o.Type != Text {
			return fmt.Errorf("property %s not valid for %s", key, o.Type)
		}
		o.Props.TextContent = toString(value)
	case "fill_color":
		o.Props.FillColor = toString(value)
	case "stroke_color":
		o.Props.StrokeColor = toString(value)
	case "animation":
		o.Props.Animation = toString(value)
	default:
		return fmt.Errorf("unknown property %s", key)
	}
	return nil
}

// PropertyMap returns an owned snapshot of the object's properties keyed by
// the type's documented key set.
func (o *Object) PropertyMap() map[string]any {
	keys := PropertyKeys(o.Type)
	m := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := o.Get(k); ok {
			m[k] = v
		}
	}
	return m
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid number %v", v)
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
