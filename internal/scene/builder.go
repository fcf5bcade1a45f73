package scene

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// UnsupportedTypeError is returned by AddObject for a type name outside the
// supported set. Suggestion holds the closest supported name when one is
// near enough to be a plausible typo.
type UnsupportedTypeError struct {
	Type       string
	Suggestion ObjectType
}

func (e *UnsupportedTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unsupported object type %q (did you mean %q?)", e.Type, string(e.Suggestion))
	}
	return fmt.Sprintf("unsupported object type %q", e.Type)
}

// Diagnostic describes a tolerated no-op condition: a stale object id, an
// unknown property key, or a value that failed coercion. These are routine
// during UI teardown races and are reported rather than raised.
type Diagnostic struct {
	Op       string
	ObjectID string
	Key      string
	Detail   string
}

// Builder is the single source of truth for scene objects and the script
// generator over them. It is not safe for concurrent use; all mutation
// happens on the UI-owning loop.
type Builder struct {
	objects []*Object

	// OnDiagnostic receives every tolerated no-op. Nil drops them.
	OnDiagnostic func(Diagnostic)
}

func NewBuilder() *Builder { return &Builder{} }

// AddObject creates an object of the given type with its full default
// property set and returns the new id.
func (b *Builder) AddObject(typ string) (string, error) {
	t := ObjectType(typ)
	switch t {
	case Circle, Square, Text:
	default:
		return "", &UnsupportedTypeError{Type: typ, Suggestion: closestType(typ)}
	}

	id := b.newID(t)
	obj := &Object{ID: id, Type: t, Props: defaultProps(t)}
	b.objects = append(b.objects, obj)
	return id, nil
}

// newID builds "{lowercase_type}_{6 hex chars}". The suffix space makes
// collisions negligible; the existing set is still checked so a collision
// regenerates instead of aliasing two objects.
func (b *Builder) newID(t ObjectType) string {
	for {
		u := uuid.New()
		id := fmt.Sprintf("%s_%x", strings.ToLower(string(t)), u[:3])
		if b.find(id) == nil {
			return id
		}
	}
}

// Properties returns an owned snapshot of the object's property map, or
// false when the id is unknown. An unknown id is an expected outcome for
// stale selections, not an error.
func (b *Builder) Properties(id string) (map[string]any, bool) {
	obj := b.find(id)
	if obj == nil {
		return nil, false
	}
	return obj.PropertyMap(), true
}

// UpdateProperty writes one property. Two addressing modes: key "position"
// with axisIndex 0..2 targets pos_x/pos_y/pos_z and coerces the value to
// float; any other key is looked up directly. Unknown ids, unknown keys and
// failed coercions are diagnostics, never errors.
func (b *Builder) UpdateProperty(id, key string, value any, axisIndex int) {
	obj := b.find(id)
	if obj == nil {
		b.diag(Diagnostic{Op: "update_property", ObjectID: id, Key: key, Detail: "object not found"})
		return
	}

	if key == "position" {
		axes := []string{"pos_x", "pos_y", "pos_z"}
		if axisIndex < 0 || axisIndex >= len(axes) {
			b.diag(Diagnostic{Op: "update_property", ObjectID: id, Key: key, Detail: fmt.Sprintf("invalid axis index %d", axisIndex)})
			return
		}
		key = axes[axisIndex]
	}

	if err := obj.set(key, value); err != nil {
		b.diag(Diagnostic{Op: "update_property", ObjectID: id, Key: key, Detail: err.Error()})
	}
}

// SetAnimation sets the animation property. Unknown ids are a diagnostic.
func (b *Builder) SetAnimation(id, name string) {
	obj := b.find(id)
	if obj == nil {
		b.diag(Diagnostic{Op: "set_animation", ObjectID: id, Detail: "object not found"})
		return
	}
	obj.Props.Animation = name
}

// Remove deletes the object with the given id, reporting whether anything
// was removed. Removing an absent id is safe.
func (b *Builder) Remove(id string) bool {
	for i, obj := range b.objects {
		if obj.ID == id {
			b.objects = append(b.objects[:i], b.objects[i+1:]...)
			return true
		}
	}
	b.diag(Diagnostic{Op: "remove", ObjectID: id, Detail: "object not found"})
	return false
}

// Objects returns the scene contents in insertion order. Each record's
// property map is an owned snapshot.
func (b *Builder) Objects() []Record {
	out := make([]Record, 0, len(b.objects))
	for _, obj := range b.objects {
		out = append(out, Record{ID: obj.ID, Type: obj.Type, Properties: obj.PropertyMap()})
	}
	return out
}

// Len reports the number of objects in the scene.
func (b *Builder) Len() int { return len(b.objects) }

func (b *Builder) find(id string) *Object {
	for _, obj := range b.objects {
		if obj.ID == id {
			return obj
		}
	}
	return nil
}

func (b *Builder) diag(d Diagnostic) {
	if b.OnDiagnostic != nil {
		b.OnDiagnostic(d)
	}
}

// closestType suggests a supported type for a misspelled name. Distance is
// measured case-insensitively; anything further than 3 edits is noise.
func closestType(typ string) ObjectType {
	lower := strings.ToLower(typ)
	best, bestDist := ObjectType(""), 4
	for _, t := range Types() {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(string(t)))
		if d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}
