// Package journal reads operation-completion events written by a CAD host
// as newline-delimited JSON and feeds them into a capture session.
//
// Each line is one Event. Replay consumes a finished journal; Tail follows
// a journal that is still being written.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/geom"
	"github.com/HendryAvila/designmem/internal/session"
	"github.com/HendryAvila/designmem/internal/transform"
)

var validate = validator.New()

// Event is one completed host operation.
type Event struct {
	Command    string            `json:"command" validate:"required"`
	Timestamp  time.Time         `json:"timestamp"`
	Created    []string          `json:"created,omitempty" validate:"dive,required"`
	Affected   []string          `json:"affected,omitempty" validate:"dive,required"`
	Parameters design.Attributes `json:"parameters,omitempty"`
	Before     []Placement       `json:"before,omitempty" validate:"dive"`
	Objects    []Object          `json:"objects,omitempty" validate:"dive"`
}

// Placement is an object's state before the operation ran. It needs a
// center, a bounding box, or both.
type Placement struct {
	ID          string            `json:"id" validate:"required"`
	Center      *geom.Vec3        `json:"center,omitempty" validate:"required_without=BoundingBox"`
	BoundingBox *geom.BoundingBox `json:"boundingBox,omitempty"`
}

// Object is the host's description of an object after the operation.
type Object struct {
	ID          string            `json:"id" validate:"required"`
	Type        string            `json:"type,omitempty" validate:"omitempty,oneof=point curve surface brep extrusion mesh unknown"`
	BoundingBox *geom.BoundingBox `json:"boundingBox,omitempty"`
	Curve       *Curve            `json:"curve,omitempty"`
	Surface     *Surface          `json:"surface,omitempty"`
	Point       *geom.Vec3        `json:"point,omitempty"`
}

// Curve carries curve facts.
type Curve struct {
	Length float64     `json:"length" validate:"gte=0"`
	Closed bool        `json:"closed"`
	Degree int         `json:"degree" validate:"gte=0"`
	Start  geom.Vec3   `json:"start"`
	End    geom.Vec3   `json:"end"`
	Mid    geom.Vec3   `json:"mid"`
	Points []geom.Vec3 `json:"points,omitempty"`
}

// Surface carries surface and solid facts.
type Surface struct {
	Area   float64 `json:"area" validate:"gte=0"`
	Volume float64 `json:"volume" validate:"gte=0"`
	Solid  bool    `json:"solid"`
}

// Decode parses and validates one journal line.
func Decode(line []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate checks the event's struct tags.
func (e Event) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("invalid event: %s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is missing", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	}
	return field + " is invalid"
}

// Snapshot returns a querier over the event's objects, or nil when the
// event carries none.
func (e Event) Snapshot() geom.Querier {
	if len(e.Objects) == 0 {
		return nil
	}
	objs := make([]geom.Object, 0, len(e.Objects))
	for _, o := range e.Objects {
		g := geom.Object{
			ID:    o.ID,
			Type:  geom.ParseObjectType(o.Type),
			Box:   o.BoundingBox,
			Point: o.Point,
		}
		if c := o.Curve; c != nil {
			g.Curve = &geom.CurveInfo{
				Length: c.Length, Closed: c.Closed, Degree: c.Degree,
				Start: c.Start, End: c.End, Mid: c.Mid, Points: c.Points,
			}
		}
		if s := o.Surface; s != nil {
			g.Surface = &geom.SurfaceInfo{Area: s.Area, Volume: s.Volume, Solid: s.Solid}
		}
		objs = append(objs, g)
	}
	return geom.NewSnapshot(objs...)
}

// Operation converts the event into a session operation.
func (e Event) Operation() session.Operation {
	op := session.Operation{
		Name:       e.Command,
		Timestamp:  e.Timestamp,
		Created:    append([]string(nil), e.Created...),
		Affected:   append([]string(nil), e.Affected...),
		Parameters: e.Parameters.Clone(),
		Geometry:   e.Snapshot(),
	}
	for _, p := range e.Before {
		st := transform.State{ID: p.ID, Box: p.BoundingBox}
		switch {
		case p.Center != nil:
			st.Center = *p.Center
		case p.BoundingBox != nil:
			st.Center = p.BoundingBox.Center()
		default:
			// No position to measure from.
			continue
		}
		op.Before = append(op.Before, st)
	}
	return op
}

// Writer appends events to a journal.
type Writer struct {
	enc *json.Encoder
}

// NewWriter returns a Writer emitting one event per line to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write validates ev and appends it.
func (w *Writer) Write(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return w.enc.Encode(ev)
}
