// Package transform measures what a transformation or duplication command
// did to geometry: per-object translation, distance, and per-axis scale,
// or the spacing between successive copies.
package transform

import (
	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/geom"
)

// minExtent is the smallest before-extent for which an axis scale factor
// is computed. Thinner axes report 1.0.
const minExtent = 1e-3

// State is an object's pre-operation placement. Box is optional; without
// it the scale factors stay at 1.
type State struct {
	ID     string
	Center geom.Vec3
	Box    *geom.BoundingBox
}

// Input describes one operation to track.
type Input struct {
	Name    string
	Created []string
	Before  []State
	After   geom.Querier
}

// Result holds the transformation records in object order.
type Result struct {
	Records []design.TransformationInfo
	// MeanTranslation is the mean vector over records that carry one, or
	// nil when none do.
	MeanTranslation *geom.Vec3
}

// Tracker computes transformation records.
type Tracker struct {
	log *zap.Logger
}

// NewTracker creates a Tracker. A nil logger disables logging.
func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{log: log}
}

var defaultTracker = NewTracker(nil)

// Track runs the default, non-logging tracker.
func Track(in Input) Result { return defaultTracker.Track(in) }

// Track computes records for transform and duplication kinds. Other kinds,
// and objects that no longer resolve, yield no records.
func (t *Tracker) Track(in Input) Result {
	if in.After == nil {
		return Result{}
	}
	kind := design.ParseKind(in.Name)
	cat, _ := design.Classify(kind)

	var records []design.TransformationInfo
	switch {
	case kind.IsDuplication():
		records = t.duplicates(in)
	case cat == design.CategoryTransformation:
		records = t.transforms(in)
	default:
		return Result{}
	}
	return Result{Records: records, MeanTranslation: mean(records)}
}

func (t *Tracker) transforms(in Input) []design.TransformationInfo {
	var out []design.TransformationInfo
	for _, before := range in.Before {
		after, ok := in.After.BoundingBox(before.ID)
		if !ok {
			t.log.Debug("transformed object not resolvable",
				zap.String("command", in.Name), zap.String("object", before.ID))
			continue
		}
		bc := before.Center
		ac := after.Center()
		vec := ac.Sub(bc)
		out = append(out, design.TransformationInfo{
			ObjectID:            before.ID,
			Type:                in.Name,
			BeforeCenter:        &bc,
			AfterCenter:         ac,
			TranslationVector:   &vec,
			TranslationDistance: vec.Length(),
			Scale:               scale(before.Box, after),
		})
	}
	return out
}

func scale(before *geom.BoundingBox, after geom.BoundingBox) geom.Vec3 {
	if before == nil {
		return design.UnitScale
	}
	be, ae := before.Extent(), after.Extent()
	axis := func(b, a float64) float64 {
		if b <= minExtent {
			return 1.0
		}
		return a / b
	}
	return geom.V(axis(be.X, ae.X), axis(be.Y, ae.Y), axis(be.Z, ae.Z))
}

// duplicates indexes copies by creation order. Spacing is measured only
// between neighbours that both resolve.
func (t *Tracker) duplicates(in Input) []design.TransformationInfo {
	var (
		out  []design.TransformationInfo
		prev *geom.Vec3
	)
	for i, id := range in.Created {
		b, ok := in.After.BoundingBox(id)
		if !ok {
			t.log.Debug("copy not resolvable",
				zap.String("command", in.Name), zap.String("object", id))
			prev = nil
			continue
		}
		c := b.Center()
		rec := design.TransformationInfo{
			ObjectID:    id,
			Type:        in.Name,
			AfterCenter: c,
			Scale:       design.UnitScale,
			CopyIndex:   i + 1,
		}
		if prev != nil {
			vec := c.Sub(*prev)
			rec.TranslationVector = &vec
			rec.TranslationDistance = vec.Length()
		}
		out = append(out, rec)
		prev = &c
	}
	return out
}

func mean(records []design.TransformationInfo) *geom.Vec3 {
	var (
		sum geom.Vec3
		n   int
	)
	for _, r := range records {
		if r.TranslationVector == nil {
			continue
		}
		sum = sum.Add(*r.TranslationVector)
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum.Scale(1 / float64(n))
	return &m
}

// Annotate adds the summary attributes for r to attrs: tracked_objects,
// and mean_translation when a mean exists.
func Annotate(attrs design.Attributes, r Result) {
	if len(r.Records) == 0 {
		return
	}
	attrs["tracked_objects"] = design.Int(len(r.Records))
	if r.MeanTranslation != nil {
		attrs["mean_translation"] = design.Vector(*r.MeanTranslation)
	}
}
