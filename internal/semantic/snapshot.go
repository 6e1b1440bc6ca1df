package semantic

import (
	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/geom"
)

// snapshots records the post-operation state of every created object,
// then every affected object not already covered. Objects without a
// resolvable bounding box are skipped.
func (x *extraction) snapshots() []design.GeometrySnapshot {
	seen := make(map[string]bool, len(x.in.Created)+len(x.in.Affected))
	var out []design.GeometrySnapshot
	for _, ids := range [][]string{x.in.Created, x.in.Affected} {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if s, ok := Snapshot(x.q, id); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Snapshot captures one object's current state from q.
func Snapshot(q geom.Querier, id string) (design.GeometrySnapshot, bool) {
	b, ok := q.BoundingBox(id)
	if !ok {
		return design.GeometrySnapshot{}, false
	}
	typ, ok := q.ObjectType(id)
	if !ok {
		typ = geom.TypeUnknown
	}

	props := design.Attributes{}
	points := b.Corners()
	if c, ok := q.Curve(id); ok {
		props["length"] = design.Number(c.Length)
		props["closed"] = design.Bool(c.Closed)
		props["degree"] = design.Int(c.Degree)
		if len(c.Points) > 0 {
			points = append([]geom.Vec3(nil), c.Points...)
		} else {
			points = []geom.Vec3{c.Start, c.End}
		}
	}
	if s, ok := q.Surface(id); ok {
		props["area"] = design.Number(s.Area)
		props["volume"] = design.Number(s.Volume)
		props["solid"] = design.Bool(s.Solid)
	}
	if p, ok := q.Point(id); ok {
		props["location"] = design.Vector(p)
		points = []geom.Vec3{p}
	}

	return design.GeometrySnapshot{
		ID:          id,
		Type:        typ,
		BoundingBox: design.NewBoundingBoxData(b),
		Properties:  props,
		Points:      points,
	}, true
}
