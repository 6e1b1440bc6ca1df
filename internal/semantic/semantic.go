// Package semantic turns a completed CAD operation into structured,
// per-kind attributes, a one-line intent, and geometry snapshots.
//
// Extraction is total: unknown commands and unresolvable geometry degrade
// to fewer attributes, never to an error.
package semantic

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/geom"
)

// Input is one completed operation as seen by the extractor.
type Input struct {
	Name       string
	Created    []string
	Affected   []string
	Parameters design.Attributes
	Geometry   geom.Querier
}

// Result is the extractor output for one operation.
type Result struct {
	Attributes design.Attributes
	Intent     string
	Snapshots  []design.GeometrySnapshot
}

// Extractor computes semantic attributes. The zero value is not usable;
// construct with NewExtractor.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger disables logging.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

var defaultExtractor = NewExtractor(nil)

// Extract runs the default, non-logging extractor.
func Extract(in Input) Result { return defaultExtractor.Extract(in) }

// Extract computes the attributes, intent and snapshots for in.
func (e *Extractor) Extract(in Input) Result {
	q := in.Geometry
	if q == nil {
		q = geom.NewSnapshot()
	}
	x := &extraction{
		in:    in,
		q:     q,
		attrs: design.Attributes{},
		log:   e.log.With(zap.String("command", in.Name)),
	}

	kind := design.ParseKind(in.Name)
	switch kind {
	case design.CmdBox:
		x.box()
	case design.CmdSphere:
		x.sphere()
	case design.CmdCylinder:
		x.cylinder()
	case design.CmdCone:
		x.cone()
	case design.CmdPlane:
		x.plane()
	case design.CmdRectangle:
		x.rectangle()
	case design.CmdCircle:
		x.circle()
	case design.CmdLine:
		x.line()
	case design.CmdArc:
		x.arc()
	case design.CmdPolyline, design.CmdCurve:
		x.polyline(kind == design.CmdCurve)
	case design.CmdExtrude, design.CmdLoft, design.CmdSweep1, design.CmdRevolve:
		x.surface()
	case design.CmdMove, design.CmdCopy, design.CmdRotate, design.CmdScale, design.CmdMirror, design.CmdArray:
		x.transformation(kind)
	case design.CmdBooleanUnion, design.CmdBooleanDifference, design.CmdBooleanIntersection:
		x.boolean()
	case design.CmdFillet, design.CmdChamfer, design.CmdTrim, design.CmdSplit, design.CmdJoin:
		x.edit()
	case design.CmdDelete:
		x.attrs["removed_count"] = design.Int(len(in.Affected))
		x.intent = fmt.Sprintf("Deleted %d object(s)", len(in.Affected))
	case design.CmdGroup, design.CmdUngroup:
		x.group()
	case design.CmdDistance:
		x.distance()
	case design.CmdLength:
		x.totalLength()
	case design.CmdArea, design.CmdVolume:
		x.totalMeasure(kind == design.CmdVolume)
	case design.CmdUnknown:
		x.fallback()
	}

	if x.intent == "" {
		x.intent = fmt.Sprintf("Executed %s", in.Name)
	}
	return Result{
		Attributes: x.attrs,
		Intent:     x.intent,
		Snapshots:  x.snapshots(),
	}
}

// extraction is the per-call working state.
type extraction struct {
	in     Input
	q      geom.Querier
	attrs  design.Attributes
	intent string
	log    *zap.Logger
}

// subject returns the object a creation command describes: the first
// created id, or the first affected id when nothing was created.
func (x *extraction) subject() (string, bool) {
	if len(x.in.Created) > 0 {
		return x.in.Created[0], true
	}
	if len(x.in.Affected) > 0 {
		return x.in.Affected[0], true
	}
	return "", false
}

func (x *extraction) subjectBox() (geom.BoundingBox, bool) {
	id, ok := x.subject()
	if !ok {
		x.log.Debug("no geometry ids")
		return geom.BoundingBox{}, false
	}
	b, ok := x.q.BoundingBox(id)
	if !ok {
		x.log.Debug("bounding box unavailable", zap.String("object", id))
	}
	return b, ok
}

func (x *extraction) subjectCurve() (geom.CurveInfo, bool) {
	id, ok := x.subject()
	if !ok {
		return geom.CurveInfo{}, false
	}
	c, ok := x.q.Curve(id)
	if !ok {
		x.log.Debug("curve query unavailable", zap.String("object", id))
	}
	return c, ok
}

func (x *extraction) subjectSurface() (geom.SurfaceInfo, bool) {
	id, ok := x.subject()
	if !ok {
		return geom.SurfaceInfo{}, false
	}
	return x.q.Surface(id)
}

func dimensionsValue(d geom.Dimensions) design.Value {
	return design.Map(design.Attributes{
		"width":  design.Number(d.Width),
		"depth":  design.Number(d.Depth),
		"height": design.Number(d.Height),
	})
}

// ─── Primitives ─────────────────────────────────────────────────────────────

func (x *extraction) box() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	d := b.Dimensions()
	x.attrs["center"] = design.Vector(b.Center())
	x.attrs["dimensions"] = dimensionsValue(d)
	x.attrs["corners"] = design.Vectors(b.Corners())
	if s, ok := x.subjectSurface(); ok {
		x.attrs["volume"] = design.Number(s.Volume)
	}
	x.intent = fmt.Sprintf("Created box %s x %s x %s at %s",
		geom.Round1(d.Width), geom.Round1(d.Depth), geom.Round1(d.Height), b.Center())
}

func (x *extraction) sphere() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	e := b.Extent()
	r := math.Max(e.X, math.Max(e.Y, e.Z)) / 2
	x.attrs["center"] = design.Vector(b.Center())
	x.attrs["radius"] = design.Number(r)
	if s, ok := x.subjectSurface(); ok {
		x.attrs["volume"] = design.Number(s.Volume)
	} else {
		x.attrs["volume"] = design.Number(4.0 / 3.0 * math.Pi * r * r * r)
	}
	x.intent = fmt.Sprintf("Created sphere of radius %s at %s", geom.Round1(r), b.Center())
}

// axial returns the base center, top center, radius and height of a solid
// standing on the XY plane.
func axial(b geom.BoundingBox) (base, top geom.Vec3, radius, height float64) {
	c, e := b.Center(), b.Extent()
	base = geom.V(c.X, c.Y, b.Min.Z)
	top = geom.V(c.X, c.Y, b.Max.Z)
	return base, top, math.Max(e.X, e.Y) / 2, e.Z
}

func (x *extraction) cylinder() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	base, _, r, h := axial(b)
	x.attrs["base_center"] = design.Vector(base)
	x.attrs["center"] = design.Vector(b.Center())
	x.attrs["radius"] = design.Number(r)
	x.attrs["height"] = design.Number(h)
	x.intent = fmt.Sprintf("Created cylinder r=%s h=%s at %s", geom.Round1(r), geom.Round1(h), base)
}

func (x *extraction) cone() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	base, apex, r, h := axial(b)
	x.attrs["base_center"] = design.Vector(base)
	x.attrs["apex"] = design.Vector(apex)
	x.attrs["radius"] = design.Number(r)
	x.attrs["height"] = design.Number(h)
	x.intent = fmt.Sprintf("Created cone r=%s h=%s at %s", geom.Round1(r), geom.Round1(h), base)
}

func (x *extraction) plane() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	d := b.Dimensions()
	area := d.Width * d.Depth
	if s, ok := x.subjectSurface(); ok && s.Area > 0 {
		area = s.Area
	}
	x.attrs["corners"] = design.Vectors(b.BottomCorners())
	x.attrs["width"] = design.Number(d.Width)
	x.attrs["depth"] = design.Number(d.Depth)
	x.attrs["area"] = design.Number(area)
	x.intent = fmt.Sprintf("Created plane %s x %s", geom.Round1(d.Width), geom.Round1(d.Depth))
}

// ─── Curves ─────────────────────────────────────────────────────────────────

func (x *extraction) rectangle() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	e := b.Extent()
	corners := b.BottomCorners()
	perimeter := 2 * (e.X + e.Y)
	if c, ok := x.subjectCurve(); ok {
		if len(c.Points) >= 4 {
			corners = c.Points[:4]
		}
		if c.Length > 0 {
			perimeter = c.Length
		}
	}
	x.attrs["corners"] = design.Vectors(corners)
	x.attrs["width"] = design.Number(e.X)
	x.attrs["height"] = design.Number(e.Y)
	x.attrs["perimeter"] = design.Number(perimeter)
	x.attrs["closed"] = design.Bool(true)
	x.intent = fmt.Sprintf("Drew rectangle %s x %s", geom.Round1(e.X), geom.Round1(e.Y))
}

func (x *extraction) circle() {
	b, ok := x.subjectBox()
	if !ok {
		return
	}
	e := b.Extent()
	r := math.Max(e.X, e.Y) / 2
	if c, ok := x.subjectCurve(); ok && c.Length > 0 {
		r = c.Length / (2 * math.Pi)
	}
	x.attrs["center"] = design.Vector(b.Center())
	x.attrs["radius"] = design.Number(r)
	x.attrs["circumference"] = design.Number(2 * math.Pi * r)
	x.intent = fmt.Sprintf("Drew circle of radius %s at %s", geom.Round1(r), b.Center())
}

func (x *extraction) line() {
	c, ok := x.subjectCurve()
	if !ok {
		return
	}
	length := c.Length
	if length == 0 {
		length = c.Start.Distance(c.End)
	}
	x.attrs["start"] = design.Vector(c.Start)
	x.attrs["end"] = design.Vector(c.End)
	x.attrs["length"] = design.Number(length)
	x.attrs["direction"] = design.Vector(c.End.Sub(c.Start).Unit())
	x.intent = fmt.Sprintf("Drew line of length %s from %s to %s", geom.Round1(length), c.Start, c.End)
}

func (x *extraction) arc() {
	c, ok := x.subjectCurve()
	if !ok {
		return
	}
	x.attrs["start"] = design.Vector(c.Start)
	x.attrs["end"] = design.Vector(c.End)
	x.attrs["mid"] = design.Vector(c.Mid)
	x.attrs["length"] = design.Number(c.Length)
	center, r, ok := circumcircle(c.Start, c.Mid, c.End)
	if !ok {
		x.log.Debug("arc points are collinear")
		x.intent = fmt.Sprintf("Drew arc of length %s", geom.Round1(c.Length))
		return
	}
	x.attrs["center"] = design.Vector(center)
	x.attrs["radius"] = design.Number(r)
	x.intent = fmt.Sprintf("Drew arc of radius %s around %s", geom.Round1(r), center)
}

// circumcircle returns the center and radius of the circle through a, b
// and c. ok is false when the points are (nearly) collinear.
func circumcircle(a, b, c geom.Vec3) (geom.Vec3, float64, bool) {
	ab, ac := b.Sub(a), c.Sub(a)
	n := ab.Cross(ac)
	n2 := n.Dot(n)
	if n2 < 1e-12 {
		return geom.Vec3{}, 0, false
	}
	// a + ((|ac|² (n × ab)) + (|ab|² (ac × n))) / 2|n|²
	t1 := n.Cross(ab).Scale(ac.Dot(ac))
	t2 := ac.Cross(n).Scale(ab.Dot(ab))
	center := a.Add(t1.Add(t2).Scale(1 / (2 * n2)))
	return center, center.Distance(a), true
}

func (x *extraction) polyline(isCurve bool) {
	c, ok := x.subjectCurve()
	if !ok {
		return
	}
	x.attrs["point_count"] = design.Int(len(c.Points))
	x.attrs["length"] = design.Number(c.Length)
	x.attrs["closed"] = design.Bool(c.Closed)
	x.attrs["vertices"] = design.Vectors(c.Points)
	noun := "polyline"
	if isCurve {
		x.attrs["degree"] = design.Int(c.Degree)
		noun = fmt.Sprintf("degree-%d curve", c.Degree)
	}
	shape := "open"
	if c.Closed {
		shape = "closed"
	}
	x.intent = fmt.Sprintf("Drew %s %s through %d points, length %s", shape, noun, len(c.Points), geom.Round1(c.Length))
}

// ─── Surfaces ───────────────────────────────────────────────────────────────

func (x *extraction) surface() {
	var (
		count     int
		area, vol float64
		solid     = true
		union     geom.BoundingBox
		haveUnion bool
	)
	for _, id := range x.in.Created {
		s, ok := x.q.Surface(id)
		if !ok {
			x.log.Debug("surface query unavailable", zap.String("object", id))
			continue
		}
		count++
		area += s.Area
		vol += s.Volume
		solid = solid && s.Solid
		if b, ok := x.q.BoundingBox(id); ok {
			if haveUnion {
				union = union.Union(b)
			} else {
				union, haveUnion = b, true
			}
		}
	}
	if count == 0 {
		return
	}
	x.attrs["surface_count"] = design.Int(count)
	x.attrs["area"] = design.Number(area)
	x.attrs["volume"] = design.Number(vol)
	x.attrs["solid"] = design.Bool(solid)
	if haveUnion {
		x.attrs["dimensions"] = dimensionsValue(union.Dimensions())
	}
	what := "surface"
	if solid {
		what = "solid"
	}
	x.intent = fmt.Sprintf("%s %d %s(s), area %s", pastTense(x.in.Name), count, what, geom.Round1(area))
}

func pastTense(name string) string {
	switch name {
	case "Extrude":
		return "Extruded"
	case "Loft":
		return "Lofted"
	case "Sweep1":
		return "Swept"
	case "Revolve":
		return "Revolved"
	}
	return name
}

// ─── Modification ───────────────────────────────────────────────────────────

func (x *extraction) transformation(k design.CommandKind) {
	n := len(x.in.Affected)
	x.attrs["object_count"] = design.Int(n)
	if k.IsDuplication() {
		copies := len(x.in.Created)
		x.attrs["copy_count"] = design.Int(copies)
		x.intent = fmt.Sprintf("%s produced %d copies of %d object(s)", x.in.Name, copies, n)
		return
	}
	x.intent = fmt.Sprintf("%s applied to %d object(s)", x.in.Name, n)
}

func (x *extraction) boolean() {
	x.attrs["input_count"] = design.Int(len(x.in.Affected))
	x.attrs["result_count"] = design.Int(len(x.in.Created))

	var vol float64
	solid, resolved := true, false
	for _, id := range x.in.Created {
		s, ok := x.q.Surface(id)
		if !ok {
			continue
		}
		resolved = true
		vol += s.Volume
		solid = solid && s.Solid
	}
	if resolved {
		x.attrs["volume"] = design.Number(vol)
		x.attrs["solid"] = design.Bool(solid)
	}
	op := strings.ToLower(strings.TrimPrefix(x.in.Name, "Boolean"))
	x.intent = fmt.Sprintf("Boolean %s of %d object(s) into %d result(s)", op, len(x.in.Affected), len(x.in.Created))
}

func (x *extraction) edit() {
	x.attrs["input_count"] = design.Int(len(x.in.Affected))
	x.attrs["result_count"] = design.Int(len(x.in.Created))
	x.intent = fmt.Sprintf("%s on %d object(s)", x.in.Name, len(x.in.Affected))
}

func (x *extraction) group() {
	n := len(x.in.Affected)
	if n == 0 {
		n = len(x.in.Created)
	}
	x.attrs["member_count"] = design.Int(n)
	x.intent = fmt.Sprintf("%s %d object(s)", pastGroup(x.in.Name), n)
}

func pastGroup(name string) string {
	if name == "Ungroup" {
		return "Ungrouped"
	}
	return "Grouped"
}

// ─── Analysis ───────────────────────────────────────────────────────────────

func (x *extraction) location(id string) (geom.Vec3, bool) {
	if p, ok := x.q.Point(id); ok {
		return p, true
	}
	if b, ok := x.q.BoundingBox(id); ok {
		return b.Center(), true
	}
	return geom.Vec3{}, false
}

func (x *extraction) distance() {
	ids := append(append([]string(nil), x.in.Affected...), x.in.Created...)
	var pts []geom.Vec3
	for _, id := range ids {
		if p, ok := x.location(id); ok {
			pts = append(pts, p)
		}
		if len(pts) == 2 {
			break
		}
	}
	if len(pts) < 2 {
		return
	}
	d := pts[0].Distance(pts[1])
	x.attrs["distance"] = design.Number(d)
	x.intent = fmt.Sprintf("Measured distance %s", geom.Round1(d))
}

func (x *extraction) totalLength() {
	var total float64
	var n int
	for _, id := range x.in.Affected {
		if c, ok := x.q.Curve(id); ok {
			total += c.Length
			n++
		}
	}
	if n == 0 {
		return
	}
	x.attrs["total_length"] = design.Number(total)
	x.intent = fmt.Sprintf("Measured length %s over %d curve(s)", geom.Round1(total), n)
}

func (x *extraction) totalMeasure(volume bool) {
	var total float64
	var n int
	for _, id := range x.in.Affected {
		s, ok := x.q.Surface(id)
		if !ok {
			continue
		}
		n++
		if volume {
			total += s.Volume
		} else {
			total += s.Area
		}
	}
	if n == 0 {
		return
	}
	if volume {
		x.attrs["total_volume"] = design.Number(total)
		x.intent = fmt.Sprintf("Measured volume %s over %d object(s)", geom.Round1(total), n)
		return
	}
	x.attrs["total_area"] = design.Number(total)
	x.intent = fmt.Sprintf("Measured area %s over %d object(s)", geom.Round1(total), n)
}

// ─── Fallback ───────────────────────────────────────────────────────────────

func (x *extraction) fallback() {
	x.log.Debug("unclassified command")
	x.attrs["command"] = design.String(x.in.Name)
	x.attrs["created_count"] = design.Int(len(x.in.Created))
	x.attrs["affected_count"] = design.Int(len(x.in.Affected))
	x.intent = fmt.Sprintf("Executed %s", x.in.Name)
}
