package geom

// ObjectType is the geometry type tag reported by the host.
type ObjectType string

const (
	TypePoint     ObjectType = "point"
	TypeCurve     ObjectType = "curve"
	TypeSurface   ObjectType = "surface"
	TypeBrep      ObjectType = "brep"
	TypeExtrusion ObjectType = "extrusion"
	TypeMesh      ObjectType = "mesh"
	TypeUnknown   ObjectType = "unknown"
)

// ParseObjectType maps a host tag to an ObjectType, defaulting to unknown.
func ParseObjectType(s string) ObjectType {
	switch t := ObjectType(s); t {
	case TypePoint, TypeCurve, TypeSurface, TypeBrep, TypeExtrusion, TypeMesh:
		return t
	default:
		return TypeUnknown
	}
}

// CurveInfo holds the curve facts the engine reads.
// Mid is the point at the normalized parameter 0.5.
type CurveInfo struct {
	Length float64
	Closed bool
	Degree int
	Start  Vec3
	End    Vec3
	Mid    Vec3
	Points []Vec3
}

// SurfaceInfo holds the surface/solid facts the engine reads.
type SurfaceInfo struct {
	Area   float64
	Volume float64
	Solid  bool
}

// Querier is the read-only geometry-query capability. Every method reports
// ok=false when the object cannot be resolved or the fact does not apply.
// Implementations must not mutate the document.
type Querier interface {
	ObjectType(id string) (ObjectType, bool)
	BoundingBox(id string) (BoundingBox, bool)
	Curve(id string) (CurveInfo, bool)
	Surface(id string) (SurfaceInfo, bool)
	Point(id string) (Vec3, bool)
}

// Object is one host-reported geometry record.
type Object struct {
	ID      string
	Type    ObjectType
	Box     *BoundingBox
	Curve   *CurveInfo
	Surface *SurfaceInfo
	Point   *Vec3
}

// Snapshot is a Querier over a fixed set of host-reported objects. It is
// how the glue layers turn a serialized event into a query capability.
type Snapshot struct {
	objects map[string]Object
}

// NewSnapshot indexes objects by id. Later duplicates replace earlier ones.
func NewSnapshot(objects ...Object) *Snapshot {
	s := &Snapshot{objects: make(map[string]Object, len(objects))}
	for _, o := range objects {
		s.objects[o.ID] = o
	}
	return s
}

// Len returns the number of known objects.
func (s *Snapshot) Len() int { return len(s.objects) }

// ObjectType implements Querier.
func (s *Snapshot) ObjectType(id string) (ObjectType, bool) {
	o, ok := s.objects[id]
	if !ok {
		return "", false
	}
	if o.Type == "" {
		return TypeUnknown, true
	}
	return o.Type, true
}

// BoundingBox implements Querier. A point object yields a degenerate box.
func (s *Snapshot) BoundingBox(id string) (BoundingBox, bool) {
	o, ok := s.objects[id]
	if !ok {
		return BoundingBox{}, false
	}
	switch {
	case o.Box != nil && o.Box.IsValid():
		return *o.Box, true
	case o.Point != nil && o.Point.IsFinite():
		return BoundingBox{Min: *o.Point, Max: *o.Point}, true
	}
	return BoundingBox{}, false
}

// Curve implements Querier.
func (s *Snapshot) Curve(id string) (CurveInfo, bool) {
	o, ok := s.objects[id]
	if !ok || o.Curve == nil {
		return CurveInfo{}, false
	}
	return *o.Curve, true
}

// Surface implements Querier.
func (s *Snapshot) Surface(id string) (SurfaceInfo, bool) {
	o, ok := s.objects[id]
	if !ok || o.Surface == nil {
		return SurfaceInfo{}, false
	}
	return *o.Surface, true
}

// Point implements Querier.
func (s *Snapshot) Point(id string) (Vec3, bool) {
	o, ok := s.objects[id]
	if !ok || o.Point == nil {
		return Vec3{}, false
	}
	return *o.Point, true
}
