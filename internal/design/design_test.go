package design

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/designmem/internal/geom"
)

// ─── Classification ─────────────────────────────────────────────────────────

func TestClassify_Tables(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		stage    Stage
	}{
		{"Box", CategoryPrimitive, StageCreation},
		{"Circle", CategoryCurve, StageCreation},
		{"Loft", CategorySurface, StageCreation},
		{"Move", CategoryTransformation, StageModification},
		{"Array", CategoryTransformation, StageModification},
		{"BooleanUnion", CategoryBoolean, StageModification},
		{"Trim", CategoryEditing, StageModification},
		{"Fillet", CategoryEditing, StageFinishing},
		{"Group", CategoryEditing, StageFinishing},
		{"Distance", CategoryAnalysis, StageAnalysis},
		{"Teleport", CategoryOther, StageOther},
		{"box", CategoryOther, StageOther},
		{"", CategoryOther, StageOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := ClassifyName(tt.name)
			if c != tt.category || s != tt.stage {
				t.Errorf("ClassifyName(%q) = (%s, %s), want (%s, %s)", tt.name, c, s, tt.category, tt.stage)
			}
		})
	}
}

func TestClassify_DeterministicForEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		c1, s1 := Classify(k)
		c2, s2 := Classify(ParseKind(k.String()))
		if c1 != c2 || s1 != s2 {
			t.Errorf("%s: classification not stable: (%s,%s) vs (%s,%s)", k, c1, s1, c2, s2)
		}
		if c1 == CategoryOther {
			t.Errorf("%s: known kind classified as other", k)
		}
	}
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if ParseKind("Nope") != CmdUnknown {
		t.Error("unknown name should parse to CmdUnknown")
	}
}

func TestDesignIntent_Phrasing(t *testing.T) {
	tests := []struct {
		stage Stage
		cat   Category
		name  string
		prior int
		want  string
	}{
		{StageCreation, CategoryPrimitive, "Box", 0, "Starting the design with a Box primitive"},
		{StageCreation, CategoryCurve, "Circle", 2, "Expanding the design with a Circle curve"},
		{StageModification, CategoryTransformation, "Move", 1, "Modifying geometry with Move"},
		{StageFinishing, CategoryEditing, "Fillet", 1, "Finishing geometry with Fillet"},
		{StageAnalysis, CategoryAnalysis, "Distance", 1, "Analyzing geometry with Distance"},
		{StageOther, CategoryOther, "Teleport", 0, "Performing Teleport"},
	}
	for _, tt := range tests {
		if got := DesignIntent(tt.stage, tt.cat, tt.name, tt.prior); got != tt.want {
			t.Errorf("DesignIntent(%s, %s, %s, %d) = %q, want %q", tt.stage, tt.cat, tt.name, tt.prior, got, tt.want)
		}
	}
}

func TestDefaultParameters(t *testing.T) {
	if v, _ := DefaultParameters(CmdBox, "Box")["type"].AsString(); v != "rectangular" {
		t.Errorf("Box type = %q", v)
	}
	if v, _ := DefaultParameters(CmdUnknown, "SubD")["command_type"].AsString(); v != "subd" {
		t.Errorf("fallback command_type = %q", v)
	}
}

// ─── Value ──────────────────────────────────────────────────────────────────

func TestValue_JSONRoundTrip(t *testing.T) {
	in := Attributes{
		"n":      Number(0.1 + 0.2),
		"big":    Number(1e300),
		"flag":   Bool(true),
		"s":      String("corner"),
		"center": Vector(geom.V(5, 5, 2.5)),
		"xyzmap": Map(Attributes{"x": Number(1), "y": Number(2), "z": Number(3)}),
		"list":   List(Int(1), Vector(geom.V(-1, 0, 1e-9)), List()),
		"nested": Map(Attributes{"inner": Map(Attributes{})}),
		"none":   {},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Attributes
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !in.Equal(out) {
		t.Errorf("round trip mismatch:\n in: %v\nout: %v\njson: %s", in, out, data)
	}
	if out["xyzmap"].Kind() != KindMap {
		t.Errorf("map with x/y/z keys decoded as %s, want map", out["xyzmap"].Kind())
	}
	if out["center"].Kind() != KindVector {
		t.Errorf("vector decoded as %s", out["center"].Kind())
	}
}

func TestValue_NonFiniteRejected(t *testing.T) {
	var zero float64
	if _, err := json.Marshal(Number(1 / zero)); err == nil {
		t.Error("expected error for +Inf")
	}
}

func TestValue_CloneIsDeep(t *testing.T) {
	inner := Attributes{"a": Number(1)}
	v := Map(inner)
	inner["a"] = Number(2)
	m, _ := v.AsMap()
	if n, _ := m.Number("a"); n != 1 {
		t.Errorf("Map did not copy its input: a = %v", n)
	}
	m["a"] = Number(3)
	m2, _ := v.AsMap()
	if n, _ := m2.Number("a"); n != 1 {
		t.Errorf("AsMap leaked internal state: a = %v", n)
	}
}

// ─── Document ───────────────────────────────────────────────────────────────

func TestDesignMemory_RoundTrip(t *testing.T) {
	before := geom.V(0, 0, 0)
	vec := geom.V(3, 4, 0)
	ts := time.Date(2026, 3, 1, 12, 30, 0, 123456789, time.UTC)
	box := geom.Box(geom.V(0, 0, 0), geom.V(10, 10, 5))

	doc := &DesignMemory{
		SessionID: "8a4c9a0e-2b1f-4b9e-9a47-8c7d0f0b1c2d",
		CreatedAt: ts,
		Commands: []Command{
			{
				Sequence:   1,
				Name:       "Box",
				Timestamp:  ts,
				Parameters: Attributes{"type": String("rectangular")},
				Semantic:   Attributes{"center": Vector(box.Center())},
				Relationships: Relationships{
					Category:      CategoryPrimitive,
					WorkflowStage: StageCreation,
					DesignIntent:  "Starting the design with a Box primitive",
					DependsOn:     []string{},
				},
				Geometry: []GeometrySnapshot{{
					ID:          "obj-1",
					Type:        geom.TypeBrep,
					BoundingBox: NewBoundingBoxData(box),
					Properties:  Attributes{"volume": Number(500)},
					Points:      box.Corners(),
				}},
			},
			{
				Sequence:  2,
				Name:      "Move",
				Timestamp: ts.Add(time.Second),
				Relationships: Relationships{
					Category:           CategoryTransformation,
					WorkflowStage:      StageModification,
					DependsOn:          []string{"Box_1"},
					TransformsGeometry: []string{"obj-1"},
				},
				Transformations: []TransformationInfo{{
					ObjectID:            "obj-1",
					Type:                "Move",
					BeforeCenter:        &before,
					AfterCenter:         vec,
					TranslationVector:   &vec,
					TranslationDistance: 5,
					Scale:               UnitScale,
				}},
			},
		},
		OriginalGeometryIDs: []string{"obj-1"},
		Analysis: &Analysis{
			CommandCount:           2,
			CategoryHistogram:      map[Category]int{CategoryPrimitive: 1, CategoryTransformation: 1},
			StageHistogram:         map[Stage]int{StageCreation: 1, StageModification: 1},
			LongestDependencyChain: []string{"Move_2", "Box_1"},
			Workflows: []Workflow{{
				Type:         WorkflowModificationChain,
				Description:  "Creation followed by 1 modifications",
				Members:      []string{"Box_1", "Move_2"},
				DesignIntent: "Iterative refinement: Box → Move",
			}},
		},
	}

	data, err := doc.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	opts := cmp.Options{
		cmp.Comparer(func(a, b Attributes) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(doc, got, opts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromJSON_RequiresSessionID(t *testing.T) {
	if _, err := FromJSON([]byte(`{"commands":[]}`)); err == nil {
		t.Error("expected error for missing sessionId")
	}
	if _, err := FromJSON([]byte(`{`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestCommand_CloneIsDeep(t *testing.T) {
	v := geom.V(1, 2, 3)
	c := Command{
		Name:            "Move",
		Sequence:        3,
		Relationships:   Relationships{DependsOn: []string{"Box_1"}},
		Transformations: []TransformationInfo{{TranslationVector: &v}},
	}
	cp := c.Clone()
	cp.Relationships.DependsOn[0] = "X"
	cp.Transformations[0].TranslationVector.X = 99

	if c.Relationships.DependsOn[0] != "Box_1" {
		t.Error("DependsOn shared with clone")
	}
	if c.Transformations[0].TranslationVector.X != 1 {
		t.Error("TranslationVector shared with clone")
	}
	if c.NodeID() != "Move_3" {
		t.Errorf("NodeID = %q, want Move_3", c.NodeID())
	}
}
