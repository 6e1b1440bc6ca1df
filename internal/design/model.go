// Package design defines the design-memory data model: captured commands,
// their geometry snapshots and transformation records, workflows, the
// aggregate analysis, and the serializable DesignMemory document.
//
// It also owns the relationship classifier: the static tables that map a
// command kind to a category and workflow stage, and the design-intent
// phrasing derived from them.
package design

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/HendryAvila/designmem/internal/geom"
)

// ─── Geometry ───────────────────────────────────────────────────────────────

// BoundingBoxData is the serialized bounding box with derived fields.
type BoundingBoxData struct {
	Min        geom.Vec3       `json:"min"`
	Max        geom.Vec3       `json:"max"`
	Center     geom.Vec3       `json:"center"`
	Dimensions geom.Dimensions `json:"dimensions"`
}

// NewBoundingBoxData derives center and dimensions from a box.
func NewBoundingBoxData(b geom.BoundingBox) BoundingBoxData {
	return BoundingBoxData{
		Min:        b.Min,
		Max:        b.Max,
		Center:     b.Center(),
		Dimensions: b.Dimensions(),
	}
}

// Box returns the plain bounding box.
func (d BoundingBoxData) Box() geom.BoundingBox {
	return geom.BoundingBox{Min: d.Min, Max: d.Max}
}

// GeometrySnapshot is the recorded state of one object after a command.
type GeometrySnapshot struct {
	ID          string          `json:"id"`
	Type        geom.ObjectType `json:"type"`
	BoundingBox BoundingBoxData `json:"boundingBox"`
	Properties  Attributes      `json:"properties"`
	Points      []geom.Vec3     `json:"points"`
}

func (g GeometrySnapshot) clone() GeometrySnapshot {
	g.Properties = g.Properties.Clone()
	if g.Properties == nil {
		g.Properties = Attributes{}
	}
	g.Points = append([]geom.Vec3{}, g.Points...)
	return g
}

// TransformationInfo is the per-object delta attributed to a transform or
// duplication command. Duplicates have no BeforeCenter; the first copy of
// a pattern has no TranslationVector.
type TransformationInfo struct {
	ObjectID            string     `json:"objectId"`
	Type                string     `json:"type"`
	BeforeCenter        *geom.Vec3 `json:"beforeCenter,omitempty"`
	AfterCenter         geom.Vec3  `json:"afterCenter"`
	TranslationVector   *geom.Vec3 `json:"translationVector,omitempty"`
	TranslationDistance float64    `json:"translationDistance"`
	Scale               geom.Vec3  `json:"scale"`
	CopyIndex           int        `json:"copyIndex,omitempty"`
}

// UnitScale is the default per-axis scale factor.
var UnitScale = geom.V(1, 1, 1)

func (t TransformationInfo) clone() TransformationInfo {
	if t.BeforeCenter != nil {
		v := *t.BeforeCenter
		t.BeforeCenter = &v
	}
	if t.TranslationVector != nil {
		v := *t.TranslationVector
		t.TranslationVector = &v
	}
	return t
}

// ─── Commands ───────────────────────────────────────────────────────────────

// Relationships carries the classification and inferred graph edges.
type Relationships struct {
	Category           Category `json:"category"`
	WorkflowStage      Stage    `json:"workflowStage"`
	DesignIntent       string   `json:"designIntent"`
	DependsOn          []string `json:"dependsOn"`
	TransformsGeometry []string `json:"transformsGeometry"`
}

// Command is one captured, enriched CAD operation. Once appended to a
// session log it is never mutated; callers receive deep copies.
type Command struct {
	Sequence        int                  `json:"sequence"`
	Name            string               `json:"command"`
	Timestamp       time.Time            `json:"timestamp"`
	Parameters      Attributes           `json:"parameters"`
	Semantic        Attributes           `json:"semanticAttributes"`
	Intent          string               `json:"intent,omitempty"`
	Relationships   Relationships        `json:"relationships"`
	Geometry        []GeometrySnapshot   `json:"geometry"`
	Transformations []TransformationInfo `json:"transformations"`
}

// NodeID returns the dependency-graph id of a command.
func NodeID(name string, sequence int) string {
	return fmt.Sprintf("%s_%d", name, sequence)
}

// NodeID returns the dependency-graph id, "name_sequence".
func (c Command) NodeID() string { return NodeID(c.Name, c.Sequence) }

// Kind returns the parsed command kind.
func (c Command) Kind() CommandKind { return ParseKind(c.Name) }

// Clone returns a deep copy. List fields of the copy are never nil, so
// an empty list encodes as [] rather than null.
func (c Command) Clone() Command {
	c.Parameters = c.Parameters.Clone()
	c.Semantic = c.Semantic.Clone()
	c.Relationships.DependsOn = append([]string{}, c.Relationships.DependsOn...)
	c.Relationships.TransformsGeometry = append([]string{}, c.Relationships.TransformsGeometry...)
	g := make([]GeometrySnapshot, len(c.Geometry))
	for i, s := range c.Geometry {
		g[i] = s.clone()
	}
	c.Geometry = g
	tr := make([]TransformationInfo, len(c.Transformations))
	for i, t := range c.Transformations {
		tr[i] = t.clone()
	}
	c.Transformations = tr
	return c
}

// ─── Workflows & analysis ───────────────────────────────────────────────────

// Workflow types.
const (
	WorkflowCreationSequence  = "creation_sequence"
	WorkflowModificationChain = "modification_chain"
	WorkflowBooleanOperation  = "boolean_operation"
)

// Workflow is a higher-level grouping of command nodes.
type Workflow struct {
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Members      []string `json:"members"`
	DesignIntent string   `json:"designIntent"`
}

// Analysis is the aggregate computed at finalize.
type Analysis struct {
	CommandCount           int              `json:"commandCount"`
	CategoryHistogram      map[Category]int `json:"categoryHistogram"`
	StageHistogram         map[Stage]int    `json:"stageHistogram"`
	LongestDependencyChain []string         `json:"longestDependencyChain"`
	Workflows              []Workflow       `json:"workflows"`
}

// ─── Document ───────────────────────────────────────────────────────────────

// DesignMemory is the serializable record of one capture session.
type DesignMemory struct {
	SessionID           string    `json:"sessionId"`
	CreatedAt           time.Time `json:"createdAt"`
	Commands            []Command `json:"commands"`
	OriginalGeometryIDs []string  `json:"originalGeometryIds"`
	Analysis            *Analysis `json:"analysis,omitempty"`
}

// ToJSON renders the document indented, ready for persistence.
func (m *DesignMemory) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FromJSON parses a document produced by ToJSON.
func FromJSON(data []byte) (*DesignMemory, error) {
	var m DesignMemory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing design memory: %w", err)
	}
	if m.SessionID == "" {
		return nil, fmt.Errorf("parsing design memory: missing sessionId")
	}
	return &m, nil
}
