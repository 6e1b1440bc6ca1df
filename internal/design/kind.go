package design

import (
	"fmt"
	"strings"
)

// --- Command kind enum ---

// CommandKind enumerates the CAD commands the engine understands. Adding a
// kind means adding a case to Classify and to the semantic extractor.
type CommandKind int

const (
	CmdUnknown CommandKind = iota

	// primitives
	CmdBox
	CmdSphere
	CmdCylinder
	CmdCone
	CmdPlane

	// curves
	CmdLine
	CmdPolyline
	CmdRectangle
	CmdCircle
	CmdArc
	CmdCurve

	// surfaces
	CmdExtrude
	CmdLoft
	CmdSweep1
	CmdRevolve

	// transformations
	CmdMove
	CmdCopy
	CmdRotate
	CmdScale
	CmdMirror
	CmdArray

	// booleans
	CmdBooleanUnion
	CmdBooleanDifference
	CmdBooleanIntersection

	// editing
	CmdFillet
	CmdChamfer
	CmdTrim
	CmdSplit
	CmdJoin
	CmdDelete
	CmdGroup
	CmdUngroup

	// analysis
	CmdDistance
	CmdLength
	CmdArea
	CmdVolume
)

var kindNames = map[CommandKind]string{
	CmdBox:                 "Box",
	CmdSphere:              "Sphere",
	CmdCylinder:            "Cylinder",
	CmdCone:                "Cone",
	CmdPlane:               "Plane",
	CmdLine:                "Line",
	CmdPolyline:            "Polyline",
	CmdRectangle:           "Rectangle",
	CmdCircle:              "Circle",
	CmdArc:                 "Arc",
	CmdCurve:               "Curve",
	CmdExtrude:             "Extrude",
	CmdLoft:                "Loft",
	CmdSweep1:              "Sweep1",
	CmdRevolve:             "Revolve",
	CmdMove:                "Move",
	CmdCopy:                "Copy",
	CmdRotate:              "Rotate",
	CmdScale:               "Scale",
	CmdMirror:              "Mirror",
	CmdArray:               "Array",
	CmdBooleanUnion:        "BooleanUnion",
	CmdBooleanDifference:   "BooleanDifference",
	CmdBooleanIntersection: "BooleanIntersection",
	CmdFillet:              "Fillet",
	CmdChamfer:             "Chamfer",
	CmdTrim:                "Trim",
	CmdSplit:               "Split",
	CmdJoin:                "Join",
	CmdDelete:              "Delete",
	CmdGroup:               "Group",
	CmdUngroup:             "Ungroup",
	CmdDistance:            "Distance",
	CmdLength:              "Length",
	CmdArea:                "Area",
	CmdVolume:              "Volume",
}

var kindsByName = func() map[string]CommandKind {
	m := make(map[string]CommandKind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

// ParseKind maps a host command name to its kind. Matching is exact, as
// host command names are case-stable. Unrecognized names yield CmdUnknown.
func ParseKind(name string) CommandKind {
	return kindsByName[name]
}

// String returns the canonical host command name.
func (k CommandKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Kinds returns every known kind in declaration order.
func Kinds() []CommandKind {
	out := make([]CommandKind, 0, len(kindNames))
	for k := CmdBox; k <= CmdVolume; k++ {
		out = append(out, k)
	}
	return out
}

// IsDuplication reports whether k creates displaced copies of existing
// objects rather than moving them.
func (k CommandKind) IsDuplication() bool {
	return k == CmdCopy || k == CmdArray
}

// IsBoolean reports whether k combines solids.
func (k CommandKind) IsBoolean() bool {
	return k == CmdBooleanUnion || k == CmdBooleanDifference || k == CmdBooleanIntersection
}

// --- Category / stage enums ---

// Category is the geometric-domain classification of a command.
type Category string

const (
	CategoryPrimitive      Category = "primitive"
	CategoryCurve          Category = "curve"
	CategorySurface        Category = "surface"
	CategoryTransformation Category = "transformation"
	CategoryBoolean        Category = "boolean"
	CategoryEditing        Category = "editing"
	CategoryAnalysis       Category = "analysis"
	CategoryOther          Category = "other"
)

// Stage is the coarse workflow phase of a command.
type Stage string

const (
	StageCreation     Stage = "creation"
	StageModification Stage = "modification"
	StageFinishing    Stage = "finishing"
	StageAnalysis     Stage = "analysis"
	StageOther        Stage = "other"
)

// Categories lists every category, in display order.
func Categories() []Category {
	return []Category{
		CategoryPrimitive, CategoryCurve, CategorySurface, CategoryTransformation,
		CategoryBoolean, CategoryEditing, CategoryAnalysis, CategoryOther,
	}
}

// Stages lists every stage, in display order.
func Stages() []Stage {
	return []Stage{StageCreation, StageModification, StageFinishing, StageAnalysis, StageOther}
}

// Classify assigns exactly one category and one stage to a kind. It is a
// pure function of the kind.
func Classify(k CommandKind) (Category, Stage) {
	switch k {
	case CmdBox, CmdSphere, CmdCylinder, CmdCone, CmdPlane:
		return CategoryPrimitive, StageCreation
	case CmdLine, CmdPolyline, CmdRectangle, CmdCircle, CmdArc, CmdCurve:
		return CategoryCurve, StageCreation
	case CmdExtrude, CmdLoft, CmdSweep1, CmdRevolve:
		return CategorySurface, StageCreation
	case CmdMove, CmdCopy, CmdRotate, CmdScale, CmdMirror, CmdArray:
		return CategoryTransformation, StageModification
	case CmdBooleanUnion, CmdBooleanDifference, CmdBooleanIntersection:
		return CategoryBoolean, StageModification
	case CmdTrim, CmdSplit, CmdJoin, CmdDelete:
		return CategoryEditing, StageModification
	case CmdFillet, CmdChamfer, CmdGroup, CmdUngroup:
		return CategoryEditing, StageFinishing
	case CmdDistance, CmdLength, CmdArea, CmdVolume:
		return CategoryAnalysis, StageAnalysis
	case CmdUnknown:
		return CategoryOther, StageOther
	}
	return CategoryOther, StageOther
}

// ClassifyName classifies a raw host command name.
func ClassifyName(name string) (Category, Stage) {
	return Classify(ParseKind(name))
}

// DesignIntent phrases what a command contributes to the design.
// priorCreations is the number of creation-stage commands recorded
// earlier in the same session.
func DesignIntent(stage Stage, category Category, name string, priorCreations int) string {
	switch stage {
	case StageCreation:
		if priorCreations == 0 {
			return fmt.Sprintf("Starting the design with a %s %s", name, categoryNoun(category))
		}
		return fmt.Sprintf("Expanding the design with a %s %s", name, categoryNoun(category))
	case StageModification:
		return fmt.Sprintf("Modifying geometry with %s", name)
	case StageFinishing:
		return fmt.Sprintf("Finishing geometry with %s", name)
	case StageAnalysis:
		return fmt.Sprintf("Analyzing geometry with %s", name)
	}
	return fmt.Sprintf("Performing %s", name)
}

func categoryNoun(c Category) string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryCurve:
		return "curve"
	case CategorySurface:
		return "surface"
	}
	return "element"
}

// DefaultParameters returns the baseline raw parameters recorded for a
// command kind. Host-supplied parameters are layered on top.
func DefaultParameters(k CommandKind, name string) Attributes {
	switch k {
	case CmdBox:
		return Attributes{"type": String("rectangular")}
	case CmdSphere:
		return Attributes{"type": String("solid")}
	case CmdMove:
		return Attributes{"operation": String("translation")}
	case CmdScale:
		return Attributes{"operation": String("uniform_scale")}
	}
	return Attributes{"command_type": String(strings.ToLower(name))}
}

