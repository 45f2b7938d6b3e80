// Package slide defines the structured tree extracted from one rendered
// HTML slide and consumed by the deck assembler.
package slide

import "github.com/alnah/go-html2pptx/internal/style"

// Role is the semantic kind of an extracted element. The set is closed:
// it mirrors the fixed slide template.
type Role int

const (
	RoleGeneric Role = iota
	RoleTitle
	RoleSubtitle
	RoleKeywordTitle
	RoleKeywordDesc
	RoleIcon
	RoleBackground
	RoleCode
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleSubtitle:
		return "subtitle"
	case RoleKeywordTitle:
		return "keyword-title"
	case RoleKeywordDesc:
		return "keyword-desc"
	case RoleIcon:
		return "icon"
	case RoleBackground:
		return "background"
	case RoleCode:
		return "code"
	default:
		return "generic"
	}
}

// Rasterized reports whether elements of this role are captured as a
// snapshot image instead of being rebuilt as text.
func (r Role) Rasterized() bool {
	switch r {
	case RoleIcon, RoleBackground, RoleCode:
		return true
	}
	return false
}

// Geometry is a box in CSS pixels relative to the slide's top-left corner.
type Geometry struct {
	X, Y, Width, Height float64
}

// Empty reports whether the box has no area.
func (g Geometry) Empty() bool {
	return g.Width <= 0 || g.Height <= 0
}

// Offset returns g translated by (-dx, -dy).
func (g Geometry) Offset(dx, dy float64) Geometry {
	return Geometry{X: g.X - dx, Y: g.Y - dy, Width: g.Width, Height: g.Height}
}

// ElementData is one node of the structured tree. Children geometry is
// slide-relative like its parent's, not parent-relative.
type ElementData struct {
	Role         Role
	Tag          string
	Classes      []string
	Text         string
	Geometry     Geometry
	Font         style.FontSpec
	Box          style.BoxSpec
	Align        style.Align
	SnapshotPath string
	Children     []*ElementData
}

// HasSnapshot reports whether the node is drawn from a raster snapshot.
func (e *ElementData) HasSnapshot() bool {
	return e != nil && e.SnapshotPath != ""
}

// Walk visits e and its descendants depth-first in document order.
func (e *ElementData) Walk(fn func(*ElementData)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// KeywordItem is one repeating ".keyword-item" block. Frame carries the
// container's own box; any field may be nil when absent in the source.
type KeywordItem struct {
	Frame       *ElementData
	Icon        *ElementData
	Title       *ElementData
	Description *ElementData
}

// SlideData is the per-slide aggregate. Index is 0-based and follows the
// document order of the slide containers. Frame is the slide container's
// own box, used when backgrounds are drawn as shapes.
type SlideData struct {
	Index          int
	BackgroundPath string
	Frame          *ElementData
	Title          *ElementData
	Subtitle       *ElementData
	KeywordItems   []KeywordItem
	Content        []*ElementData
}
