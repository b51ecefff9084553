// Package geometry holds the coordinate math for comment pins and the
// floating composer/popover cards: anchor capture at creation time and
// viewport clamping whenever a card's measured size changes.
package geometry

// Point is a 2D coordinate in either viewport (screen) or surface
// (scene content box) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a measured width/height pair.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is an axis-aligned rectangle, origin at the top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Anchor is the pair of coordinates captured once when a comment is
// placed: the raw viewport position for card placement and the position
// relative to the commentable surface for the persistent pin marker.
// Anchors are never recomputed after capture.
type Anchor struct {
	Viewport Point `json:"viewport"`
	Surface  Point `json:"surface"`
}

// CaptureAnchor records both coordinate spaces for a pointer event at
// client, given the bounding rect of the nearest commentable surface.
func CaptureAnchor(client Point, surface Rect) Anchor {
	return Anchor{
		Viewport: client,
		Surface:  Point{X: client.X - surface.X, Y: client.Y - surface.Y},
	}
}

// PlaceCard positions a floating card near its anchor while keeping the
// whole card inside the viewport with the given margin. Both axes clamp
// independently. A card that would overflow the bottom edge flips above
// the anchor; a flipped card that would overflow the top edge clamps back
// down. Only the rendered placement moves, never the anchor itself.
func PlaceCard(anchor Point, card, viewport Size, margin, offset float64) Point {
	x := clamp(anchor.X+offset, margin, viewport.W-card.W-margin)

	y := anchor.Y + offset
	if y+card.H > viewport.H-margin {
		y = anchor.Y - offset - card.H
	}
	y = clamp(y, margin, viewport.H-card.H-margin)

	return Point{X: x, Y: y}
}

// Standard spacing for reply popovers; composers pass their own values.
const (
	PopoverMargin = 12
	PopoverOffset = 16
)

// PlacePopover is PlaceCard with the standard popover spacing.
func PlacePopover(anchor Point, card, viewport Size) Point {
	return PlaceCard(anchor, card, viewport, PopoverMargin, PopoverOffset)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		// Viewport smaller than the card; pin to the margin edge.
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
