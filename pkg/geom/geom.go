// Package geom computes cubic Bézier path descriptors for connection
// rendering. It has no dependencies on the rest of the editor: inputs are
// plain coordinates in unscaled graph space and outputs are path descriptors
// the render surface can materialize directly (SVG path data).
//
// The single primitive is [Curve], which builds the characteristic
// horizontal S-curve between two anchors. [Route] composes it into a
// multi-segment path through optional reroute waypoints.
package geom

import (
	"fmt"
	"math"
	"strings"
)

// Point is a coordinate pair in unscaled graph space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by the negation of q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Logical converts a screen-space coordinate into unscaled graph space by
// removing the canvas origin and dividing out the zoom factor.
func Logical(screen, origin Point, zoom float64) Point {
	if zoom == 0 {
		zoom = 1
	}
	return Point{
		X: (screen.X - origin.X) / zoom,
		Y: (screen.Y - origin.Y) / zoom,
	}
}

// Segment is a single cubic Bézier piece of a connection path.
type Segment struct {
	Start Point
	C1    Point
	C2    Point
	End   Point
}

// Curve builds the cubic Bézier segment between start and end. The control
// points sit at a horizontal offset of |end.X-start.X| * curvature from
// their endpoint and are vertically aligned with it, which produces the
// horizontal S-curve shape regardless of the vertical distance between the
// anchors.
func Curve(start, end Point, curvature float64) Segment {
	offset := math.Abs(end.X-start.X) * curvature
	return Segment{
		Start: start,
		C1:    Point{start.X + offset, start.Y},
		C2:    Point{end.X - offset, end.Y},
		End:   end,
	}
}

// At evaluates the segment at parameter t in [0,1].
func (s Segment) At(t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*u*s.Start.X + 3*u*u*t*s.C1.X + 3*u*t*t*s.C2.X + t*t*t*s.End.X,
		Y: u*u*u*s.Start.Y + 3*u*u*t*s.C1.Y + 3*u*t*t*s.C2.Y + t*t*t*s.End.Y,
	}
}

// SVG returns the segment as a standalone SVG path descriptor.
func (s Segment) SVG() string {
	return fmt.Sprintf("M %s C %s %s %s", coord(s.Start), coord(s.C1), coord(s.C2), coord(s.End))
}

// Path is an ordered chain of Bézier segments from a source anchor to a
// target anchor. Segment i ends where segment i+1 starts.
type Path struct {
	Segments []Segment
}

// SVG collapses the whole chain into one continuous path descriptor.
// This is the rendering form used when reroute points do not need to be
// individually addressable.
func (p Path) SVG() string {
	if len(p.Segments) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %s", coord(p.Segments[0].Start))
	for _, s := range p.Segments {
		fmt.Fprintf(&b, " C %s %s %s", coord(s.C1), coord(s.C2), coord(s.End))
	}
	return b.String()
}

// SVGSegments returns one independent path descriptor per segment. This is
// the rendering form used when each piece must remain addressable, for
// example while reroute points are being dragged or reinserted.
func (p Path) SVGSegments() []string {
	out := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.SVG()
	}
	return out
}

// Route chains curves from source through the given waypoints to target.
// A path with N waypoints has N+1 segments. The first and last segment use
// endCurvature; interior segments use midCurvature. With no waypoints the
// result is a single [Curve] with endCurvature.
func Route(source, target Point, points []Point, endCurvature, midCurvature float64) Path {
	if len(points) == 0 {
		return Path{Segments: []Segment{Curve(source, target, endCurvature)}}
	}
	stops := make([]Point, 0, len(points)+2)
	stops = append(stops, source)
	stops = append(stops, points...)
	stops = append(stops, target)

	segs := make([]Segment, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		c := midCurvature
		if i == 0 || i == len(stops)-2 {
			c = endCurvature
		}
		segs[i] = Curve(stops[i], stops[i+1], c)
	}
	return Path{Segments: segs}
}

// nearestSamples is the number of points each segment is sampled at when
// locating the segment closest to a coordinate.
const nearestSamples = 16

// NearestSegment returns the index of the segment whose sampled polyline
// passes closest to pt, or -1 for an empty path. Insertion of a reroute
// point after segment i places it at ordinal i in the points list.
func NearestSegment(p Path, pt Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, s := range p.Segments {
		for k := 0; k <= nearestSamples; k++ {
			d := s.At(float64(k) / nearestSamples).Dist(pt)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	return best
}

// Center returns the geometric center of the rectangle with origin (x, y)
// and the given width and height. Anchor centers are computed this way from
// the surface's reported bounding geometry.
func Center(x, y, w, h float64) Point {
	return Point{x + w/2, y + h/2}
}

func coord(p Point) string {
	return fmt.Sprintf("%s %s", num(p.X), num(p.Y))
}

// num formats a coordinate without trailing zeros so descriptors stay
// compact and stable across platforms.
func num(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
