// Package zoom provides pan/zoom transforms and one-dimensional zoom
// behaviors for chart axes.
//
// A [Transform] is an immutable value {K, X, Y}: a uniform scale factor K
// followed by a pixel translation (X, Y). Applying it to a point p gives
// p*K + (X, Y). Pan and zoom are never expressed by mutating a base scale;
// instead [Transform.RescaleX] and [Transform.RescaleY] derive a new
// scale.Linear whose domain is the inverse image of the pixel range.
//
// A [Behavior] holds the transform of one axis together with its scale
// extent and translate extent, and clamps every transition so the
// rescaled domain never leaves the configured bounds.
package zoom

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
)

// Transform is a composite pan/zoom transform.
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that leaves every point in place.
var Identity = Transform{K: 1}

// Valid reports whether t has a finite, positive scale factor and finite
// translation.
func (t Transform) Valid() bool {
	return t.K > 0 && !math.IsInf(t.K, 0) &&
		!math.IsNaN(t.X) && !math.IsInf(t.X, 0) &&
		!math.IsNaN(t.Y) && !math.IsInf(t.Y, 0)
}

// Scale multiplies the scale factor by k, keeping the translation.
func (t Transform) Scale(k float64) Transform {
	if k == 1 {
		return t
	}
	return Transform{K: t.K * k, X: t.X, Y: t.Y}
}

// Translate moves the transform by (dx, dy) in the transform's own units,
// so the pixel shift is (dx*K, dy*K).
func (t Transform) Translate(dx, dy float64) Transform {
	if dx == 0 && dy == 0 {
		return t
	}
	return Transform{K: t.K, X: t.X + t.K*dx, Y: t.Y + t.K*dy}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// ApplyX maps an x coordinate through the transform.
func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }

// ApplyY maps a y coordinate through the transform.
func (t Transform) ApplyY(y float64) float64 { return y*t.K + t.Y }

// Invert maps a transformed point back to its untransformed position.
func (t Transform) Invert(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// InvertX maps a transformed x coordinate back.
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }

// InvertY maps a transformed y coordinate back.
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	return Transform{K: 1 / t.K, X: -t.X / t.K, Y: -t.Y / t.K}
}

// Equal compares two transforms by value.
func (t Transform) Equal(o Transform) bool {
	return t.K == o.K && t.X == o.X && t.Y == o.Y
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Compose returns the transform equivalent to applying b first, then a.
func Compose(a, b Transform) Transform {
	return Transform{K: a.K * b.K, X: a.K*b.X + a.X, Y: a.K*b.Y + a.Y}
}

// ScaleBy scales t by k around a fixed pixel point: the point under focal
// maps to the same untransformed position before and after.
func ScaleBy(t Transform, k float64, focal vec.Vec2) Transform {
	return Transform{
		K: t.K * k,
		X: focal.X - (focal.X-t.X)*k,
		Y: focal.Y - (focal.Y-t.Y)*k,
	}
}

// TranslateBy pans t by (dx, dy); see Transform.Translate.
func TranslateBy(t Transform, dx, dy float64) Transform {
	return t.Translate(dx, dy)
}

// RescaleX returns a copy of s whose domain is the inverse image of s's
// pixel range under the x component of t.
func (t Transform) RescaleX(s scale.Linear) (scale.Linear, error) {
	if !t.Valid() {
		return scale.Linear{}, errors.New(errors.ErrCodeInvalidTransform, "cannot rescale with %s", t)
	}
	if t.K == 1 && t.X == 0 {
		return s, nil
	}
	r := s.Range()
	d := scale.Domain{Lo: s.Invert(t.InvertX(r.Lo)), Hi: s.Invert(t.InvertX(r.Hi))}
	return s.WithDomain(d)
}

// RescaleY returns a copy of s whose domain is the inverse image of s's
// pixel range under the y component of t.
func (t Transform) RescaleY(s scale.Linear) (scale.Linear, error) {
	if !t.Valid() {
		return scale.Linear{}, errors.New(errors.ErrCodeInvalidTransform, "cannot rescale with %s", t)
	}
	if t.K == 1 && t.Y == 0 {
		return s, nil
	}
	r := s.Range()
	d := scale.Domain{Lo: s.Invert(t.InvertY(r.Lo)), Hi: s.Invert(t.InvertY(r.Hi))}
	return s.WithDomain(d)
}
