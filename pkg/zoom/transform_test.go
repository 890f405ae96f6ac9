package zoom

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{K: 2, X: 10, Y: -5}
	p := vec.Vec2{X: 3, Y: 4}

	got := tr.Apply(p)
	if !near(got.X, 16) || !near(got.Y, 3) {
		t.Errorf("Apply(%v) = %v, want {16 3}", p, got)
	}
	back := tr.Invert(got)
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("Invert(Apply(p)) = %v, want %v", back, p)
	}
}

func TestTransformTranslateIsScaled(t *testing.T) {
	tr := Transform{K: 4, X: 0, Y: 0}.Translate(5, -2)
	if tr.X != 20 || tr.Y != -8 {
		t.Errorf("Translate(5,-2) at K=4 = %v, want X=20 Y=-8", tr)
	}
}

func TestComposeAndInverse(t *testing.T) {
	a := Transform{K: 2, X: 7, Y: 1}
	b := Transform{K: 0.5, X: -3, Y: 9}
	p := vec.Vec2{X: 11, Y: -4}

	composed := Compose(a, b).Apply(p)
	stepwise := a.Apply(b.Apply(p))
	if !near(composed.X, stepwise.X) || !near(composed.Y, stepwise.Y) {
		t.Errorf("Compose(a,b).Apply = %v, want %v", composed, stepwise)
	}

	id := Compose(a, a.Inverse())
	if !near(id.K, 1) || !near(id.X, 0) || !near(id.Y, 0) {
		t.Errorf("Compose(a, a.Inverse()) = %v, want identity", id)
	}
}

func TestScaleByFixedPoint(t *testing.T) {
	tests := []struct {
		name  string
		start Transform
		k     float64
		focal vec.Vec2
	}{
		{"from identity", Identity, 2, vec.Vec2{X: 100, Y: 50}},
		{"already zoomed", Transform{K: 3, X: -40, Y: 12}, 1.5, vec.Vec2{X: 250, Y: 200}},
		{"zoom out", Transform{K: 5, X: -900, Y: -400}, 0.25, vec.Vec2{X: 60, Y: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleBy(tt.start, tt.k, tt.focal)
			if !near(got.K, tt.start.K*tt.k) {
				t.Errorf("K = %v, want %v", got.K, tt.start.K*tt.k)
			}
			before := tt.start.Invert(tt.focal)
			after := got.Invert(tt.focal)
			if !near(before.X, after.X) || !near(before.Y, after.Y) {
				t.Errorf("focal moved: %v -> %v", before, after)
			}
		})
	}
}

func TestRescaleX(t *testing.T) {
	base, err := scale.New(scale.Domain{Lo: 0, Hi: 100}, scale.Range{Lo: 30, Hi: 470})
	if err != nil {
		t.Fatal(err)
	}

	same, err := Identity.RescaleX(base)
	if err != nil {
		t.Fatalf("RescaleX(identity) error = %v", err)
	}
	if !same.Domain().ApproxEqual(base.Domain(), 1e-12) {
		t.Errorf("identity rescale domain = %v, want %v", same.Domain(), base.Domain())
	}

	// zoom 2x around the range centre shows the middle half of the domain
	zoomed, err := ScaleBy(Identity, 2, vec.Vec2{X: 250}).RescaleX(base)
	if err != nil {
		t.Fatal(err)
	}
	if want := (scale.Domain{Lo: 25, Hi: 75}); !zoomed.Domain().ApproxEqual(want, 1e-12) {
		t.Errorf("zoomed domain = %v, want %v", zoomed.Domain(), want)
	}
	if base.Domain() != (scale.Domain{Lo: 0, Hi: 100}) {
		t.Errorf("base scale mutated: %v", base.Domain())
	}
}

func TestRescaleYInvertedRange(t *testing.T) {
	base, err := scale.New(scale.Domain{Lo: 0, Hi: 10}, scale.Range{Lo: 370, Hi: 30})
	if err != nil {
		t.Fatal(err)
	}
	// pan content down by 34px: the visible window moves toward higher values
	r, err := Transform{K: 1, Y: 34}.RescaleY(base)
	if err != nil {
		t.Fatal(err)
	}
	if want := (scale.Domain{Lo: 1, Hi: 11}); !r.Domain().ApproxEqual(want, 1e-12) {
		t.Errorf("RescaleY domain = %v, want %v", r.Domain(), want)
	}
}

func TestRescaleInvalidTransform(t *testing.T) {
	base, _ := scale.New(scale.Domain{Lo: 0, Hi: 1}, scale.Range{Lo: 0, Hi: 100})
	_, err := Transform{}.RescaleX(base)
	if !errors.Is(err, errors.ErrCodeInvalidTransform) {
		t.Errorf("RescaleX(zero transform) error = %v, want INVALID_TRANSFORM", err)
	}
}
