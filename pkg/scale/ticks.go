package scale

import (
	"math"
	"strconv"
)

// DefaultTickCount is the tick count hint used by axes.
const DefaultTickCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickSpec returns integer tick indices i1..i2 and an increment inc.
// A negative inc means ticks are (i / -inc), which keeps fractional steps
// exact; otherwise ticks are (i * inc).
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// Ticks returns approximately count evenly spaced, human-friendly values
// within the domain, in ascending order.
func (s Linear) Ticks(count int) []float64 {
	if count <= 0 {
		return nil
	}
	start, stop := s.domain.Lo, s.domain.Hi
	if start == stop {
		return []float64{start}
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}

	n := int(i2-i1) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		if inc < 0 {
			ticks[i] = (i1 + float64(i)) / -inc
		} else {
			ticks[i] = (i1 + float64(i)) * inc
		}
	}
	return ticks
}

// TickStep returns the distance between consecutive ticks for count.
func (s Linear) TickStep(count int) float64 {
	if count <= 0 {
		return 0
	}
	_, _, inc := tickSpec(s.domain.Lo, s.domain.Hi, float64(count))
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}

// TickFormat returns a formatter whose precision matches the tick step for
// count, so labels show exactly as many decimals as the ticks need.
func (s Linear) TickFormat(count int) func(float64) string {
	step := s.TickStep(count)
	prec := 0
	if step > 0 {
		for ; prec < 15; prec++ {
			r := step * math.Pow(10, float64(prec))
			if math.Abs(r-math.Round(r)) <= 1e-6*math.Max(1, r) {
				break
			}
		}
	}
	return func(v float64) string {
		out := strconv.FormatFloat(v, 'f', prec, 64)
		if out == "-0" || (len(out) > 2 && out[:2] == "-0" && isZero(out[1:])) {
			return out[1:]
		}
		return out
	}
}

func isZero(s string) bool {
	for _, r := range s {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
