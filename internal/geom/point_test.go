package geom

import "testing"

func TestPointArithmetic(t *testing.T) {
	p := Pt(1, 2)
	q := Pt(4, 6)

	if got, want := p.Add(q), Pt(5, 8); got != want {
		t.Errorf("Add() = %v, want %v", got, want)
	}
	if got, want := q.Sub(p), Pt(3, 4); got != want {
		t.Errorf("Sub() = %v, want %v", got, want)
	}
	if got, want := p.Mul(3), Pt(3, 6); got != want {
		t.Errorf("Mul() = %v, want %v", got, want)
	}
	if got, want := p.Lerp(q, 0.5), Pt(2.5, 4); got != want {
		t.Errorf("Lerp(0.5) = %v, want %v", got, want)
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
	src := []Point{Pt(0, 0), Pt(1, 1)}
	dst := Clone(src)
	dst[0] = Pt(9, 9)
	if src[0] != Pt(0, 0) {
		t.Errorf("Clone shares storage: src[0] = %v", src[0])
	}
}
