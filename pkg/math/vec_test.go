package math

import (
	"math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := 5.0
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec2Mid(t *testing.T) {
	got := Vec2{-1, -1}.Mid(Vec2{1, 0})
	want := Vec2{0, -0.5}
	if got != want {
		t.Errorf("Vec2.Mid() = %v, want %v", got, want)
	}
}

func TestVec2Lerp(t *testing.T) {
	a := Vec2{-1, -1}
	b := Vec2{1, 1}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	if got := a.Lerp(b, 0.25); got != (Vec2{-0.5, -0.5}) {
		t.Errorf("Lerp(0.25) = %v, want (-0.5,-0.5)", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Vec3{}.Normalize() = %v, want zero", got)
	}
}

func TestVec3AddScaled(t *testing.T) {
	got := Vec3{1, 0, 0}.AddScaled(Vec3{0, 2, 0}, 0.5)
	want := Vec3{1, 1, 0}
	if got != want {
		t.Errorf("Vec3.AddScaled() = %v, want %v", got, want)
	}
}

func TestVec3Distance(t *testing.T) {
	got := Vec3{1, 2, 3}.Distance(Vec3{4, 6, 3})
	if got != 5 {
		t.Errorf("Vec3.Distance() = %v, want 5", got)
	}
}

func TestVec3Array32RoundTrip(t *testing.T) {
	v := Vec3{0.5, -2, 8}
	if got := Vec3FromArray32(v.Array32()); got != v {
		t.Errorf("Vec3FromArray32(Array32()) = %v, want %v", got, v)
	}
}
