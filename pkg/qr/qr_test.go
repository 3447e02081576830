package qr

import (
	"strings"
	"testing"

	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/vector"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"L", Low, false},
		{"m", Medium, false},
		{"Q", Quartile, false},
		{"H", High, false},
		{"", 0, true},
		{"X", 0, true},
		{"medium", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelOrder(t *testing.T) {
	if !(Low < Medium && Medium < Quartile && Quartile < High) {
		t.Error("levels must be ordered by strength")
	}
	if MinPrintLevel != Medium {
		t.Errorf("MinPrintLevel = %v, want M", MinPrintLevel)
	}
}

func TestEncodeDefaultCode(t *testing.T) {
	sym, err := NewEncoder().Encode("P0301", Medium)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	// Version 1 is 21 modules plus a 4-module quiet zone on each side.
	if sym.Size() != 29 {
		t.Errorf("Size() = %d, want 29", sym.Size())
	}
	if sym.Version() != 1 {
		t.Errorf("Version() = %d, want 1", sym.Version())
	}

	// Quiet zone is light; finder pattern corner is dark.
	if sym.Dark(0, 0) || sym.Dark(3, 3) {
		t.Error("quiet zone should be light")
	}
	if !sym.Dark(4, 4) {
		t.Error("finder pattern corner should be dark")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder()
	a, _ := enc.Encode("P0302", Medium)
	b, _ := enc.Encode("P0302", Medium)
	for y := 0; y < a.Size(); y++ {
		for x := 0; x < a.Size(); x++ {
			if a.Dark(x, y) != b.Dark(x, y) {
				t.Fatalf("module (%d,%d) differs between encodings", x, y)
			}
		}
	}
}

func TestEncodeCapacity(t *testing.T) {
	enc := NewEncoder()

	_, err := enc.Encode(strings.Repeat("a", 2500), High)
	if !errors.Is(err, errors.ErrCodeEncodingCapacity) {
		t.Errorf("oversized payload error = %v, want %s", err, errors.ErrCodeEncodingCapacity)
	}

	_, err = enc.Encode("", Medium)
	if !errors.Is(err, errors.ErrCodeEncodingCapacity) {
		t.Errorf("empty payload error = %v, want %s", err, errors.ErrCodeEncodingCapacity)
	}
}

func TestNewSymbolValidation(t *testing.T) {
	if _, err := NewSymbol(nil, 0); err == nil {
		t.Error("empty grid should fail")
	}
	if _, err := NewSymbol([][]bool{{true, false}, {true}}, 0); err == nil {
		t.Error("ragged grid should fail")
	}
}

func TestFragmentRuns(t *testing.T) {
	sym, err := NewSymbol([][]bool{
		{true, true, false},
		{false, false, false},
		{true, false, true},
	}, 0)
	if err != nil {
		t.Fatalf("NewSymbol() error: %v", err)
	}

	nodes := sym.Fragment(10)
	want := []vector.Rect{
		{W: 30, H: 30, Fill: "white"},
		{X: 0, Y: 0, W: 20, H: 10, Fill: "black"},
		{X: 0, Y: 20, W: 10, H: 10, Fill: "black"},
		{X: 20, Y: 20, W: 10, H: 10, Fill: "black"},
	}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d: %#v", len(nodes), len(want), nodes)
	}
	for i, n := range nodes {
		if r, ok := n.(vector.Rect); !ok || r != want[i] {
			t.Errorf("node %d = %#v, want %#v", i, n, want[i])
		}
	}
}

func TestFragmentCoversDarkModules(t *testing.T) {
	sym, err := NewEncoder().Encode("P0480", Medium)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	const scale = 2.0
	dark := 0
	for y := 0; y < sym.Size(); y++ {
		for x := 0; x < sym.Size(); x++ {
			if sym.Dark(x, y) {
				dark++
			}
		}
	}

	area := 0.0
	for _, n := range sym.Fragment(scale)[1:] {
		r := n.(vector.Rect)
		area += r.W * r.H
	}
	if want := float64(dark) * scale * scale; area != want {
		t.Errorf("black area = %v, want %v", area, want)
	}
}
