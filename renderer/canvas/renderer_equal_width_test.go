package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
)

// 词宽与最大宽度恰好相等时不应换行，多出一个词时才换行。
func TestNoWrapWhenWidthEqualsMaxWidth(t *testing.T) {
	r := NewRenderer("")
	face, err := r.Face(fonts.DefaultFont, 16)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	first := "SAMPLE-A"
	limit, _, err := face.Measure(first)
	if err != nil || limit <= 0 {
		t.Fatalf("invalid measured width: %g %v", limit, err)
	}

	cfg := layout.DefaultConfig()
	cfg.MaxWidth = limit
	e := layout.NewEngine(face, cfg)
	e.SetText(first)
	words, err := e.Words()
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if len(words) != 1 || words[0].Bounds.Y1 != 0 {
		t.Fatalf("equal width should stay on the first line: %+v", words)
	}

	e.SetText(first + " SAMPLE-B")
	words, err = e.Words()
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if len(words) != 2 || words[1].Bounds.X1 != 0 || words[1].Bounds.Y1 <= words[0].Bounds.Y1 {
		t.Fatalf("second word should wrap to a new line: %+v", words)
	}
}
