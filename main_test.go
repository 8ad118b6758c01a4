package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunPNGAllBackends(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "hello world\nsecond paragraph\n")
	for _, name := range []string{"canvas", "ximage", "gotext"} {
		out := filepath.Join(dir, name, "out.png")
		var logs bytes.Buffer
		err := run(options{Input: in, Output: out, Backend: name, Width: 200, Background: "white"}, nil, testLogger(&logs))
		if err != nil {
			t.Fatalf("%s: run failed: %v", name, err)
		}
		f, err := os.Open(out)
		if err != nil {
			t.Fatalf("%s: output missing: %v", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: invalid png: %v", name, err)
		}
		if img.Bounds().Dx() < 2 || img.Bounds().Dy() < 2 {
			t.Fatalf("%s: unexpected size %v", name, img.Bounds())
		}
		if _, _, _, a := img.At(0, 0).RGBA(); a != 0xffff {
			t.Fatalf("%s: background should be opaque", name)
		}
	}
}

func TestRunStyleDataAndDebug(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "hi ${user.name} ${missing}")
	sty := writeFile(t, dir, "s.sty", `body { size: 20 max-width: 1000 align: right word-spacing: 5 }`)
	debug := filepath.Join(dir, "debug", "layout.json")
	out := filepath.Join(dir, "out.json")

	var logs bytes.Buffer
	opts := options{
		Input: in, StylePath: sty, StyleName: "body", Output: out, Backend: "ximage", Debug: debug,
		Data: map[string]any{"user": map[string]any{"name": "Ada"}},
	}
	if err := run(opts, nil, testLogger(&logs)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(logs.String(), "path=missing") {
		t.Fatalf("missing placeholder should be logged, got %q", logs.String())
	}

	for _, p := range []string{debug, out} {
		raw, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		var dump struct {
			Config struct {
				Align       string  `json:"align"`
				MaxWidth    float64 `json:"maxWidth"`
				WordSpacing float64 `json:"wordSpacing"`
			} `json:"config"`
			Blocks []string `json:"blocks"`
			Result struct {
				Words []struct {
					Text string `json:"text"`
				} `json:"words"`
			} `json:"result"`
		}
		if err := json.Unmarshal(raw, &dump); err != nil {
			t.Fatalf("decode %s: %v", p, err)
		}
		if dump.Config.Align != "right" {
			t.Fatalf("style not applied: %+v", dump.Config)
		}
		if len(dump.Blocks) != 1 || dump.Blocks[0] != "hi Ada ${missing}" {
			t.Fatalf("unexpected blocks %q", dump.Blocks)
		}
		if len(dump.Result.Words) != 3 || dump.Result.Words[1].Text != "Ada" {
			t.Fatalf("unexpected words %+v", dump.Result.Words)
		}
	}
}

func TestRunPDF(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")
	var logs bytes.Buffer
	if err := run(options{Input: "-", Output: out, Backend: "canvas"}, strings.NewReader("pdf output"), testLogger(&logs)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("not a PDF")
	}

	err = run(options{Input: "-", Output: out, Backend: "ximage"}, strings.NewReader("x"), testLogger(&logs))
	if err == nil {
		t.Fatalf("PDF with ximage backend should fail")
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "text")
	sty := writeFile(t, dir, "s.json", `{"body": {"size": 12}}`)
	var logs bytes.Buffer
	cases := map[string]options{
		"missing input":   {Input: filepath.Join(dir, "none.txt"), Output: filepath.Join(dir, "a.png")},
		"unknown backend": {Input: in, Output: filepath.Join(dir, "b.png"), Backend: "gpu"},
		"unknown style":   {Input: in, Output: filepath.Join(dir, "c.png"), StylePath: sty, StyleName: "title"},
		"bad align":       {Input: in, Output: filepath.Join(dir, "d.png"), Align: "center"},
		"bad background":  {Input: in, Output: filepath.Join(dir, "e.png"), Background: "teal"},
	}
	for name, opts := range cases {
		if err := run(opts, nil, testLogger(&logs)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRunMergesStyleSheets(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "one two")
	base := writeFile(t, dir, "base.sty", `body { size: 14 max-width: 300 align: right }`)
	override := writeFile(t, dir, "override.json", `{"body": {"align": "left"}}`)
	out := filepath.Join(dir, "out.json")

	var logs bytes.Buffer
	opts := options{Input: in, StylePath: base + ", " + override, StyleName: "body", Output: out, Backend: "ximage"}
	if err := run(opts, nil, testLogger(&logs)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var dump struct {
		Config struct {
			Align    string  `json:"align"`
			MaxWidth float64 `json:"maxWidth"`
		} `json:"config"`
	}
	if err := json.Unmarshal(raw, &dump); err != nil {
		t.Fatal(err)
	}
	if dump.Config.Align != "left" || dump.Config.MaxWidth != 300 {
		t.Fatalf("style sheets not merged in order: %+v", dump.Config)
	}
}

func TestRunCanvasPNGKeepsTransparency(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	var logs bytes.Buffer
	err := run(options{Input: "-", Output: out, Backend: "canvas", Align: "right", Width: 400}, strings.NewReader("ab"), testLogger(&logs))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("without -bg the corner should stay transparent")
	}
}
