package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/scribe/binding"
	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
	"github.com/ByLCY/scribe/renderer"
	canvasrenderer "github.com/ByLCY/scribe/renderer/canvas"
	"github.com/ByLCY/scribe/renderer/gotext"
	"github.com/ByLCY/scribe/renderer/ximage"
	"github.com/ByLCY/scribe/style"
)

// defaultFontSize 是未通过样式指定字体时使用的字号（像素）。
const defaultFontSize = 16

// backend 同时提供字形度量与光栅化。
type backend interface {
	style.FontLoader
	renderer.Rasterizer
}

// options 汇总命令行参数。
type options struct {
	Input      string
	StylePath  string
	StyleName  string
	Output     string
	Backend    string
	Debug      string
	Width      float64
	Align      string
	Background string
	Data       any
}

func main() {
	input := flag.String("in", "", "文本文件路径，为空或 - 时读取标准输入")
	stylePath := flag.String("style", "", "样式表路径（.json 或样式 DSL），多个用逗号分隔，后者覆盖前者")
	styleName := flag.String("name", "body", "要应用的样式名")
	output := flag.String("out", "output/text.png", "输出路径：.png、.pdf 或 .json")
	backendName := flag.String("backend", "canvas", "字体后端：canvas、ximage 或 gotext")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	width := flag.Float64("width", 0, "覆盖最大行宽（像素）")
	align := flag.String("align", "", "覆盖对齐方式：left 或 right")
	bg := flag.String("bg", "", "PNG 背景色，如 white 或 #RRGGBB；为空时保持透明")
	dataJSON := flag.String("data", "", "绑定到文本 ${path} 占位符的 JSON 数据")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	renderer.SetLogger(logger)

	opts := options{
		Input:      *input,
		StylePath:  *stylePath,
		StyleName:  *styleName,
		Output:     *output,
		Backend:    *backendName,
		Debug:      *debug,
		Width:      *width,
		Align:      *align,
		Background: *bg,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.Data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(opts, os.Stdin, logger); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", opts.Output)
}

// run 串联读取、样式、排版与输出。
func run(opts options, stdin io.Reader, logger *slog.Logger) error {
	text, err := readText(opts.Input, stdin)
	if err != nil {
		return err
	}
	if opts.Data != nil {
		var missing []string
		text, missing = binding.Expand(text, opts.Data)
		for _, path := range missing {
			logger.Warn("数据中缺少占位符路径", "path", path)
		}
	}

	// 相对字体路径以第一个样式表所在目录为基准
	baseDir := "."
	if paths := stylePaths(opts.StylePath); len(paths) > 0 {
		baseDir = filepath.Dir(paths[0])
	}
	b, err := newBackend(opts.Backend, baseDir)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(opts.Output), ".pdf") && opts.Backend != "canvas" {
		return fmt.Errorf("PDF 输出只支持 canvas 后端，当前为 %s", opts.Backend)
	}

	e, err := newEngine(opts, b)
	if err != nil {
		return err
	}
	e.Append(text)
	logger.Debug("文本块", "count", len(e.Blocks()))

	if opts.Debug != "" {
		if err := writeDebug(e, opts.Debug); err != nil {
			return err
		}
	}
	return writeOutput(e, b, opts)
}

func readText(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("读取文本失败: %w", err)
	}
	// 文件末尾的换行不算一个空段落
	return strings.TrimRight(string(data), "\r\n"), nil
}

func stylePaths(list string) []string {
	var paths []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func newBackend(name, baseDir string) (backend, error) {
	switch name {
	case "", "canvas":
		return canvasrenderer.NewRenderer(baseDir), nil
	case "ximage":
		return ximage.NewRenderer(baseDir, nil), nil
	case "gotext":
		return gotext.NewRasterizer(baseDir), nil
	default:
		return nil, fmt.Errorf("未知后端 %q", name)
	}
}

// newEngine 先装入默认字体，再依次应用样式表与命令行覆盖项。
func newEngine(opts options, b backend) (*layout.Engine, error) {
	m, err := b.LoadFont(fonts.DefaultFont, defaultFontSize)
	if err != nil {
		return nil, fmt.Errorf("加载默认字体失败: %w", err)
	}
	e := layout.NewEngine(m, layout.DefaultConfig())

	if paths := stylePaths(opts.StylePath); len(paths) > 0 {
		sheet, err := style.LoadAll(paths...)
		if err != nil {
			return nil, err
		}
		if err := sheet.Apply(e, opts.StyleName, b); err != nil {
			return nil, fmt.Errorf("应用样式 %s 失败（可用: %s）: %w", opts.StyleName, strings.Join(sheet.Names(), ", "), err)
		}
	}
	if opts.Width > 0 {
		e.SetMaxWidth(opts.Width)
	}
	if opts.Align != "" {
		a, ok := layout.ParseAlignment(opts.Align)
		if !ok {
			return nil, fmt.Errorf("未知对齐方式 %q", opts.Align)
		}
		e.SetAlignment(a)
	}
	return e, nil
}

func writeOutput(e *layout.Engine, b backend, opts options) error {
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(opts.Output)) {
	case ".json":
		return writeDebug(e, opts.Output)
	case ".pdf":
		cr, ok := b.(*canvasrenderer.Renderer)
		if !ok {
			return fmt.Errorf("PDF 输出只支持 canvas 后端")
		}
		pdfBytes, err := cr.RenderPDF(e, canvasrenderer.DocumentMeta{
			Title:   strings.TrimSuffix(filepath.Base(opts.Output), filepath.Ext(opts.Output)),
			Creator: "scribe",
		})
		if err != nil {
			return fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		data = pdfBytes
	default:
		var bg *layout.Color
		if opts.Background != "" {
			c, ok := style.ParseColor(opts.Background)
			if !ok {
				return fmt.Errorf("无法解析背景色 %q", opts.Background)
			}
			bg = &c
		}
		pngBytes, err := renderPNG(e, b, bg)
		if err != nil {
			return fmt.Errorf("渲染 PNG 失败: %w", err)
		}
		data = pngBytes
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

// renderPNG 优先使用 canvas 后端自带的 PNG 输出，其余后端先光栅化再编码。
func renderPNG(e *layout.Engine, b backend, bg *layout.Color) ([]byte, error) {
	if cr, ok := b.(*canvasrenderer.Renderer); ok {
		return cr.RenderPNG(e, bg)
	}
	img, err := b.Rasterize(e)
	if err != nil {
		return nil, err
	}
	return renderer.EncodePNG(img, bg)
}

func writeDebug(e *layout.Engine, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(e, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
