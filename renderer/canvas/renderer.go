package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
	"github.com/ByLCY/scribe/renderer"
)

// Renderer measures and draws layout results via github.com/tdewolff/canvas.
// Canvas coordinates are used as pixels: rasterization runs at one dot per millimeter.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by unique name

	faces *fonts.Cache[*Face]
}

var _ renderer.Rasterizer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // fonts accessible via builtin:<name>, checked before the bundled ones
	Cache   *fonts.Cache[*Face] // shared face cache; a private one is created when nil
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		fontBlobs: map[string][]byte{},
		faces:     opts.Cache,
	}
	if r.faces == nil {
		r.faces = fonts.NewCache[*Face]()
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // ignore error here; will be caught when actually used
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// LoadFont implements style.FontLoader.
func (r *Renderer) LoadFont(path string, size float64) (layout.Metrics, error) {
	return r.Face(path, size)
}

// Face returns the face for (path, size), loading it at most once per renderer cache.
// size is the em size in layout pixels.
func (r *Renderer) Face(path string, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", size)
	}
	key := fonts.Key{Path: path, Size: size}
	return r.faces.GetOrLoad(key, func() (*Face, error) {
		family, err := r.loadFamily(path)
		if err != nil {
			fallback, fbErr := r.fallback()
			if fbErr != nil {
				return nil, err
			}
			renderer.Logger().Warn("字体加载失败，使用内置字体", "font", path, "error", err)
			family = fallback
		}
		renderer.Logger().Debug("加载字体", "font", key.String())
		return newFace(key, family), nil
	})
}

// Rasterize implements renderer.Rasterizer.
func (r *Renderer) Rasterize(e *layout.Engine) (*image.RGBA, error) {
	c, err := r.draw(e)
	if err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}

// RenderPNG rasterizes the engine and encodes the image as PNG.
// A non-nil background is composited under the text; nil keeps it transparent.
func (r *Renderer) RenderPNG(e *layout.Engine, background *layout.Color) ([]byte, error) {
	img, err := r.Rasterize(e)
	if err != nil {
		return nil, err
	}
	return renderer.EncodePNG(img, background)
}

// RenderPDF renders the engine into a single-page PDF sized to the layout bounds.
func (r *Renderer) RenderPDF(e *layout.Engine, meta DocumentMeta) ([]byte, error) {
	c, err := r.draw(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, c.W, c.H, nil)
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// draw lays out e and paints every word onto a canvas sized to the layout bounds.
func (r *Renderer) draw(e *layout.Engine) (*canvas.Canvas, error) {
	if e == nil {
		return nil, fmt.Errorf("排版引擎为空")
	}
	bounds, err := e.Bounds()
	if err != nil {
		return nil, err
	}
	w, h, placeholder := renderer.SurfaceSize(bounds)
	c := canvas.New(float64(w), float64(h))
	if placeholder {
		return c, nil
	}

	face, ok := e.Metrics().(*Face)
	if !ok {
		return nil, fmt.Errorf("canvas 渲染器需要 *canvasrenderer.Face 作为度量来源，实际为 %T", e.Metrics())
	}
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	renderer.Logger().Debug("canvas 绘制", "width", w, "height", h)
	if err := e.Draw(newPainter(ctx, face, renderer.Origin(bounds))); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Renderer) loadFamily(path string) (*canvas.FontFamily, error) {
	data, err := r.loadFontBytes(path)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(path)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	return family, nil
}

func (r *Renderer) loadFontBytes(path string) ([]byte, error) {
	if fonts.IsBuiltin(path) {
		name := strings.TrimPrefix(strings.TrimPrefix(path, "built-in:"), fonts.BuiltinPrefix)
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
	}
	return fonts.ReadFont(r.baseDir, path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	return r.loadFamily(fonts.DefaultFont)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(c.R, c.G, c.B, c.A)
}
