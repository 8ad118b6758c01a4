// Package ximage 使用 golang.org/x/image/font 测量并绘制文本，直接输出 RGBA 位图，不依赖矢量画布。
package ximage

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
	"github.com/ByLCY/scribe/renderer"
)

// Face 包装一个 opentype 字体面，实现 layout.Metrics。
// font.Face 不是并发安全的，Face 与排版引擎一样只能在单个 goroutine 中使用。
type Face struct {
	key     fonts.Key
	face    font.Face
	metrics font.Metrics
}

var _ layout.Metrics = (*Face)(nil)

// Measure 返回前进宽度与 ascent+descent，单位为像素。
func (f *Face) Measure(token string) (float64, float64, error) {
	w := font.MeasureString(f.face, token)
	return fixedToFloat(w), fixedToFloat(f.metrics.Ascent + f.metrics.Descent), nil
}

func (f *Face) Key() fonts.Key { return f.key }

// Renderer 解析 TTF/OTF 字体并用 font.Drawer 光栅化排版结果。
type Renderer struct {
	baseDir string
	faces   *fonts.Cache[*Face]
}

var _ renderer.Rasterizer = (*Renderer)(nil)

// NewRenderer 创建渲染器；cache 为 nil 时使用私有缓存。
func NewRenderer(baseDir string, cache *fonts.Cache[*Face]) *Renderer {
	if cache == nil {
		cache = fonts.NewCache[*Face]()
	}
	return &Renderer{baseDir: baseDir, faces: cache}
}

// LoadFont implements style.FontLoader.
func (r *Renderer) LoadFont(path string, size float64) (layout.Metrics, error) {
	return r.Face(path, size)
}

// Face 返回 (path, size) 对应的字体面，每个键只解析一次。
func (r *Renderer) Face(path string, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", size)
	}
	key := fonts.Key{Path: path, Size: size}
	return r.faces.GetOrLoad(key, func() (*Face, error) {
		data, err := fonts.ReadFont(r.baseDir, path)
		if err != nil {
			return nil, err
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72, // 72 DPI 下 1pt = 1px
			Hinting: font.HintingNone,
		})
		if err != nil {
			return nil, fmt.Errorf("创建字体面 %s 失败: %w", key, err)
		}
		renderer.Logger().Debug("加载字体", "font", key.String())
		return &Face{key: key, face: face, metrics: face.Metrics()}, nil
	})
}

// Rasterize implements renderer.Rasterizer.
func (r *Renderer) Rasterize(e *layout.Engine) (*image.RGBA, error) {
	if e == nil {
		return nil, fmt.Errorf("排版引擎为空")
	}
	face, ok := e.Metrics().(*Face)
	if !ok && e.Metrics() != nil {
		return nil, fmt.Errorf("ximage 渲染器需要 *ximage.Face 作为度量来源，实际为 %T", e.Metrics())
	}
	return RasterizeWith(e, face)
}

// RasterizeWith 按 e 的排版结果用 face 绘制，e 的度量来源可以是别的实现，
// 例如整形后的度量，只要与 face 是同一字体同一字号。
func RasterizeWith(e *layout.Engine, face *Face) (*image.RGBA, error) {
	bounds, err := e.Bounds()
	if err != nil {
		return nil, err
	}
	w, h, placeholder := renderer.SurfaceSize(bounds)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if placeholder {
		return img, nil
	}
	if face == nil {
		return nil, fmt.Errorf("缺少绘制用字体面")
	}
	p := &painter{
		drawer: &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face.face},
		ascent: fixedToFloat(face.metrics.Ascent),
		origin: renderer.Origin(bounds),
	}
	if err := e.Draw(p); err != nil {
		return nil, err
	}
	return img, nil
}

// painter 用 font.Drawer 逐词绘制，实现 layout.Painter 与 layout.ColorSetter。
type painter struct {
	drawer *font.Drawer
	ascent float64
	origin layout.Point
}

func (p *painter) SetColor(c layout.Color) {
	p.drawer.Src = image.NewUniform(renderer.NRGBA(c))
}

func (p *painter) DrawToken(text string, bounds layout.Rect, lineOffset layout.Point) {
	if text == "" {
		return
	}
	x := bounds.X1 + lineOffset.X + p.origin.X
	baseline := bounds.Y1 + lineOffset.Y + p.origin.Y + p.ascent
	p.drawer.Dot = fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(baseline)}
	p.drawer.DrawString(text)
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64.0 }
