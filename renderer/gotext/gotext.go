// Package gotext 提供基于 go-text/typesetting（HarfBuzz 移植）的字形度量。
// 与直接累加字形前进宽度不同，它会应用字距与连字，测量结果更接近最终排版。
package gotext

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
	"github.com/ByLCY/scribe/renderer"
	"github.com/ByLCY/scribe/renderer/ximage"
)

// shapers 复用 HarfbuzzShaper；它带有可变缓冲区，同一时刻只能被一个调用使用。
var shapers = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

var english = language.NewLanguage("en")

// Face 是经过整形测量的字体面，实现 layout.Metrics。
// Face 创建后不再修改，可以通过共享缓存交给多个引擎并发使用：
// 只缓存只读的 *font.Font，每次测量再包一层轻量的 font.Face。
type Face struct {
	key  fonts.Key
	font *font.Font
}

var _ layout.Metrics = (*Face)(nil)

func (f *Face) Key() fonts.Key { return f.key }

// Measure 整形 token 并返回总前进宽度与行高（ascent - descent）。
func (f *Face) Measure(token string) (float64, float64, error) {
	runes := []rune(token)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f.font),
		Size:      floatToFixed(f.key.Size),
		Script:    detectScript(runes),
		Language:  english,
	}
	shaper := shapers.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(input)
	shapers.Put(shaper)

	bounds := out.LineBounds
	return fixedToFloat(out.Advance), fixedToFloat(bounds.Ascent - bounds.Descent), nil
}

// Loader 按 (path, size) 加载整形字体面。
type Loader struct {
	baseDir string
	faces   *fonts.Cache[*Face]
}

// NewLoader 创建加载器；cache 为 nil 时使用私有缓存。
func NewLoader(baseDir string, cache *fonts.Cache[*Face]) *Loader {
	if cache == nil {
		cache = fonts.NewCache[*Face]()
	}
	return &Loader{baseDir: baseDir, faces: cache}
}

// LoadFont implements style.FontLoader.
func (l *Loader) LoadFont(path string, size float64) (layout.Metrics, error) {
	return l.Face(path, size)
}

// Face 返回 (path, size) 对应的字体面，每个键只解析一次。
func (l *Loader) Face(path string, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", size)
	}
	key := fonts.Key{Path: path, Size: size}
	return l.faces.GetOrLoad(key, func() (*Face, error) {
		data, err := fonts.ReadFont(l.baseDir, path)
		if err != nil {
			return nil, err
		}
		face, err := font.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
		}
		renderer.Logger().Debug("加载整形字体", "font", key.String())
		return &Face{key: key, font: face.Font}, nil
	})
}

// detectScript 取第一个非空白字符的书写系统。
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64.0 }

// Rasterizer 用整形度量排版、用 x/image 字体面绘制。
// 两者按同一 (path, size) 加载，保证绘制与测量一致。
type Rasterizer struct {
	loader *Loader
	glyphs *ximage.Renderer
}

var _ renderer.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer 创建共享 baseDir 的整形度量加载器与绘制器。
func NewRasterizer(baseDir string) *Rasterizer {
	return &Rasterizer{
		loader: NewLoader(baseDir, nil),
		glyphs: ximage.NewRenderer(baseDir, nil),
	}
}

// Loader 返回提供整形度量的加载器。
func (r *Rasterizer) Loader() *Loader { return r.loader }

// LoadFont implements style.FontLoader.
func (r *Rasterizer) LoadFont(path string, size float64) (layout.Metrics, error) {
	return r.loader.Face(path, size)
}

// Rasterize implements renderer.Rasterizer.
func (r *Rasterizer) Rasterize(e *layout.Engine) (*image.RGBA, error) {
	if e == nil {
		return nil, fmt.Errorf("排版引擎为空")
	}
	var glyphs *ximage.Face
	switch m := e.Metrics().(type) {
	case nil:
	case *Face:
		face, err := r.glyphs.Face(m.key.Path, m.key.Size)
		if err != nil {
			return nil, err
		}
		glyphs = face
	default:
		return nil, fmt.Errorf("gotext 渲染器需要 *gotext.Face 作为度量来源，实际为 %T", m)
	}
	return ximage.RasterizeWith(e, glyphs)
}
