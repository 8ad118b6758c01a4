package canvasrenderer

import (
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scribe/fonts"
	"github.com/ByLCY/scribe/layout"
)

// Face 是一个 (字体, 字号) 组合，实现 layout.Metrics。
// 缺字时由字体的 .notdef 字形参与测量，不会返回错误。
type Face struct {
	key     fonts.Key
	family  *canvas.FontFamily
	measure *canvas.FontFace
}

var _ layout.Metrics = (*Face)(nil)

func newFace(key fonts.Key, family *canvas.FontFamily) *Face {
	f := &Face{key: key, family: family}
	f.measure = f.fontFace(canvas.Black)
	return f
}

// Key 返回该字体在缓存中的键。
func (f *Face) Key() fonts.Key { return f.key }

// Measure 返回词的前进宽度与字体高度（上升部加下降部），单位为布局像素。
func (f *Face) Measure(token string) (float64, float64, error) {
	m := f.measure.Metrics()
	return f.measure.TextWidth(token), m.Ascent + m.Descent, nil
}

// fontFace 创建指定颜色的 canvas 字体面；canvas 以 pt 计字号，这里把像素字号按 1px=1mm 换算。
func (f *Face) fontFace(col color.Color) *canvas.FontFace {
	return f.family.Face(f.key.Size*layout.MmToPt, col, canvas.FontRegular, canvas.FontNormal)
}

// painter 把词绘制到 canvas.Context 上，实现 layout.Painter 与 layout.ColorSetter。
type painter struct {
	ctx    *canvas.Context
	face   *Face
	origin layout.Point
	ff     *canvas.FontFace
}

func newPainter(ctx *canvas.Context, face *Face, origin layout.Point) *painter {
	return &painter{ctx: ctx, face: face, origin: origin, ff: face.measure}
}

func (p *painter) SetColor(c layout.Color) {
	p.ff = p.face.fontFace(colorFromLayout(c))
}

func (p *painter) DrawToken(text string, bounds layout.Rect, lineOffset layout.Point) {
	if text == "" {
		return
	}
	// 基线位置：词框顶部加上字体上升部
	x := bounds.X1 + lineOffset.X + p.origin.X
	baseline := bounds.Y1 + lineOffset.Y + p.origin.Y + p.ff.Metrics().Ascent
	p.ctx.DrawText(x, baseline, canvas.NewTextLine(p.ff, text, canvas.Left))
}
