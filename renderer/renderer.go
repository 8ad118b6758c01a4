package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/ByLCY/scribe/layout"
)

// Rasterizer 把排版引擎的结果绘制到一张离屏位图上。
// 实现方先调用 Layout，再按 SurfaceSize 分配目标尺寸。
type Rasterizer interface {
	Rasterize(e *layout.Engine) (*image.RGBA, error)
}

// SurfaceSize 根据排版包围盒计算光栅目标尺寸：宽高向上取整。
// 任一维度为零时返回 1x1 占位尺寸并记录警告，placeholder 为 true，
// 调用方此时不应再绘制任何内容。
func SurfaceSize(bounds layout.Rect) (w, h int, placeholder bool) {
	if bounds.Empty() {
		Logger().Warn("排版结果尺寸无效，使用 1x1 占位图",
			"width", bounds.Width(), "height", bounds.Height())
		return 1, 1, true
	}
	return int(math.Ceil(bounds.Width())), int(math.Ceil(bounds.Height())), false
}

// Origin 返回把包围盒左上角移到原点所需的平移量。
// 单行文本扣除行距后 Y1 可能为负，绘制时需要整体下移。
func Origin(bounds layout.Rect) layout.Point {
	return layout.Point{X: -bounds.X1, Y: -bounds.Y1}
}

// NRGBA 把归一化颜色转换为 8 位非预乘颜色，分量超出 [0,1] 时截断。
func NRGBA(c layout.Color) color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Flatten 把透明背景的光栅结果合成到纯色底上，返回新图。
func Flatten(img *image.RGBA, bg layout.Color) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(NRGBA(bg)), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// EncodePNG 把光栅结果编码为 PNG；bg 非空时先合成到该底色上。
func EncodePNG(img *image.RGBA, bg *layout.Color) ([]byte, error) {
	if bg != nil {
		img = Flatten(img, *bg)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
