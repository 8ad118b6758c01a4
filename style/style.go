// Package style 把具名样式应用到排版引擎上。
//
// 样式值沿用 encoding/json 的解码形态（float64、string、[]any），
// 因此 JSON 与 DSL 两种来源可以共用同一套应用逻辑。
// 缺失或格式不对的键会被跳过，只应用能识别的部分。
package style

import (
	"errors"
	"fmt"

	"github.com/ByLCY/scribe/layout"
)

// 可识别的样式键。
const (
	KeyFont             = "font"
	KeySize             = "size"
	KeyColor            = "color"
	KeyLeading          = "leading"
	KeyWordSpacing      = "word-spacing"
	KeyMaxWidth         = "max-width"
	KeyParagraphSpacing = "paragraph-spacing"
	KeyAlign            = "align"
	KeyHeightMode       = "height-mode"
)

// ErrUnknownStyle 表示样式表中没有所请求的样式名。
var ErrUnknownStyle = errors.New("style: 未知样式")

// Style 是单个具名样式的键值集合。
type Style map[string]any

// FontLoader 按 (path, size) 提供字形度量，实现方负责缓存。
type FontLoader interface {
	LoadFont(path string, size float64) (layout.Metrics, error)
}

// Apply 把 s 中可识别的键应用到 e，最后无论如何都会让 e 失效。
// 只有字体加载失败会返回错误，此时其余键仍然已经生效。
func Apply(e *layout.Engine, s Style, loader FontLoader) error {
	if e == nil {
		return errors.New("style: 排版引擎为空")
	}
	defer e.Invalidate()

	if c, ok := colorValue(s[KeyColor]); ok {
		e.SetColor(c)
	}
	if v, ok := lengthValue(s[KeyLeading]); ok {
		e.SetLeading(v)
	}
	if v, ok := lengthValue(s[KeyWordSpacing]); ok {
		e.SetWordSpacing(v)
	}
	if v, ok := lengthValue(s[KeyMaxWidth]); ok {
		e.SetMaxWidth(v)
	}
	if v, ok := lengthValue(s[KeyParagraphSpacing]); ok {
		e.SetParagraphSpacing(v)
	}
	if raw, ok := s[KeyAlign].(string); ok {
		if a, ok := layout.ParseAlignment(raw); ok {
			e.SetAlignment(a)
		}
	}
	if raw, ok := s[KeyHeightMode].(string); ok {
		if m, ok := layout.ParseHeightMode(raw); ok {
			e.SetHeightMode(m)
		}
	}

	path, hasFont := s[KeyFont].(string)
	size, hasSize := lengthValue(s[KeySize])
	if !hasFont || !hasSize || loader == nil {
		return nil
	}
	m, err := loader.LoadFont(path, size)
	if err != nil {
		return fmt.Errorf("style: 加载字体 %s@%g 失败: %w", path, size, err)
	}
	e.SetMetrics(m)
	return nil
}

// lengthValue 接受数字或带单位的字符串（px、pt、mm、cm、in），统一换算为像素。
func lengthValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		l, ok := layout.ParseLength(n)
		if !ok {
			return 0, false
		}
		return l.Pixels(), true
	default:
		return 0, false
	}
}

// colorValue 解析 3 或 4 个通道；前三个除以 255，第 4 个是 alpha，原样使用。
func colorValue(v any) (layout.Color, bool) {
	list, ok := v.([]any)
	if !ok || (len(list) != 3 && len(list) != 4) {
		return layout.Color{}, false
	}
	var ch [4]float64
	ch[3] = 1
	for i, item := range list {
		n, ok := item.(float64)
		if !ok {
			return layout.Color{}, false
		}
		if i < 3 {
			n /= 255
		}
		ch[i] = n
	}
	return layout.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

// ParseColor 解析 "#RGB"、"#RRGGBB"、"#RRGGBBAA" 或 "white"/"black"。
func ParseColor(s string) (layout.Color, bool) {
	switch s {
	case "white":
		return layout.White, true
	case "black":
		return layout.Black, true
	}
	if len(s) == 0 || s[0] != '#' {
		return layout.Color{}, false
	}
	switch len(s) {
	case 4, 7, 9:
	default:
		return layout.Color{}, false
	}
	channels, err := hexColor(s)
	if err != nil {
		return layout.Color{}, false
	}
	return colorValue(channels)
}
