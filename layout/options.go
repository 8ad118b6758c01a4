package layout

import "strings"

// Metrics 提供单个词的渲染尺寸，由调用方持有，引擎在一次排版中只做非拥有引用。
// 找不到字形等失败由实现方决定：返回可用的回退尺寸，或直接返回错误。
type Metrics interface {
	Measure(token string) (width, height float64, err error)
}

// Painter 按排版顺序接收每个词的最终位置。
type Painter interface {
	DrawToken(text string, bounds Rect, lineOffset Point)
}

// ColorSetter 是 Painter 的可选扩展：Draw 开始前会先把引擎颜色交给它。
type ColorSetter interface {
	SetColor(c Color)
}

// Alignment 控制每行的水平对齐方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ParseAlignment 识别 "left" / "right"，其余取值返回 ok=false。
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.TrimSpace(s) {
	case "left":
		return AlignLeft, true
	case "right":
		return AlignRight, true
	}
	return AlignLeft, false
}

// HeightMode 决定换行时使用的行高。
//
// HeightGlobalMax 沿用最初的行为：行高是整个排版过程中见过的最大词高，
// 换行时不会重置，因此后续行会“继承”前面较高的词。
// HeightPerLine 在每次换行时重新开始统计，只看当前行的词。
type HeightMode int

const (
	HeightGlobalMax HeightMode = iota
	HeightPerLine
)

func (m HeightMode) String() string {
	if m == HeightPerLine {
		return "per-line"
	}
	return "global"
}

func (m HeightMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseHeightMode 识别 "global" / "per-line"。
func ParseHeightMode(s string) (HeightMode, bool) {
	switch strings.TrimSpace(s) {
	case "global":
		return HeightGlobalMax, true
	case "per-line":
		return HeightPerLine, true
	}
	return HeightGlobalMax, false
}

// Config 汇总排版参数，在构造引擎时按值传入。
type Config struct {
	MaxWidth         float64    `json:"maxWidth"`
	Leading          float64    `json:"leading"`
	WordSpacing      float64    `json:"wordSpacing"`
	ParagraphSpacing float64    `json:"paragraphSpacing"`
	Alignment        Alignment  `json:"align"`
	HeightMode       HeightMode `json:"heightMode"`
	LineOffset       Point      `json:"lineOffset"` // 原样交给 Painter
	Color            Color      `json:"color"`
}

// DefaultConfig 返回引擎的默认参数。
func DefaultConfig() Config {
	return Config{
		MaxWidth:         512,
		Leading:          0,
		WordSpacing:      8,
		ParagraphSpacing: 16,
		Alignment:        AlignLeft,
		HeightMode:       HeightGlobalMax,
		Color:            Black,
	}
}
