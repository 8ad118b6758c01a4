package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMetrics 表示引擎需要测量词宽时没有可用的 Metrics。
var ErrNoMetrics = errors.New("layout: 缺少字形度量 Metrics")

// Engine 把文本块按配置折行排版成一组带坐标的词。
//
// 所有修改方法都会把引擎标记为 dirty，下一次查询时才重新排版，
// 结果会缓存到下一次修改为止。Engine 不是并发安全的，调用方需要自行串行化。
type Engine struct {
	cfg     Config
	metrics Metrics
	blocks  []string

	words  []Word
	bounds Rect
	dirty  bool
}

// NewEngine 使用给定的度量来源与配置创建引擎，m 可以稍后通过 SetMetrics 提供。
func NewEngine(m Metrics, cfg Config) *Engine {
	return &Engine{cfg: cfg, metrics: m, dirty: true}
}

// SetText 用单个文本块替换全部内容。
func (e *Engine) SetText(s string) {
	e.blocks = []string{s}
	e.words = nil
	e.dirty = true
}

// Append 按 '\n' 与 '\r' 拆分 s，每段作为一个新文本块追加到已有内容之后。
// 每个换行字符都是独立的分隔符，因此 "\r\n" 会在两段之间产生一个空块。
func (e *Engine) Append(s string) {
	e.blocks = append(e.blocks, splitBreaks(s)...)
	e.dirty = true
}

// Clear 清空文本块与已排版的词。
func (e *Engine) Clear() {
	e.blocks = nil
	e.words = nil
	e.dirty = true
}

// Invalidate 只标记 dirty，不改变内容与配置。
func (e *Engine) Invalidate() { e.dirty = true }

// Dirty 报告缓存的排版结果是否已经过期。
func (e *Engine) Dirty() bool { return e.dirty }

// Blocks 返回当前文本块的副本。
func (e *Engine) Blocks() []string { return append([]string(nil), e.blocks...) }

// Text 以 '\n' 拼接全部文本块。
func (e *Engine) Text() string { return strings.Join(e.blocks, "\n") }

func (e *Engine) Config() Config   { return e.cfg }
func (e *Engine) Metrics() Metrics { return e.metrics }
func (e *Engine) Color() Color     { return e.cfg.Color }

func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg
	e.dirty = true
}

func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
	e.dirty = true
}

func (e *Engine) SetMaxWidth(w float64) {
	e.cfg.MaxWidth = w
	e.dirty = true
}

func (e *Engine) SetLeading(l float64) {
	e.cfg.Leading = l
	e.dirty = true
}

func (e *Engine) SetWordSpacing(s float64) {
	e.cfg.WordSpacing = s
	e.dirty = true
}

func (e *Engine) SetParagraphSpacing(s float64) {
	e.cfg.ParagraphSpacing = s
	e.dirty = true
}

func (e *Engine) SetAlignment(a Alignment) {
	e.cfg.Alignment = a
	e.dirty = true
}

func (e *Engine) SetHeightMode(m HeightMode) {
	e.cfg.HeightMode = m
	e.dirty = true
}

func (e *Engine) SetLineOffset(p Point) {
	e.cfg.LineOffset = p
	e.dirty = true
}

func (e *Engine) SetColor(c Color) {
	e.cfg.Color = c
	e.dirty = true
}

// Layout 返回排版结果；未修改时直接返回缓存。
// 测量失败时返回错误，引擎保持 dirty，缓存不变。
func (e *Engine) Layout() (Result, error) {
	if e.dirty {
		words, bounds, err := e.compute()
		if err != nil {
			return Result{}, err
		}
		e.words, e.bounds = words, bounds
		e.dirty = false
	}
	return Result{Words: append([]Word(nil), e.words...), Bounds: e.bounds}, nil
}

// Words 是 Layout 的便捷形式。
func (e *Engine) Words() ([]Word, error) {
	res, err := e.Layout()
	return res.Words, err
}

// Bounds 返回排版后的整体包围盒。
func (e *Engine) Bounds() (Rect, error) {
	res, err := e.Layout()
	return res.Bounds, err
}

// Draw 先完成排版，再按顺序把每个词交给 p。
func (e *Engine) Draw(p Painter) error {
	res, err := e.Layout()
	if err != nil {
		return err
	}
	if cs, ok := p.(ColorSetter); ok {
		cs.SetColor(e.cfg.Color)
	}
	for _, w := range res.Words {
		p.DrawToken(w.Text, w.Bounds, e.cfg.LineOffset)
	}
	return nil
}

// compute 是一次完整的排版过程，只读取引擎状态，不修改它。
func (e *Engine) compute() ([]Word, Rect, error) {
	cfg := e.cfg
	var (
		x, y   float64
		height float64 // 当前用于换行与词框高度的行高
		bounds Rect
		lines  [][]Word
	)

	for _, block := range e.blocks {
		x = 0
		if cfg.HeightMode == HeightPerLine {
			height = 0
		}
		lines = append(lines, nil)

		for _, token := range tokenize(block) {
			w, h, err := e.measure(token)
			if err != nil {
				return nil, Rect{}, err
			}

			wraps := x+w > cfg.MaxWidth
			switch cfg.HeightMode {
			case HeightPerLine:
				if wraps {
					// 用即将结束那一行的高度推进，再从当前词重新统计
					y += height + cfg.Leading
					height = h
				} else {
					height = max(height, h)
				}
			default:
				// 全局最大值在换行判断之前更新，且从不重置
				height = max(height, h)
				if wraps {
					y += height + cfg.Leading
				}
			}
			if wraps {
				x = 0
				lines = append(lines, nil)
			}

			word := Word{Text: token, Bounds: Rect{
				X1: x, Y1: y,
				X2: x + w, Y2: y + height + cfg.Leading,
			}}
			x += w + cfg.WordSpacing
			bounds = bounds.Include(Point{X: x - cfg.WordSpacing})

			last := len(lines) - 1
			lines[last] = append(lines[last], word)
		}

		// 块的最后一行不需要行距，把它从词框中扣掉
		last := lines[len(lines)-1]
		for i := range last {
			last[i].Bounds = last[i].Bounds.Offset(0, -cfg.Leading)
		}

		y += height + cfg.ParagraphSpacing
	}

	if cfg.Alignment == AlignRight {
		alignRight(lines, cfg.MaxWidth, cfg.WordSpacing)
	}

	words := make([]Word, 0, len(lines))
	for _, line := range lines {
		words = append(words, line...)
	}
	for _, w := range words {
		bounds = bounds.Union(w.Bounds)
	}
	return words, bounds, nil
}

func (e *Engine) measure(token string) (float64, float64, error) {
	if e.metrics == nil {
		return 0, 0, ErrNoMetrics
	}
	w, h, err := e.metrics.Measure(token)
	if err != nil {
		return 0, 0, fmt.Errorf("layout: 测量 %q 失败: %w", token, err)
	}
	return w, h, nil
}

// alignRight 把每一行整体右移到 maxWidth 处；超宽的行保持原位。
func alignRight(lines [][]Word, maxWidth, wordSpacing float64) {
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		width := wordSpacing * float64(len(line)-1)
		for _, w := range line {
			width += w.Bounds.Width()
		}
		offset := max(0, maxWidth-width)
		for i := range line {
			line[i].Bounds = line[i].Bounds.Offset(offset, 0)
		}
	}
}

// tokenize 按单个空格切分，连续空格会产生空词，与原有行为保持一致。
// 空块不产生任何词。
func tokenize(block string) []string {
	if block == "" {
		return nil
	}
	return strings.Split(block, " ")
}

// splitBreaks 在每个 '\n' 或 '\r' 处切分。
func splitBreaks(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
