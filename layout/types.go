package layout

// 该文件定义布局结果与几何类型，供排版计算、绘制后端与调试 JSON 共用。

// Point 表示二维向量，绘制时作为行偏移传给 Painter。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 是轴对齐矩形，(X1,Y1) 为左上角，(X2,Y2) 为右下角。
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (r Rect) Width() float64  { return r.X2 - r.X1 }
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Empty 报告矩形面积是否为零。
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Offset 返回整体平移后的矩形（不改变尺寸）。
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Include 扩展矩形使其包含点 p。
func (r Rect) Include(p Point) Rect {
	if p.X < r.X1 {
		r.X1 = p.X
	}
	if p.X > r.X2 {
		r.X2 = p.X
	}
	if p.Y < r.Y1 {
		r.Y1 = p.Y
	}
	if p.Y > r.Y2 {
		r.Y2 = p.Y
	}
	return r
}

// Union 返回同时包含 r 与 o 的最小矩形。
func (r Rect) Union(o Rect) Rect {
	return r.Include(Point{X: o.X1, Y: o.Y1}).Include(Point{X: o.X2, Y: o.Y2})
}

// Contains reports whether o lies completely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X1 >= r.X1 && o.Y1 >= r.Y1 && o.X2 <= r.X2 && o.Y2 <= r.Y2
}

// Word 是排版后的最小绘制单元：一个以空格切分出的词及其包围盒。
type Word struct {
	Text   string `json:"text"`
	Bounds Rect   `json:"bounds"`
}

// Result 保存一次排版的全部词与整体包围盒。
// Bounds 是对齐偏移之后所有词矩形的并集，光栅化目标尺寸以它为准。
type Result struct {
	Words  []Word `json:"words"`
	Bounds Rect   `json:"bounds"`
}

// Color 采用 0-1 归一化的 RGBA 分量。
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	Black = Color{A: 1}
	White = Color{R: 1, G: 1, B: 1, A: 1}
)
