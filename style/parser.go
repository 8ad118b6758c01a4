package style

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	styleLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "HashComment", Pattern: `#(?:[ \t][^\n]*)?`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:px|pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[][{}:;,]`},
	})

	sheetParser = participle.MustBuild[File](
		participle.Lexer(styleLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File 是样式表源文件的语法树根节点。
type File struct {
	Decls []*Decl `parser:"@@*"`
}

// Decl 是一个具名样式块：name { key: value ... }。
type Decl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"@Ident '{'"`
	Entries []*Entry       `parser:"@@* '}'"`
}

// Entry 是块内的一条 key: value，可选以 ';' 或 ',' 结尾。
type Entry struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@ ( ';' | ',' )?"`
}

// Value 表示属性值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue 对应 `[ ... ]`，元素之间的逗号可省略。
type ArrayValue struct {
	Values []*Value `parser:"'[' ( @@ ','? )* ']'"`
}

// StringLiteral 在捕获时按 Go 字符串规则去掉引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ParseFile 只做语法分析，返回 AST。
func ParseFile(r io.Reader) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return sheetParser.ParseString("", stripLineComments(string(src)))
}

// colorLine 匹配只有一个颜色值的行，例如多行数组中的元素。
var colorLine = regexp.MustCompile(`^[ \t]*#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})[ \t]*[,;\]}]?[ \t]*\r?$`)

// stripLineComments 清空以 '#' 开头的整行注释，行号保持不变。
// 行内的 '#' 注释必须后跟空白，否则会被当成颜色值。
func stripLineComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") && !colorLine.MatchString(line) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// Parse 解析样式表 DSL 并转换为 Sheet。
func Parse(r io.Reader) (*Sheet, error) {
	file, err := ParseFile(r)
	if err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return file.Sheet()
}

// ParseString parses style sheet DSL from a string.
func ParseString(input string) (*Sheet, error) {
	return Parse(strings.NewReader(input))
}

// Sheet 把 AST 转换为样式表；同名块按出现顺序合并，后写的键覆盖先写的。
func (f *File) Sheet() (*Sheet, error) {
	sheet := NewSheet()
	for _, decl := range f.Decls {
		st := Style{}
		for _, entry := range decl.Entries {
			v, err := entry.Value.Interface()
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", entry.Pos, decl.Name, entry.Key, err)
			}
			st[entry.Key] = v
		}
		sheet.Add(decl.Name, st)
	}
	return sheet, nil
}

// Interface 把值转换成与 encoding/json 解码结果相同的形态：
// 无单位数字为 float64，带单位数字与标识符为 string，数组为 []any，
// 十六进制颜色展开为 [r, g, b] 或 [r, g, b, alpha]。
func (v *Value) Interface() (any, error) {
	switch {
	case v == nil:
		return nil, nil
	case v.String != nil:
		return string(*v.String), nil
	case v.Number != nil:
		raw := *v.Number
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, nil
		}
		return raw, nil
	case v.Color != nil:
		return hexColor(*v.Color)
	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			iv, err := item.Interface()
			if err != nil {
				return nil, err
			}
			out = append(out, iv)
		}
		return out, nil
	case v.Ident != nil:
		return *v.Ident, nil
	default:
		return nil, nil
	}
}

func hexColor(raw string) ([]any, error) {
	hex := strings.TrimPrefix(raw, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	var channels []any
	for i := 0; i+1 < len(hex); i += 2 {
		n, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("颜色 %s 无效: %w", raw, err)
		}
		channels = append(channels, float64(n))
	}
	if len(channels) == 4 {
		// alpha 不参与 /255 归一化，这里先换算到 [0,1]
		channels[3] = channels[3].(float64) / 255
	}
	return channels, nil
}
