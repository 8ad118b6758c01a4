package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix 标记内置字体路径，例如 "builtin:go-regular"。
const BuiltinPrefix = "builtin:"

// DefaultFont 是未指定字体时使用的内置字体。
const DefaultFont = BuiltinPrefix + "go-regular"

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-mono":        gomono.TTF,
}

// IsBuiltin 报告 path 是否指向内置字体（"builtin:" 或 "built-in:" 前缀）。
func IsBuiltin(path string) bool {
	return strings.HasPrefix(path, BuiltinPrefix) || strings.HasPrefix(path, "built-in:")
}

// Load 返回内置字体的字节数据，path 可写为 "builtin:go-bold" 或直接 "go-bold"。
func Load(path string) ([]byte, error) {
	name := strings.TrimPrefix(strings.TrimPrefix(path, "built-in:"), BuiltinPrefix)
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出全部内置字体名，按字母排序。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
