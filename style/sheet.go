package style

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ByLCY/scribe/layout"
)

// Sheet 是调用方持有的具名样式表。
type Sheet struct {
	styles map[string]Style
}

func NewSheet() *Sheet { return &Sheet{styles: map[string]Style{}} }

// Add 合并 st 到名为 name 的样式中，已有的同名键被覆盖。
func (s *Sheet) Add(name string, st Style) {
	dst, ok := s.styles[name]
	if !ok {
		dst = Style{}
		s.styles[name] = dst
	}
	maps.Copy(dst, st)
}

// Get 返回样式的副本。
func (s *Sheet) Get(name string) (Style, bool) {
	st, ok := s.styles[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(st), true
}

// Names 按字典序返回所有样式名。
func (s *Sheet) Names() []string {
	return slices.Sorted(maps.Keys(s.styles))
}

// Merge 把 other 中的样式依次合并进来。
func (s *Sheet) Merge(other *Sheet) {
	if other == nil {
		return
	}
	for name, st := range other.styles {
		s.Add(name, st)
	}
}

// Apply 把名为 name 的样式应用到 e。
func (s *Sheet) Apply(e *layout.Engine, name string, loader FontLoader) error {
	st, ok := s.styles[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return Apply(e, st, loader)
}

// LoadJSON 读取形如 {"name": {"font": "...", "size": 16}} 的 JSON 样式表。
func LoadJSON(r io.Reader) (*Sheet, error) {
	var raw map[string]Style
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析 JSON 样式表失败: %w", err)
	}
	sheet := NewSheet()
	for name, st := range raw {
		sheet.Add(name, st)
	}
	return sheet, nil
}

// Load 按扩展名选择解析方式：.json 走 JSON，其余按 DSL 解析。
func Load(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开样式表 %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(file)
	}
	return Parse(file)
}

// LoadAll 依次加载多个样式表并合并，后面文件中的键覆盖前面的。
func LoadAll(paths ...string) (*Sheet, error) {
	sheet := NewSheet()
	for _, p := range paths {
		next, err := Load(p)
		if err != nil {
			return nil, err
		}
		sheet.Merge(next)
	}
	return sheet, nil
}
