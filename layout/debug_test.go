package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDebugJSON(t *testing.T) {
	e := newTestEngine(&stubMetrics{width: 50, height: 20}, func(c *Config) { c.Alignment = AlignRight })
	e.SetText("ab cd ef gh")

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(e, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	if !strings.Contains(string(data), `"align": "right"`) {
		t.Fatalf("对齐方式应以字符串输出: %s", data)
	}

	var dump struct {
		Blocks []string `json:"blocks"`
		Result Result   `json:"result"`
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("解析调试 JSON 失败: %v", err)
	}
	if len(dump.Result.Words) != 4 || len(dump.Blocks) != 1 {
		t.Fatalf("调试 JSON 内容不完整: %+v", dump)
	}
	if dump.Result.Bounds != (Rect{X1: 0, Y1: 0, X2: 120, Y2: 40}) {
		t.Fatalf("调试 JSON 包围盒错误: %+v", dump.Result.Bounds)
	}
}
