package layout

import (
	"encoding/json"
	"os"
)

// debugDump 是调试 JSON 的顶层结构，附带排版参数便于对照。
type debugDump struct {
	Config Config   `json:"config"`
	Blocks []string `json:"blocks"`
	Result Result   `json:"result"`
}

// WriteDebugJSON 排版后把词坐标与包围盒输出为 JSON，便于调试或可视化。
func WriteDebugJSON(e *Engine, path string) error {
	if e == nil {
		return nil
	}
	res, err := e.Layout()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(debugDump{Config: e.Config(), Blocks: e.Blocks(), Result: res}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
