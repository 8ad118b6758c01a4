package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Key 标识一个已加载的字体：同一文件在不同字号下是不同的条目。
type Key struct {
	Path string
	Size float64
}

func (k Key) String() string { return fmt.Sprintf("%s@%g", k.Path, k.Size) }

// Cache 以 (path, size) 为键缓存各后端的字体句柄。
//
// 每个键最多加载一次；条目只增不改，也不会被淘汰，因此多个独立的排版引擎可以共享同一个 Cache。
// Cache 由调用方创建并注入到加载器中，没有进程级的全局实例。
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[Key]T
}

// NewCache 创建空缓存。
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{entries: map[Key]T{}}
}

// Get 返回已缓存的条目。
func (c *Cache[T]) Get(k Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[k]
	return v, ok
}

// GetOrLoad 返回 k 对应的条目，不存在时调用 load 并写入缓存。
// load 在持锁期间执行，保证同一个键不会被并发加载两次；load 失败时不写入。
func (c *Cache[T]) GetOrLoad(k Key, load func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[Key]T{}
	}
	if v, ok := c.entries[k]; ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[k] = v
	return v, nil
}

// Len 返回缓存条目数。
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ReadFont 读取字体字节：内置字体直接返回，其余路径相对于 baseDir 解析。
func ReadFont(baseDir, path string) ([]byte, error) {
	if path == "" {
		path = DefaultFont
	}
	if IsBuiltin(path) {
		return Load(path)
	}
	if baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", path)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}
