package chunking

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// SimpleChunker 将文本切分为固定大小、带重叠的多个片段。
// 切分结果只由输入文本决定：同一段文本永远得到同一组边界。
type SimpleChunker struct {
	ChunkSize    int
	ChunkOverlap int
	useRecursive bool

	initOnce      sync.Once
	initErr       error
	recursiveImpl document.Transformer
}

// NewSimpleChunker 创建一个切片器，并设置切片大小与重叠长度
func NewSimpleChunker(size, overlap int) *SimpleChunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &SimpleChunker{ChunkSize: size, ChunkOverlap: overlap}
}

// NewRecursiveChunker 递归切片模式：按段落/句读符优先断句
func NewRecursiveChunker(size, overlap int) *SimpleChunker {
	c := NewSimpleChunker(size, overlap)
	c.useRecursive = true
	return c
}

// Chunk 基于 rune（字符）数量切分文本，确保中文等多字节字符不会被截断
func (c *SimpleChunker) Chunk(text string) []string {
	if text == "" {
		return []string{}
	}

	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= c.ChunkSize {
		return []string{text}
	}

	var chunks []string
	step := c.ChunkSize - c.ChunkOverlap

	// 理论上构造函数已保证 step > 0；这里兜底，避免出现无法推进的情况
	if step <= 0 {
		step = 1
	}

	for i := 0; i < totalLen; i += step {
		end := int(math.Min(float64(i+c.ChunkSize), float64(totalLen)))

		chunkRunes := runes[i:end]
		chunks = append(chunks, string(chunkRunes))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// ChunkText 对单段文本切片；递归模式失败时回退到固定窗口切分
func (c *SimpleChunker) ChunkText(ctx context.Context, text string) ([]string, error) {
	if !c.useRecursive {
		return c.Chunk(text), nil
	}
	if text == "" {
		return []string{}, nil
	}

	c.initOnce.Do(func() {
		impl, err := recursive.NewSplitter(ctx, &recursive.Config{
			ChunkSize:   c.ChunkSize,
			OverlapSize: c.ChunkOverlap,
			Separators:  []string{"\n\n", "\n", "。", "！", "？", "；", "，", " "},
			LenFunc: func(s string) int {
				return len([]rune(s))
			},
			KeepType: recursive.KeepTypeEnd,
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.recursiveImpl = impl
	})
	if c.initErr != nil {
		return nil, c.initErr
	}
	if c.recursiveImpl == nil {
		return nil, fmt.Errorf("recursive splitter not initialized")
	}

	frags, err := c.recursiveImpl.Transform(ctx, []*schema.Document{{Content: text}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		if f == nil || f.Content == "" {
			continue
		}
		out = append(out, f.Content)
	}
	return out, nil
}
