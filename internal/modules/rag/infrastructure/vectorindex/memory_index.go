package vectorindex

import (
	"math"
	"sort"
	"sync"

	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
)

const (
	defaultTopK = 5
	maxTopK     = 50
)

type chunkVector struct {
	chunkId string
	order   int
	vector  []float64 // L2 归一化后存储
}

type docEntry struct {
	seq    uint64 // 写入序号，同分时新文档优先
	chunks []chunkVector
}

// MemoryIndex 进程内向量索引：归一化点积（余弦相似度）暴力检索。
// 作为读路径权威结构，任何外部服务不可用都不影响它工作。
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]*docEntry
	seq  uint64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]*docEntry)}
}

// Upsert 整体替换某文档的全部向量条目；没有向量的 chunk 被跳过
func (idx *MemoryIndex) Upsert(documentId string, chunks []document.Chunk) {
	if documentId == "" {
		return
	}
	entry := &docEntry{chunks: make([]chunkVector, 0, len(chunks))}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		entry.chunks = append(entry.chunks, chunkVector{
			chunkId: c.ChunkId,
			order:   c.Order,
			vector:  normalize(c.Embedding),
		})
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.seq++
	entry.seq = idx.seq
	idx.docs[documentId] = entry
}

// Remove 移除某文档的全部向量条目，幂等
func (idx *MemoryIndex) Remove(documentId string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.docs, documentId)
}

// TopK 返回与查询向量最相似的 k 个 chunk。
// k 夹紧到 1-50；条目不足 k 时返回全部。
// 排序完全确定：得分降序，平分时新写入的文档优先，再按 chunk 顺序。
func (idx *MemoryIndex) TopK(queryEmbedding []float64, k int) []repository.VectorHit {
	if k <= 0 {
		k = defaultTopK
	}
	if k > maxTopK {
		k = maxTopK
	}
	if len(queryEmbedding) == 0 {
		return []repository.VectorHit{}
	}
	query := normalize(queryEmbedding)

	type scored struct {
		repository.VectorHit
		seq   uint64
		order int
	}

	idx.mu.RLock()
	candidates := make([]scored, 0, 64)
	for docId, entry := range idx.docs {
		for _, cv := range entry.chunks {
			candidates = append(candidates, scored{
				VectorHit: repository.VectorHit{
					DocumentId: docId,
					ChunkId:    cv.chunkId,
					Score:      dot(query, cv.vector),
				},
				seq:   entry.seq,
				order: cv.order,
			})
		}
	}
	idx.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].seq != candidates[j].seq {
			return candidates[i].seq > candidates[j].seq
		}
		return candidates[i].order < candidates[j].order
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]repository.VectorHit, 0, k)
	for _, c := range candidates[:k] {
		out = append(out, c.VectorHit)
	}
	return out
}

// Size 索引中的 chunk 总数
func (idx *MemoryIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, entry := range idx.docs {
		n += len(entry.chunks)
	}
	return n
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return append([]float64(nil), v...)
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

var _ repository.VectorIndex = (*MemoryIndex)(nil)
