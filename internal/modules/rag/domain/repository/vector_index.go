package repository

import "CareerRAG/internal/modules/rag/domain/document"

// VectorHit 向量检索命中结果
type VectorHit struct {
	DocumentId string
	ChunkId    string
	Score      float64
}

// VectorIndex 是 domain 层定义的"向量索引能力抽象"。
//
// 设计约束：
// 1) 索引是进程内权威结构，检索路径不依赖任何外部服务；
// 2) 条目只在文档到达 indexed 时写入，文档删除时整体移除；
// 3) TopK 的 k 由调用方给定并在实现内夹紧（1-50），条目不足时返回全部而非报错。
type VectorIndex interface {
	Upsert(documentId string, chunks []document.Chunk)
	Remove(documentId string)
	TopK(queryEmbedding []float64, k int) []VectorHit
	Size() int
}
