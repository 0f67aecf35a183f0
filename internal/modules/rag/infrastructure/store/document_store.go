package store

import (
	"sync"

	"CareerRAG/internal/modules/rag/domain/document"
)

// ListFilter 列表过滤条件：category 与 tags 为合取关系，tags 内部任一命中即可
type ListFilter struct {
	Category string
	Tags     []string
}

// Stats 文档统计
type Stats struct {
	TotalDocuments int            `json:"totalDocuments"`
	TotalSize      int64          `json:"totalSize"`
	ByCategory     map[string]int `json:"byCategory"`
	ByStatus       map[string]int `json:"byStatus"`
}

// DocumentStore 内存文档存储：读路径的唯一权威。
//
// 写入走整体替换（copy-then-swap），读取返回深拷贝，
// 因此检索与列表永远不会观察到写到一半的文档。
// 列表顺序为插入顺序；删除后其余文档相对顺序不变。
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]*document.Document
	order []string
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*document.Document)}
}

// Put 幂等 upsert：同 id 整体覆盖，新 id 追加到插入顺序末尾
func (s *DocumentStore) Put(doc *document.Document) {
	if doc == nil || doc.Id == "" {
		return
	}
	cloned := doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[cloned.Id]; !exists {
		s.order = append(s.order, cloned.Id)
	}
	s.docs[cloned.Id] = cloned
}

// Get 按 id 读取，返回深拷贝
func (s *DocumentStore) Get(documentId string) (*document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentId]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Delete 删除文档；重复删除不是错误，第二次返回 false
func (s *DocumentStore) Delete(documentId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[documentId]; !ok {
		return false
	}
	delete(s.docs, documentId)
	for i, id := range s.order {
		if id == documentId {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List 过滤 + 偏移分页。page 从 1 起；返回当页文档与过滤后的总数。
// 分页一致性是尽力而为的：迭代期间的并发删除可能让页边界漂移。
func (s *DocumentStore) List(filter ListFilter, page, pageSize int) ([]*document.Document, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*document.Document, 0, len(s.order))
	for _, id := range s.order {
		doc := s.docs[id]
		if doc == nil {
			continue
		}
		if filter.Category != "" && doc.Metadata.Category != filter.Category {
			continue
		}
		if !doc.HasTagAny(filter.Tags) {
			continue
		}
		matched = append(matched, doc)
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []*document.Document{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]*document.Document, 0, end-start)
	for _, doc := range matched[start:end] {
		out = append(out, doc.Clone())
	}
	return out, total
}

// All 返回全部文档的拷贝，按插入顺序（强制重同步使用）
func (s *DocumentStore) All() []*document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*document.Document, 0, len(s.order))
	for _, id := range s.order {
		if doc := s.docs[id]; doc != nil {
			out = append(out, doc.Clone())
		}
	}
	return out
}

// Len 当前文档数
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Stats 汇总统计
func (s *DocumentStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalDocuments: len(s.docs),
		ByCategory:     make(map[string]int),
		ByStatus:       make(map[string]int),
	}
	for _, doc := range s.docs {
		if doc.Metadata.Category != "" {
			st.ByCategory[doc.Metadata.Category]++
		}
		st.ByStatus[string(doc.Status)]++
		st.TotalSize += doc.Metadata.Size
	}
	return st
}
