package service

import (
	"context"
	"time"

	"CareerRAG/internal/modules/rag/application/dto/respond"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/pkg/xerr"
	"CareerRAG/pkg/zlog"

	"go.uber.org/zap"
)

// DocumentService 文档管理：列表、详情、删除、统计与健康检查。
// 所有读取只经过内存存储，数据库状态不影响任何一个读接口。
type DocumentService interface {
	List(filter store.ListFilter, page, limit int) *respond.DocumentListRespond
	Get(documentId string) (*respond.DocumentDetail, error)
	Delete(ctx context.Context, documentId string) error
	Stats() *respond.StatsRespond
	Health() *respond.HealthRespond
}

type documentService struct {
	store  *store.DocumentStore
	index  repository.VectorIndex
	syncer SyncService
}

func NewDocumentService(docStore *store.DocumentStore, index repository.VectorIndex, syncer SyncService) DocumentService {
	return &documentService{store: docStore, index: index, syncer: syncer}
}

func (s *documentService) List(filter store.ListFilter, page, limit int) *respond.DocumentListRespond {
	if limit <= 0 {
		limit = 20
	}
	docs, total := s.store.List(filter, page, limit)
	if page <= 0 {
		page = 1
	}

	summaries := make([]respond.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, toSummary(doc))
	}
	totalPages := (total + limit - 1) / limit
	return &respond.DocumentListRespond{
		Documents: summaries,
		Pagination: respond.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

func (s *documentService) Get(documentId string) (*respond.DocumentDetail, error) {
	doc, ok := s.store.Get(documentId)
	if !ok {
		return nil, xerr.ErrDocumentNotFound
	}
	return &respond.DocumentDetail{
		DocumentSummary: toSummary(doc),
		Content:         doc.ExtractedText,
		SyncError:       doc.SyncError,
	}, nil
}

// Delete 内存删除立即对所有读者可见，镜像删除尽力而为
func (s *documentService) Delete(ctx context.Context, documentId string) error {
	if ok := s.store.Delete(documentId); !ok {
		return xerr.ErrDocumentNotFound
	}
	s.index.Remove(documentId)
	s.syncer.DeleteFromMirror(ctx, documentId)
	zlog.Info("document deleted", zap.String("documentId", documentId))
	return nil
}

func (s *documentService) Stats() *respond.StatsRespond {
	st := s.store.Stats()
	return &respond.StatsRespond{
		TotalDocuments: st.TotalDocuments,
		TotalSize:      st.TotalSize,
		ByCategory:     st.ByCategory,
		ByStatus:       st.ByStatus,
		IndexedChunks:  s.index.Size(),
		DbConnected:    s.syncer.Connected(),
		LastUpdate:     time.Now().Format(time.RFC3339),
	}
}

func (s *documentService) Health() *respond.HealthRespond {
	return &respond.HealthRespond{
		Status:        "ok",
		DbConnected:   s.syncer.Connected(),
		Documents:     s.store.Len(),
		IndexedChunks: s.index.Size(),
		Timestamp:     time.Now().Format(time.RFC3339),
	}
}

func toSummary(doc *document.Document) respond.DocumentSummary {
	return respond.DocumentSummary{
		Id:            doc.Id,
		Title:         doc.Title(),
		SourceType:    string(doc.SourceType),
		Category:      doc.Metadata.Category,
		Tags:          doc.Metadata.Tags,
		Status:        string(doc.Status),
		DbSyncState:   string(doc.DbSyncState),
		ChunkCount:    len(doc.Chunks),
		ContentLength: len([]rune(doc.ExtractedText)),
		UploadedBy:    doc.Metadata.UploadedBy,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
