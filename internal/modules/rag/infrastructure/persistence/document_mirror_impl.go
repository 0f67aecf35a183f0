package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentMirrorImpl struct {
	// db 以函数形式注入：reset-db-connection 之后拿到的是新连接，
	// 未连接时返回 nil，由各方法按同步失败处理
	db func() *gorm.DB
}

func NewDocumentMirror(db func() *gorm.DB) repository.DocumentMirror {
	return &documentMirrorImpl{db: db}
}

func (m *documentMirrorImpl) conn() (*gorm.DB, error) {
	if m.db == nil {
		return nil, fmt.Errorf("database not configured")
	}
	db := m.db()
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return db, nil
}

// UpsertDocument 以 document_id 唯一键幂等写入（ON DUPLICATE KEY UPDATE）
func (m *documentMirrorImpl) UpsertDocument(ctx context.Context, doc *document.Document) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	if doc == nil || doc.Id == "" {
		return fmt.Errorf("invalid document")
	}

	tagsJson, err := json.Marshal(doc.Metadata.Tags)
	if err != nil {
		return err
	}
	chunksJson, err := json.Marshal(doc.Chunks)
	if err != nil {
		return err
	}

	record := &document.RAGDocumentRecord{
		DocumentId:   doc.Id,
		SourceType:   string(doc.SourceType),
		Title:        doc.Title(),
		FileName:     doc.Metadata.OriginalName,
		URL:          doc.Metadata.URL,
		FileSize:     doc.Metadata.Size,
		MimeType:     doc.Metadata.MimeType,
		UploadedBy:   doc.Metadata.UploadedBy,
		Category:     doc.Metadata.Category,
		TagsJson:     string(tagsJson),
		Content:      doc.ExtractedText,
		ChunksJson:   string(chunksJson),
		ChunkCount:   len(doc.Chunks),
		DocStatus:    string(doc.Status),
		RecordStatus: "active",
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    time.Now(),
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_type", "title", "file_name", "url", "file_size", "mime_type",
			"uploaded_by", "category", "tags_json", "content", "chunks_json",
			"chunk_count", "doc_status", "record_status", "updated_at",
		}),
	}).Create(record).Error
}

// DeleteDocument 软删除：镜像行标记 inactive，幂等
func (m *documentMirrorImpl) DeleteDocument(ctx context.Context, documentId string) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&document.RAGDocumentRecord{}).
		Where("document_id = ?", documentId).
		Updates(map[string]any{"record_status": "inactive", "updated_at": time.Now()}).Error
}

// LoadActiveDocuments 回载全部 active 镜像行，按创建顺序
func (m *documentMirrorImpl) LoadActiveDocuments(ctx context.Context) ([]*document.Document, error) {
	db, err := m.conn()
	if err != nil {
		return nil, err
	}
	var records []document.RAGDocumentRecord
	if err := db.WithContext(ctx).
		Where("record_status = ?", "active").
		Order("id asc").
		Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]*document.Document, 0, len(records))
	for _, r := range records {
		var tags []string
		_ = json.Unmarshal([]byte(r.TagsJson), &tags)
		var chunks []document.Chunk
		_ = json.Unmarshal([]byte(r.ChunksJson), &chunks)

		out = append(out, &document.Document{
			Id:         r.DocumentId,
			SourceType: document.SourceType(r.SourceType),
			Metadata: document.Metadata{
				OriginalName: r.FileName,
				URL:          r.URL,
				Size:         r.FileSize,
				MimeType:     r.MimeType,
				UploadedBy:   r.UploadedBy,
				Category:     r.Category,
				Tags:         tags,
			},
			ExtractedText: r.Content,
			Chunks:        chunks,
			Status:        document.Status(r.DocStatus),
			DbSyncState:   document.SyncSynced,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out, nil
}

// Ping 探测数据库连通性
func (m *documentMirrorImpl) Ping(ctx context.Context) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
