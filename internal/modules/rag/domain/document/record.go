package document

import "time"

// RAGDocumentRecord MySQL 镜像行：一行对应一个文档，切片与向量内嵌为 JSON。
// 删除采用软删除（record_status = inactive），与强制重同步的 upsert 语义兼容。
type RAGDocumentRecord struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DocumentId   string    `gorm:"column:document_id;type:char(36);not null;uniqueIndex:uniq_rag_document"`
	SourceType   string    `gorm:"column:source_type;type:varchar(30);not null"`
	Title        string    `gorm:"column:title;type:varchar(255);not null"`
	FileName     string    `gorm:"column:file_name;type:varchar(255)"`
	URL          string    `gorm:"column:url;type:varchar(512)"`
	FileSize     int64     `gorm:"column:file_size;type:bigint;not null;default:0"`
	MimeType     string    `gorm:"column:mime_type;type:varchar(100)"`
	UploadedBy   string    `gorm:"column:uploaded_by;type:varchar(64);not null"`
	Category     string    `gorm:"column:category;type:varchar(64);not null;index:idx_rag_document_category"`
	TagsJson     string    `gorm:"column:tags_json;type:json"`
	Content      string    `gorm:"column:content;type:mediumtext"`
	ChunksJson   string    `gorm:"column:chunks_json;type:longtext"`
	ChunkCount   int       `gorm:"column:chunk_count;type:int;not null;default:0"`
	DocStatus    string    `gorm:"column:doc_status;type:varchar(20);not null"`
	RecordStatus string    `gorm:"column:record_status;type:varchar(20);not null;default:'active';index:idx_rag_document_status"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (RAGDocumentRecord) TableName() string { return "rag_document" }
