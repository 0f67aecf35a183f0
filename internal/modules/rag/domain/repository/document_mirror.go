package repository

import (
	"context"

	"CareerRAG/internal/modules/rag/domain/document"
)

// DocumentMirror 负责文档在数据库中的异步镜像（write-behind）。
//
// 镜像只是尽力而为的持久层：任何写入失败都记录在文档的 DbSyncState 上，
// 不回滚内存状态，也绝不阻塞入库请求的读写路径。
type DocumentMirror interface {
	// UpsertDocument 以 document_id 为键幂等写入，可安全重试
	UpsertDocument(ctx context.Context, doc *document.Document) error

	// DeleteDocument 软删除镜像行，幂等
	DeleteDocument(ctx context.Context, documentId string) error

	// LoadActiveDocuments 回载所有未删除的镜像行（进程重启后恢复内存状态）
	LoadActiveDocuments(ctx context.Context) ([]*document.Document, error)

	// Ping 探测数据库连通性
	Ping(ctx context.Context) error
}
