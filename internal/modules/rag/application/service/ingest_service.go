package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/application/dto/respond"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	"CareerRAG/internal/modules/rag/infrastructure/chunking"
	"CareerRAG/internal/modules/rag/infrastructure/extract"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/pkg/util"
	"CareerRAG/pkg/xerr"
	"CareerRAG/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

const defaultCategory = "general"

// SyncNotifier 入库完成后向持久化同步器投递通知
type SyncNotifier interface {
	Notify(documentId string)
}

// LocalFileInput 本地上传的单个文件
type LocalFileInput struct {
	FileName    string
	MimeType    string
	Data        []byte
	Category    string
	Tags        []string
	Description string
	UploadedBy  string
}

// IngestService 文档入库：抽取 → 切片 → 向量化 → 写入存储与索引。
// 单个文档内串行，文档之间可并发，互不加锁。
type IngestService interface {
	IngestLocalFile(ctx context.Context, in LocalFileInput) (*respond.UploadRespond, error)
	IngestBatch(ctx context.Context, ins []LocalFileInput) *respond.BatchUploadRespond
	IngestFeishu(ctx context.Context, sourceType document.SourceType, req request.FeishuUploadRequest, uploadedBy string) (*respond.UploadRespond, error)
}

type ingestService struct {
	extractor *extract.Extractor
	chunker   *chunking.SimpleChunker
	embedder  embedding.Embedder
	store     *store.DocumentStore
	index     repository.VectorIndex
	syncer    SyncNotifier
}

func NewIngestService(
	extractor *extract.Extractor,
	chunker *chunking.SimpleChunker,
	embedder embedding.Embedder,
	docStore *store.DocumentStore,
	index repository.VectorIndex,
	syncer SyncNotifier,
) IngestService {
	return &ingestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     docStore,
		index:     index,
		syncer:    syncer,
	}
}

func (s *ingestService) IngestLocalFile(ctx context.Context, in LocalFileInput) (*respond.UploadRespond, error) {
	meta := document.Metadata{
		OriginalName: in.FileName,
		Size:         int64(len(in.Data)),
		MimeType:     in.MimeType,
		UploadedBy:   in.UploadedBy,
		Category:     orDefault(in.Category, defaultCategory),
		Tags:         in.Tags,
		Description:  in.Description,
	}
	input := extract.Input{
		SourceType: document.SourceLocalFile,
		FileName:   in.FileName,
		MimeType:   in.MimeType,
		Data:       in.Data,
	}
	return s.ingest(ctx, input, meta)
}

func (s *ingestService) IngestBatch(ctx context.Context, ins []LocalFileInput) *respond.BatchUploadRespond {
	out := &respond.BatchUploadRespond{Results: make([]respond.BatchItemRespond, 0, len(ins))}
	for _, in := range ins {
		item := respond.BatchItemRespond{OriginalName: in.FileName}
		res, err := s.IngestLocalFile(ctx, in)
		if err != nil {
			item.Error = ErrMessage(err)
			out.Summary.Failed++
		} else {
			item.Success = true
			item.DocumentId = res.DocumentId
			item.Status = res.Status
			out.Summary.Success++
		}
		out.Results = append(out.Results, item)
	}
	out.Summary.Total = len(ins)
	return out
}

func (s *ingestService) IngestFeishu(ctx context.Context, sourceType document.SourceType, req request.FeishuUploadRequest, uploadedBy string) (*respond.UploadRespond, error) {
	meta := document.Metadata{
		URL:         req.FeishuUrl,
		UploadedBy:  uploadedBy,
		Category:    orDefault(req.Category, defaultCategory),
		Tags:        SplitTags(req.Tags),
		Description: req.Description,
	}
	input := extract.Input{
		SourceType: sourceType,
		URL:        req.FeishuUrl,
	}
	return s.ingest(ctx, input, meta)
}

// ingest 单文档入库主链路。
// 抽取失败直接返回错误，不留下任何文档记录；
// 抽取成功后的失败（向量化）落为 failed 文档，可查询可删除。
func (s *ingestService) ingest(ctx context.Context, in extract.Input, meta document.Metadata) (*respond.UploadRespond, error) {
	res, err := s.extractor.Extract(ctx, in)
	if err != nil {
		zlog.Warn("content extraction failed",
			zap.String("sourceType", string(in.SourceType)),
			zap.String("fileName", in.FileName),
			zap.Error(err))
		return nil, err
	}

	now := time.Now()
	doc := &document.Document{
		Id:            util.GenerateUUID(),
		SourceType:    in.SourceType,
		Metadata:      meta,
		ExtractedText: res.Text,
		Status:        document.StatusPending,
		DbSyncState:   document.SyncNotSynced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	texts, err := s.chunker.ChunkText(ctx, res.Text)
	if err != nil {
		// 递归切片不可用时退回确定性固定窗口
		texts = s.chunker.Chunk(res.Text)
	}

	chunks := make([]document.Chunk, 0, len(texts))
	failed := 0
	for i, text := range texts {
		vecs, embErr := s.embedder.EmbedStrings(ctx, []string{text})
		if embErr != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
			// 单个切片失败不拖垮整个文档，记数后跳过
			failed++
			zlog.Warn("chunk embedding failed",
				zap.String("documentId", doc.Id),
				zap.Int("chunkIndex", i),
				zap.Error(embErr))
			continue
		}
		chunks = append(chunks, document.Chunk{
			ChunkId:   fmt.Sprintf("%s_%d", doc.Id, i),
			Text:      text,
			Embedding: vecs[0],
			Order:     i,
		})
	}

	doc.FailedChunks = failed
	if len(chunks) > 0 {
		doc.Status = document.StatusIndexed
		doc.Chunks = chunks
	} else {
		doc.Status = document.StatusFailed
	}
	doc.UpdatedAt = time.Now()

	s.store.Put(doc)
	if doc.Status == document.StatusIndexed {
		s.index.Upsert(doc.Id, doc.Chunks)
	}
	s.syncer.Notify(doc.Id)

	zlog.Info("document ingested",
		zap.String("documentId", doc.Id),
		zap.String("sourceType", string(in.SourceType)),
		zap.String("status", string(doc.Status)),
		zap.Int("chunks", len(doc.Chunks)),
		zap.Int("failedChunks", failed))

	message := "文档入库成功"
	if doc.Status == document.StatusFailed {
		message = "文档向量化失败，未进入检索索引"
	}
	return &respond.UploadRespond{
		DocumentId:   doc.Id,
		Status:       string(doc.Status),
		ChunkCount:   len(doc.Chunks),
		FailedChunks: failed,
		Message:      message,
	}, nil
}

// SplitTags 逗号分隔的标签串拆分为去空白后的标签列表
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '，'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ErrMessage 取业务错误的用户可读消息
func ErrMessage(err error) string {
	var ce *xerr.CodeError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
