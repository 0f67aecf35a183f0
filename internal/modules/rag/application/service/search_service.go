package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/application/dto/respond"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/pkg/util"
	"CareerRAG/pkg/xerr"
	"CareerRAG/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

const snippetRunes = 500

const summaryPromptTemplate = `你是一名职业发展顾问。请根据以下资料回答用户的问题。

用户问题：%s

相关资料：
%s

要求：只依据给出的资料作答，条理清晰，使用中文；资料不足以回答时请明确说明。`

// SearchService 语义检索编排：向量化查询 → TopK → 过滤 → AI 摘要。
// 摘要是增强而非依赖：摘要模型失败只降级，检索结果照常返回。
type SearchService interface {
	Search(ctx context.Context, req request.SearchRequest) (*respond.SearchRespond, error)
}

type searchService struct {
	store    *store.DocumentStore
	index    repository.VectorIndex
	embedder embedding.Embedder
	// oracle 摘要模型，可为 nil（未配置时不生成摘要）
	oracle        repository.TextOracle
	oracleTimeout time.Duration
}

func NewSearchService(
	docStore *store.DocumentStore,
	index repository.VectorIndex,
	embedder embedding.Embedder,
	oracle repository.TextOracle,
	oracleTimeout time.Duration,
) SearchService {
	if oracleTimeout <= 0 {
		oracleTimeout = 2 * time.Minute
	}
	return &searchService{
		store:         docStore,
		index:         index,
		embedder:      embedder,
		oracle:        oracle,
		oracleTimeout: oracleTimeout,
	}
}

func (s *searchService) Search(ctx context.Context, req request.SearchRequest) (*respond.SearchRespond, error) {
	started := time.Now()
	out := &respond.SearchRespond{
		QueryId: util.GenerateShortUUID(),
		Query:   req.Query,
		Results: []respond.SearchResultItem{},
	}

	query := strings.TrimSpace(req.Query)
	if query == "" || s.index.Size() == 0 {
		// 空查询与空索引都是正常的空结果，不是错误
		out.DurationMs = time.Since(started).Milliseconds()
		return out, nil
	}

	embedStart := time.Now()
	vecs, err := s.embedder.EmbedStrings(ctx, []string{query})
	out.EmbeddingMs = time.Since(embedStart).Milliseconds()
	if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
		zlog.Error("query embedding failed",
			zap.String("queryId", out.QueryId), zap.Error(err))
		return nil, xerr.ErrEmbeddingFailed
	}

	searchStart := time.Now()
	hits := s.index.TopK(vecs[0], req.Limit)
	out.SearchMs = time.Since(searchStart).Milliseconds()

	// 过滤只收窄相似度排序的结果，从不改变相对顺序
	for _, hit := range hits {
		doc, ok := s.store.Get(hit.DocumentId)
		if !ok {
			// 索引与存储之间的瞬时不一致（并发删除），跳过即可
			continue
		}
		if req.Category != "" && doc.Metadata.Category != req.Category {
			continue
		}
		if !doc.HasTagAny(req.Tags) {
			continue
		}
		out.Results = append(out.Results, respond.SearchResultItem{
			DocumentId: doc.Id,
			ChunkId:    hit.ChunkId,
			Title:      doc.Title(),
			Snippet:    truncateRunes(doc.ExtractedText, snippetRunes),
			ChunkText:  chunkTextById(doc.Chunks, hit.ChunkId),
			Score:      hit.Score,
			SourceType: string(doc.SourceType),
			Category:   doc.Metadata.Category,
			Tags:       doc.Metadata.Tags,
		})
	}
	out.TotalFound = len(out.Results)

	if s.oracle != nil && len(out.Results) > 0 {
		summaryStart := time.Now()
		summary, sumErr := s.summarize(ctx, query, out.Results)
		out.SummaryMs = time.Since(summaryStart).Milliseconds()
		if sumErr != nil {
			out.SummaryDegraded = true
			zlog.Warn("summary generation failed, returning results without summary",
				zap.String("queryId", out.QueryId), zap.Error(sumErr))
		} else {
			out.AiSummary = summary
		}
	}

	out.DurationMs = time.Since(started).Milliseconds()
	zlog.Info("search completed",
		zap.String("queryId", out.QueryId),
		zap.Int("results", out.TotalFound),
		zap.Bool("summaryDegraded", out.SummaryDegraded),
		zap.Int64("durationMs", out.DurationMs))
	return out, nil
}

func (s *searchService) summarize(ctx context.Context, query string, results []respond.SearchResultItem) (string, error) {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. 【%s】%s\n\n", i+1, r.Title, r.ChunkText)
	}
	octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()
	return s.oracle.Generate(octx, fmt.Sprintf(summaryPromptTemplate, query, sb.String()))
}

func chunkTextById(chunks []document.Chunk, chunkId string) string {
	for _, c := range chunks {
		if c.ChunkId == chunkId {
			return c.Text
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
