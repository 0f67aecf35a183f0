package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	hashEmbed "CareerRAG/internal/modules/rag/infrastructure/embedding"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/internal/modules/rag/infrastructure/vectorindex"
	"CareerRAG/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchFixture struct {
	store    *store.DocumentStore
	index    *vectorindex.MemoryIndex
	embedder *hashEmbed.HashEmbedder
}

func newSearchFixture() *searchFixture {
	return &searchFixture{
		store:    store.NewDocumentStore(),
		index:    vectorindex.NewMemoryIndex(),
		embedder: hashEmbed.NewHashEmbedder(128),
	}
}

func (f *searchFixture) service(t *testing.T, oracle repository.TextOracle) SearchService {
	t.Helper()
	return NewSearchService(f.store, f.index, f.embedder, oracle, time.Second)
}

// addDoc 把每段文本作为一个 chunk 向量化后入库
func (f *searchFixture) addDoc(t *testing.T, id, category string, tags []string, chunkTexts ...string) {
	t.Helper()
	chunks := make([]document.Chunk, 0, len(chunkTexts))
	for i, text := range chunkTexts {
		vecs, err := f.embedder.EmbedStrings(context.Background(), []string{text})
		require.NoError(t, err)
		chunks = append(chunks, document.Chunk{
			ChunkId:   id + "_" + string(rune('0'+i)),
			Text:      text,
			Embedding: vecs[0],
			Order:     i,
		})
	}
	now := time.Now()
	doc := &document.Document{
		Id:         id,
		SourceType: document.SourceLocalFile,
		Metadata: document.Metadata{
			OriginalName: id + ".txt",
			Category:     category,
			Tags:         tags,
		},
		ExtractedText: chunkTexts[0],
		Chunks:        chunks,
		Status:        document.StatusIndexed,
		DbSyncState:   document.SyncSynced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.store.Put(doc)
	f.index.Upsert(id, chunks)
}

func TestSearchReturnsMostRelevantChunk(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "career", "career", nil, "如何写好一份简历", "面试技巧与注意事项")
	f.addDoc(t, "cooking", "life", nil, "红烧肉的家常做法")
	svc := f.service(t, nil)

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "简历怎么写"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "career", out.Results[0].DocumentId)
	assert.Equal(t, "career_0", out.Results[0].ChunkId)
	assert.Equal(t, "如何写好一份简历", out.Results[0].ChunkText)
	assert.NotEmpty(t, out.QueryId)
}

func TestSearchLimitRestrictsResults(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "a", nil, "职业规划第一步")
	f.addDoc(t, "d2", "a", nil, "职业规划第二步")
	f.addDoc(t, "d3", "a", nil, "职业规划第三步")
	svc := f.service(t, nil)

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "职业规划", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
}

func TestSearchFilterNarrowsWithoutReordering(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "career", []string{"简历"}, "简历排版模板")
	f.addDoc(t, "d2", "life", nil, "简历照片怎么拍")
	f.addDoc(t, "d3", "career", nil, "简历自我评价写法")
	svc := f.service(t, nil)

	unfiltered, err := svc.Search(context.Background(), request.SearchRequest{Query: "简历"})
	require.NoError(t, err)
	filtered, err := svc.Search(context.Background(), request.SearchRequest{Query: "简历", Category: "career"})
	require.NoError(t, err)

	require.NotEmpty(t, filtered.Results)
	// 过滤结果必须是未过滤结果的保序子序列
	pos := 0
	for _, fr := range filtered.Results {
		assert.Equal(t, "career", fr.Category)
		found := false
		for ; pos < len(unfiltered.Results); pos++ {
			if unfiltered.Results[pos].ChunkId == fr.ChunkId {
				found = true
				pos++
				break
			}
		}
		assert.True(t, found, "filtered hit %s out of order", fr.ChunkId)
	}

	tagged, err := svc.Search(context.Background(), request.SearchRequest{Query: "简历", Tags: []string{"简历"}})
	require.NoError(t, err)
	require.Len(t, tagged.Results, 1)
	assert.Equal(t, "d1", tagged.Results[0].DocumentId)
}

func TestSearchSummarySuccess(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "career", nil, "跳槽前需要评估的五件事")
	svc := f.service(t, &fakeOracle{reply: "总结：先评估再行动"})

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "跳槽评估"})
	require.NoError(t, err)
	assert.Equal(t, "总结：先评估再行动", out.AiSummary)
	assert.False(t, out.SummaryDegraded)
}

func TestSearchSummaryFailureDegradesGracefully(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "career", nil, "跳槽前需要评估的五件事")
	svc := f.service(t, &fakeOracle{err: errors.New("model timeout")})

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "跳槽评估"})
	require.NoError(t, err, "summary failure must not fail the search")
	assert.NotEmpty(t, out.Results)
	assert.Empty(t, out.AiSummary)
	assert.True(t, out.SummaryDegraded)
}

func TestSearchWithoutOracleSkipsSummary(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "career", nil, "内推渠道整理")
	svc := f.service(t, nil)

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "内推"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Results)
	assert.Empty(t, out.AiSummary)
	assert.False(t, out.SummaryDegraded)
}

func TestSearchEmptyQueryAndEmptyIndex(t *testing.T) {
	f := newSearchFixture()
	svc := f.service(t, nil)

	out, err := svc.Search(context.Background(), request.SearchRequest{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, out.Results)

	out, err = svc.Search(context.Background(), request.SearchRequest{Query: "什么都没有"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Zero(t, out.TotalFound)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	f := newSearchFixture()
	f.addDoc(t, "d1", "career", nil, "内容")
	failing := &flakyEmbedder{inner: f.embedder, fail: func(string) bool { return true }}
	svc := NewSearchService(f.store, f.index, failing, nil, time.Second)

	_, err := svc.Search(context.Background(), request.SearchRequest{Query: "内容"})
	var ce *xerr.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, xerr.EmbeddingFailed, ce.Code)
}
