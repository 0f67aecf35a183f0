package service

import (
	"context"
	"testing"
	"time"

	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/internal/modules/rag/infrastructure/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedDoc(id string) *document.Document {
	now := time.Now()
	return &document.Document{
		Id:         id,
		SourceType: document.SourceLocalFile,
		Metadata:   document.Metadata{OriginalName: id + ".txt", UploadedBy: "anonymous"},
		Chunks: []document.Chunk{
			{ChunkId: id + "_0", Text: "text of " + id, Embedding: []float64{1, 0}, Order: 0},
		},
		ExtractedText: "text of " + id,
		Status:        document.StatusIndexed,
		DbSyncState:   document.SyncNotSynced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestSyncWorkerMirrorsDocument(t *testing.T) {
	docStore := store.NewDocumentStore()
	index := vectorindex.NewMemoryIndex()
	mirror := newFakeMirror()
	svc := NewSyncService(docStore, index, mirror, nil, 8, time.Second)
	svc.Start()
	defer svc.Stop()

	docStore.Put(indexedDoc("d1"))
	svc.Notify("d1")

	assert.Eventually(t, func() bool {
		doc, ok := docStore.Get("d1")
		return ok && doc.DbSyncState == document.SyncSynced && mirror.has("d1")
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, svc.Connected())
}

func TestSyncFailureMarksDocumentButKeepsStatus(t *testing.T) {
	docStore := store.NewDocumentStore()
	mirror := newFakeMirror()
	mirror.setFailing(true)
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), mirror, nil, 8, time.Second)
	svc.Start()
	defer svc.Stop()

	docStore.Put(indexedDoc("d1"))
	svc.Notify("d1")

	assert.Eventually(t, func() bool {
		doc, ok := docStore.Get("d1")
		return ok && doc.DbSyncState == document.SyncFailed
	}, 2*time.Second, 10*time.Millisecond)

	doc, _ := docStore.Get("d1")
	assert.Equal(t, document.StatusIndexed, doc.Status)
	assert.NotEmpty(t, doc.SyncError)
	assert.False(t, svc.Connected())
}

func TestNotifyQueueFullMarksSyncFailed(t *testing.T) {
	docStore := store.NewDocumentStore()
	// worker 不启动，队列长度 1：第二条通知必然溢出
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), newFakeMirror(), nil, 1, time.Second)

	docStore.Put(indexedDoc("d1"))
	docStore.Put(indexedDoc("d2"))
	svc.Notify("d1")
	svc.Notify("d2")

	doc, ok := docStore.Get("d2")
	require.True(t, ok)
	assert.Equal(t, document.SyncFailed, doc.DbSyncState)
	assert.Equal(t, "sync queue full", doc.SyncError)
}

func TestForceResyncIsIdempotent(t *testing.T) {
	docStore := store.NewDocumentStore()
	mirror := newFakeMirror()
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), mirror, nil, 8, time.Second)

	synced := indexedDoc("synced")
	synced.DbSyncState = document.SyncSynced
	failed := indexedDoc("failed")
	failed.DbSyncState = document.SyncFailed
	docStore.Put(synced)
	docStore.Put(failed)

	out := svc.ForceResync(context.Background(), false)
	assert.Equal(t, 2, out.TotalCount)
	assert.Equal(t, 1, out.SyncedCount)
	assert.Equal(t, 1, out.SkippedCount)
	assert.Zero(t, out.FailedCount)
	assert.True(t, mirror.has("failed"))

	// 第二次执行没有新工作可做
	out = svc.ForceResync(context.Background(), false)
	assert.Equal(t, 2, out.SkippedCount)
	assert.Zero(t, out.SyncedCount)

	// all=true 无视状态全量重写
	out = svc.ForceResync(context.Background(), true)
	assert.Equal(t, 2, out.SyncedCount)
	assert.Zero(t, out.SkippedCount)
}

func TestForceResyncRecordsFailures(t *testing.T) {
	docStore := store.NewDocumentStore()
	mirror := newFakeMirror()
	mirror.setFailing(true)
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), mirror, nil, 8, time.Second)

	docStore.Put(indexedDoc("d1"))
	out := svc.ForceResync(context.Background(), false)

	assert.Equal(t, 1, out.FailedCount)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "failed", out.Results[0].Status)
	assert.NotEmpty(t, out.Results[0].Error)

	doc, _ := docStore.Get("d1")
	assert.Equal(t, document.SyncFailed, doc.DbSyncState)
}

func TestLoadFromMirrorPopulatesStoreAndIndex(t *testing.T) {
	docStore := store.NewDocumentStore()
	index := vectorindex.NewMemoryIndex()
	mirror := newFakeMirror()
	mirror.preload = []*document.Document{indexedDoc("old1"), indexedDoc("old2")}

	// 内存里已有 old1 的新版本，回载不得覆盖
	existing := indexedDoc("old1")
	existing.ExtractedText = "newer in-memory version"
	docStore.Put(existing)

	svc := NewSyncService(docStore, index, mirror, nil, 8, time.Second)
	loaded, err := svc.LoadFromMirror(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 2, docStore.Len())

	doc, _ := docStore.Get("old1")
	assert.Equal(t, "newer in-memory version", doc.ExtractedText)
	assert.Equal(t, 1, index.Size(), "only the reloaded document is indexed here")
}

func TestEnsureAndResetConnection(t *testing.T) {
	docStore := store.NewDocumentStore()
	mirror := newFakeMirror()
	reopened := 0
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), mirror, func() error {
		reopened++
		mirror.setFailing(false)
		return nil
	}, 8, time.Second)

	assert.True(t, svc.EnsureConnection(context.Background()))
	assert.Zero(t, reopened, "healthy connection is not reopened")

	mirror.setFailing(true)
	assert.True(t, svc.EnsureConnection(context.Background()), "reopen recovers the connection")
	assert.Equal(t, 1, reopened)

	assert.True(t, svc.ResetConnection(context.Background()))
	assert.Equal(t, 2, reopened, "reset always rebuilds the connection")
}

func TestSyncDoesNotResurrectDocumentDeletedMidSync(t *testing.T) {
	docStore := store.NewDocumentStore()
	index := vectorindex.NewMemoryIndex()
	mirror := newFakeMirror()
	svc := NewSyncService(docStore, index, mirror, nil, 8, time.Second)

	doc := indexedDoc("d1")
	docStore.Put(doc)
	index.Upsert(doc.Id, doc.Chunks)

	// 同步读到文档之后、镜像写入生效之前，文档被删除且镜像行已软删
	mirror.onUpsert = func(documentId string) {
		mirror.deleted[documentId] = true
		docStore.Delete(documentId)
		index.Remove(documentId)
	}
	svc.(*syncService).syncOne("d1")

	assert.True(t, mirror.wasDeleted("d1"),
		"mirror row must stay inactive after the interleaved delete")
	_, ok := docStore.Get("d1")
	assert.False(t, ok)
}

func TestForceResyncSkipsDocumentDeletedMidSync(t *testing.T) {
	ds := store.NewDocumentStore()
	mirror := newFakeMirror()
	svc := NewSyncService(ds, vectorindex.NewMemoryIndex(), mirror, nil, 8, time.Second)

	ds.Put(indexedDoc("d1"))
	mirror.onUpsert = func(documentId string) {
		mirror.deleted[documentId] = true
		ds.Delete(documentId)
	}

	out := svc.ForceResync(context.Background(), true)
	assert.Zero(t, out.SyncedCount)
	assert.Equal(t, 1, out.SkippedCount)
	assert.True(t, mirror.wasDeleted("d1"))
}

func TestDeleteFromMirrorIsBestEffort(t *testing.T) {
	docStore := store.NewDocumentStore()
	mirror := newFakeMirror()
	svc := NewSyncService(docStore, vectorindex.NewMemoryIndex(), mirror, nil, 8, time.Second)

	svc.DeleteFromMirror(context.Background(), "d1")
	assert.True(t, mirror.wasDeleted("d1"))

	// 镜像故障时删除静默失败，不波及调用方
	mirror.setFailing(true)
	svc.DeleteFromMirror(context.Background(), "d2")
	assert.False(t, mirror.wasDeleted("d2"))
}
