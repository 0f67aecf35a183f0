package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"CareerRAG/internal/modules/rag/application/dto/respond"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/pkg/zlog"

	"go.uber.org/zap"
)

// SyncService 持久化同步器：把内存文档异步镜像到 MySQL。
//
// 入库请求只向队列投递通知，绝不等待数据库；
// 数据库不可达时文档标记 sync_failed，由强制重同步补偿。
type SyncService interface {
	Start()
	Stop()

	// Notify 投递一条同步通知，非阻塞；队列满时文档直接标记 sync_failed
	Notify(documentId string)

	// Connected 最近一次数据库操作是否成功
	Connected() bool

	// EnsureConnection 探测数据库连通性，失败时尝试重建连接
	EnsureConnection(ctx context.Context) bool

	// ResetConnection 无条件丢弃并重建数据库连接
	ResetConnection(ctx context.Context) bool

	// ForceResync 重同步 sync_failed / not_synced 的文档；all 为 true 时全量重写
	ForceResync(ctx context.Context, all bool) *respond.SyncRespond

	// DeleteFromMirror 尽力而为的镜像软删除，失败只记日志
	DeleteFromMirror(ctx context.Context, documentId string)

	// LoadFromMirror 启动时从镜像回载文档到内存存储与向量索引
	LoadFromMirror(ctx context.Context) (int, error)
}

type syncService struct {
	store  *store.DocumentStore
	index  repository.VectorIndex
	mirror repository.DocumentMirror
	// reopen 重建数据库连接（reset-db-connection 使用），可为 nil
	reopen    func() error
	opTimeout time.Duration

	notifyCh  chan string
	stopCh    chan struct{}
	wg        sync.WaitGroup
	connected atomic.Bool
}

func NewSyncService(
	docStore *store.DocumentStore,
	index repository.VectorIndex,
	mirror repository.DocumentMirror,
	reopen func() error,
	queueSize int,
	opTimeout time.Duration,
) SyncService {
	if queueSize <= 0 {
		queueSize = 256
	}
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &syncService{
		store:     docStore,
		index:     index,
		mirror:    mirror,
		reopen:    reopen,
		opTimeout: opTimeout,
		notifyCh:  make(chan string, queueSize),
		stopCh:    make(chan struct{}),
	}
}

func (s *syncService) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop 停止 worker，退出前清空队列中剩余的通知
func (s *syncService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *syncService) loop() {
	defer s.wg.Done()
	for {
		select {
		case id := <-s.notifyCh:
			s.syncOne(id)
		case <-s.stopCh:
			for {
				select {
				case id := <-s.notifyCh:
					s.syncOne(id)
				default:
					return
				}
			}
		}
	}
}

func (s *syncService) Notify(documentId string) {
	select {
	case s.notifyCh <- documentId:
	default:
		s.markState(documentId, document.SyncFailed, "sync queue full")
		zlog.Warn("sync queue full, document marked sync_failed",
			zap.String("documentId", documentId))
	}
}

func (s *syncService) Connected() bool {
	return s.connected.Load()
}

func (s *syncService) syncOne(documentId string) {
	doc, ok := s.store.Get(documentId)
	if !ok {
		// 同步前文档已被删除
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	err := s.mirror.UpsertDocument(ctx, doc)
	cancel()
	if err != nil {
		s.connected.Store(false)
		s.markState(documentId, document.SyncFailed, err.Error())
		zlog.Warn("document sync failed",
			zap.String("documentId", documentId), zap.Error(err))
		return
	}
	s.connected.Store(true)
	if !s.markState(documentId, document.SyncSynced, "") {
		// 同步期间文档被删除：撤销刚写入的镜像行，否则重启回载会复活它
		s.DeleteFromMirror(context.Background(), documentId)
		return
	}
	zlog.Info("document synced to mirror", zap.String("documentId", documentId))
}

// markState 写回同步状态。写回前重新读取：
// 同步期间文档可能已被删除或重新入库，删除时返回 false 由调用方处理。
func (s *syncService) markState(documentId string, state document.SyncState, syncErr string) bool {
	cur, ok := s.store.Get(documentId)
	if !ok {
		return false
	}
	cur.DbSyncState = state
	cur.SyncError = syncErr
	cur.UpdatedAt = time.Now()
	s.store.Put(cur)
	return true
}

func (s *syncService) EnsureConnection(ctx context.Context) bool {
	if err := s.mirror.Ping(ctx); err == nil {
		s.connected.Store(true)
		return true
	}
	if s.reopen != nil {
		if err := s.reopen(); err != nil {
			s.connected.Store(false)
			zlog.Warn("mysql reconnect failed", zap.Error(err))
			return false
		}
	}
	ok := s.mirror.Ping(ctx) == nil
	s.connected.Store(ok)
	return ok
}

func (s *syncService) ResetConnection(ctx context.Context) bool {
	if s.reopen != nil {
		if err := s.reopen(); err != nil {
			s.connected.Store(false)
			zlog.Warn("mysql reconnect failed", zap.Error(err))
			return false
		}
	}
	ok := s.mirror.Ping(ctx) == nil
	s.connected.Store(ok)
	return ok
}

func (s *syncService) ForceResync(ctx context.Context, all bool) *respond.SyncRespond {
	out := &respond.SyncRespond{Results: []respond.SyncResultItem{}}
	for _, doc := range s.store.All() {
		out.TotalCount++
		if !all && doc.DbSyncState == document.SyncSynced {
			out.SkippedCount++
			continue
		}
		octx, cancel := context.WithTimeout(ctx, s.opTimeout)
		err := s.mirror.UpsertDocument(octx, doc)
		cancel()
		if err != nil {
			out.FailedCount++
			s.connected.Store(false)
			s.markState(doc.Id, document.SyncFailed, err.Error())
			out.Results = append(out.Results, respond.SyncResultItem{
				DocumentId: doc.Id,
				Title:      doc.Title(),
				Status:     "failed",
				Error:      err.Error(),
			})
			continue
		}
		s.connected.Store(true)
		if !s.markState(doc.Id, document.SyncSynced, "") {
			// 重同步期间被删除的文档不算成功，回收镜像行
			out.SkippedCount++
			s.DeleteFromMirror(ctx, doc.Id)
			continue
		}
		out.SyncedCount++
		out.Results = append(out.Results, respond.SyncResultItem{
			DocumentId: doc.Id,
			Title:      doc.Title(),
			Status:     "success",
		})
	}
	zlog.Info("force resync finished",
		zap.Int("synced", out.SyncedCount),
		zap.Int("failed", out.FailedCount),
		zap.Int("skipped", out.SkippedCount))
	return out
}

func (s *syncService) DeleteFromMirror(ctx context.Context, documentId string) {
	octx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if err := s.mirror.DeleteDocument(octx, documentId); err != nil {
		zlog.Warn("mirror delete failed",
			zap.String("documentId", documentId), zap.Error(err))
	}
}

func (s *syncService) LoadFromMirror(ctx context.Context) (int, error) {
	docs, err := s.mirror.LoadActiveDocuments(ctx)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, doc := range docs {
		// 内存中已有的文档是权威版本，不被镜像覆盖
		if _, exists := s.store.Get(doc.Id); exists {
			continue
		}
		s.store.Put(doc)
		if doc.Status == document.StatusIndexed {
			s.index.Upsert(doc.Id, doc.Chunks)
		}
		loaded++
	}
	s.connected.Store(true)
	zlog.Info("documents reloaded from mirror", zap.Int("count", loaded))
	return loaded, nil
}
