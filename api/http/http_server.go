package http

import (
	"context"
	"time"

	"CareerRAG/internal/config"
	"CareerRAG/internal/initial"
	jwtMiddleware "CareerRAG/internal/middleware/jwt"
	"CareerRAG/internal/modules/rag/application/service"
	"CareerRAG/internal/modules/rag/infrastructure/chunking"
	embedProvider "CareerRAG/internal/modules/rag/infrastructure/embedding"
	"CareerRAG/internal/modules/rag/infrastructure/extract"
	"CareerRAG/internal/modules/rag/infrastructure/llm"
	"CareerRAG/internal/modules/rag/infrastructure/persistence"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/internal/modules/rag/infrastructure/vectorindex"
	ragHandler "CareerRAG/internal/modules/rag/interface/http"
	"CareerRAG/pkg/ssl"
	"CareerRAG/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server 组装好的 HTTP 服务及其后台组件
type Server struct {
	Engine  *gin.Engine
	syncSvc service.SyncService
}

// NewServer 显式构造整个服务：依赖在这里装配一次，不使用包级单例。
// 数据库与 AI 服务都允许缺席，缺席时对应能力降级而非启动失败。
func NewServer(conf *config.Config) (*Server, error) {
	ctx := context.Background()

	embedder, embedMeta, err := embedProvider.NewEmbedderFromConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	zlog.Info("embedder ready",
		zap.String("provider", embedMeta.Provider),
		zap.String("model", embedMeta.Model),
		zap.Int("dim", embedMeta.Dim))

	chatModel, chatMeta, err := llm.NewChatModelFromConfig(ctx, conf)
	if err != nil {
		zlog.Warn("chat model unavailable, summary and non-text extraction disabled", zap.Error(err))
	} else {
		zlog.Info("chat model ready",
			zap.String("provider", chatMeta.Provider),
			zap.String("model", chatMeta.Model))
	}
	oracle := llm.NewTextOracle(chatModel)

	fetchTimeout := time.Duration(conf.RAGConfig.FetchTimeoutSeconds) * time.Second
	oracleTimeout := time.Duration(conf.RAGConfig.OracleTimeoutSeconds) * time.Second
	extractor := extract.NewExtractor(oracle, conf.RAGConfig.MaxUploadBytes, fetchTimeout, oracleTimeout)

	var chunker *chunking.SimpleChunker
	if conf.RAGConfig.UseRecursiveChunker {
		chunker = chunking.NewRecursiveChunker(conf.RAGConfig.ChunkSize, conf.RAGConfig.ChunkOverlap)
	} else {
		chunker = chunking.NewSimpleChunker(conf.RAGConfig.ChunkSize, conf.RAGConfig.ChunkOverlap)
	}

	docStore := store.NewDocumentStore()
	index := vectorindex.NewMemoryIndex()
	mirror := persistence.NewDocumentMirror(initial.DB)

	syncSvc := service.NewSyncService(docStore, index, mirror, initial.ReopenGorm,
		conf.RAGConfig.SyncQueueSize, 10*time.Second)
	syncSvc.Start()

	if conf.RAGConfig.LoadOnStartup {
		if _, err := syncSvc.LoadFromMirror(ctx); err != nil {
			zlog.Warn("startup reload from mirror failed, starting empty", zap.Error(err))
		}
	}

	ingestSvc := service.NewIngestService(extractor, chunker, embedder, docStore, index, syncSvc)
	searchSvc := service.NewSearchService(docStore, index, embedder, oracle, oracleTimeout)
	docSvc := service.NewDocumentService(docStore, index, syncSvc)

	ingestH := ragHandler.NewIngestHandler(ingestSvc, conf.RAGConfig.MaxUploadBytes)
	searchH := ragHandler.NewSearchHandler(searchSvc)
	documentH := ragHandler.NewDocumentHandler(docSvc)
	adminH := ragHandler.NewAdminHandler(syncSvc, docSvc)

	engine := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))
	engine.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	rag := engine.Group("/api/rag")
	rag.Use(jwtMiddleware.Identity())
	rag.POST("/upload/local", ingestH.UploadLocal)
	rag.POST("/upload/batch", ingestH.UploadBatch)
	rag.POST("/upload/feishu-document", ingestH.UploadFeishuDocument)
	rag.POST("/upload/feishu-spreadsheet", ingestH.UploadFeishuSpreadsheet)
	rag.POST("/search", searchH.Search)
	rag.GET("/documents", documentH.List)
	rag.GET("/documents/:id", documentH.Get)
	rag.DELETE("/documents/:id", documentH.Delete)
	rag.GET("/stats", documentH.Stats)
	rag.GET("/health", documentH.Health)
	rag.GET("/supported-types", documentH.SupportedTypes)
	rag.POST("/sync-to-db", adminH.SyncToDB)
	rag.POST("/reset-db-connection", adminH.ResetDBConnection)

	return &Server{Engine: engine, syncSvc: syncSvc}, nil
}

// Shutdown 停止后台同步 worker，退出前清空待同步队列
func (s *Server) Shutdown() {
	s.syncSvc.Stop()
}
