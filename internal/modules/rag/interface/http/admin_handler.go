package http

import (
	ragRequest "CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/application/dto/respond"
	"CareerRAG/internal/modules/rag/application/service"
	"CareerRAG/pkg/back"
	"CareerRAG/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// AdminHandler 持久化运维 HTTP Handler
type AdminHandler struct {
	syncSvc service.SyncService
	docSvc  service.DocumentService
}

// NewAdminHandler 创建持久化运维 Handler
func NewAdminHandler(syncSvc service.SyncService, docSvc service.DocumentService) *AdminHandler {
	return &AdminHandler{syncSvc: syncSvc, docSvc: docSvc}
}

// SyncToDB 强制重同步内存文档到数据库镜像
//
// 路由: POST /api/rag/sync-to-db
// 请求体: ForceResyncRequest（可省略，默认只同步未成功的文档）
func (h *AdminHandler) SyncToDB(c *gin.Context) {
	var req ragRequest.ForceResyncRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	if !h.syncSvc.EnsureConnection(ctx) {
		back.Error(c, xerr.SyncFailed, "数据库连接不可用")
		return
	}
	back.Success(c, h.syncSvc.ForceResync(ctx, req.All))
}

// ResetDBConnection 丢弃并重建数据库连接
//
// 路由: POST /api/rag/reset-db-connection
func (h *AdminHandler) ResetDBConnection(c *gin.Context) {
	ok := h.syncSvc.ResetConnection(c.Request.Context())
	health := h.docSvc.Health()
	back.Success(c, respond.ResetRespond{
		DbConnected:       ok,
		DocumentStoreSize: health.Documents,
		VectorIndexSize:   health.IndexedChunks,
	})
}
