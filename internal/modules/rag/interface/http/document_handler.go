package http

import (
	"strconv"

	"CareerRAG/internal/modules/rag/application/service"
	"CareerRAG/internal/modules/rag/infrastructure/extract"
	"CareerRAG/internal/modules/rag/infrastructure/store"
	"CareerRAG/pkg/back"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 文档管理 HTTP Handler
type DocumentHandler struct {
	docSvc service.DocumentService
}

// NewDocumentHandler 创建文档管理 Handler
func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

// List 文档列表，支持分页与分类/标签过滤
//
// 路由: GET /api/rag/documents?page=&limit=&category=&tags=
func (h *DocumentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := store.ListFilter{
		Category: c.Query("category"),
		Tags:     service.SplitTags(c.Query("tags")),
	}
	back.Success(c, h.docSvc.List(filter, page, limit))
}

// Get 文档详情（含抽取后的全文）
//
// 路由: GET /api/rag/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	data, err := h.docSvc.Get(c.Param("id"))
	back.Result(c, data, err)
}

// Delete 删除文档：内存与索引立即删除，镜像尽力而为
//
// 路由: DELETE /api/rag/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.docSvc.Delete(c.Request.Context(), id)
	back.Result(c, gin.H{"documentId": id}, err)
}

// Stats 知识库统计
//
// 路由: GET /api/rag/stats
func (h *DocumentHandler) Stats(c *gin.Context) {
	back.Success(c, h.docSvc.Stats())
}

// Health 健康检查；数据库断开时依然返回 ok，只标记 dbConnected
//
// 路由: GET /api/rag/health
func (h *DocumentHandler) Health(c *gin.Context) {
	back.Success(c, h.docSvc.Health())
}

// SupportedTypes 支持的上传类型清单
//
// 路由: GET /api/rag/supported-types
func (h *DocumentHandler) SupportedTypes(c *gin.Context) {
	back.Success(c, extract.SupportedTypes())
}
