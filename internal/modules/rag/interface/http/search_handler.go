package http

import (
	ragRequest "CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/application/service"
	"CareerRAG/pkg/back"
	"CareerRAG/pkg/xerr"
	"CareerRAG/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// SearchHandler 语义检索 HTTP Handler
type SearchHandler struct {
	searchSvc service.SearchService
}

// NewSearchHandler 创建语义检索 Handler
func NewSearchHandler(searchSvc service.SearchService) *SearchHandler {
	return &SearchHandler{searchSvc: searchSvc}
}

// Search 处理语义检索请求
//
// 路由: POST /api/rag/search
// 请求体: SearchRequest
// 响应体: SearchRespond
func (h *SearchHandler) Search(c *gin.Context) {
	var req ragRequest.SearchRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.searchSvc.Search(c.Request.Context(), req)
	back.Result(c, data, err)
}
