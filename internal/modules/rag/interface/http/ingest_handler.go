package http

import (
	"io"
	"mime/multipart"

	ragRequest "CareerRAG/internal/modules/rag/application/dto/request"
	"CareerRAG/internal/modules/rag/application/service"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/pkg/back"
	"CareerRAG/pkg/xerr"
	"CareerRAG/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 单次批量上传的文件数上限
const maxBatchFiles = 10

// IngestHandler 文档入库 HTTP Handler
type IngestHandler struct {
	ingestSvc      service.IngestService
	maxUploadBytes int64
}

// NewIngestHandler 创建文档入库 Handler
func NewIngestHandler(ingestSvc service.IngestService, maxUploadBytes int64) *IngestHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 * 1024 * 1024
	}
	return &IngestHandler{ingestSvc: ingestSvc, maxUploadBytes: maxUploadBytes}
}

// UploadLocal 处理单文件上传入库
//
// 路由: POST /api/rag/upload/local
// 请求: multipart 表单，file + category/tags/description
func (h *IngestHandler) UploadLocal(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		back.Error(c, xerr.BadRequest, "缺少上传文件")
		return
	}
	in, err := h.readFile(c, fileHeader)
	if err != nil {
		zlog.Warn("rejected uploaded file", zap.String("fileName", fileHeader.Filename), zap.Error(err))
		back.Result(c, nil, err)
		return
	}
	data, err := h.ingestSvc.IngestLocalFile(c.Request.Context(), *in)
	back.Result(c, data, err)
}

// UploadBatch 处理批量上传入库，逐文件返回结果
//
// 路由: POST /api/rag/upload/batch
func (h *IngestHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		back.Error(c, xerr.BadRequest, "缺少上传文件")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		back.Error(c, xerr.BadRequest, "缺少上传文件")
		return
	}
	if len(files) > maxBatchFiles {
		back.Error(c, xerr.BadRequest, "单次最多上传 10 个文件")
		return
	}

	ins := make([]service.LocalFileInput, 0, len(files))
	for _, fh := range files {
		in, err := h.readFile(c, fh)
		if err != nil {
			zlog.Warn("rejected uploaded file", zap.String("fileName", fh.Filename), zap.Error(err))
			back.Result(c, nil, err)
			return
		}
		ins = append(ins, *in)
	}
	back.Success(c, h.ingestSvc.IngestBatch(c.Request.Context(), ins))
}

// UploadFeishuDocument 处理飞书文档入库
//
// 路由: POST /api/rag/upload/feishu-document
func (h *IngestHandler) UploadFeishuDocument(c *gin.Context) {
	h.uploadFeishu(c, document.SourceFeishuDocument)
}

// UploadFeishuSpreadsheet 处理飞书表格入库
//
// 路由: POST /api/rag/upload/feishu-spreadsheet
func (h *IngestHandler) UploadFeishuSpreadsheet(c *gin.Context) {
	h.uploadFeishu(c, document.SourceFeishuSpreadsheet)
}

func (h *IngestHandler) uploadFeishu(c *gin.Context, sourceType document.SourceType) {
	var req ragRequest.FeishuUploadRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if req.FeishuUrl == "" {
		back.Error(c, xerr.BadRequest, "文档链接不能为空")
		return
	}
	data, err := h.ingestSvc.IngestFeishu(c.Request.Context(), sourceType, req, c.GetString("uuid"))
	back.Result(c, data, err)
}

// readFile 读入上传文件。大小上限在读入内存之前就检查，超限文件不落内存。
func (h *IngestHandler) readFile(c *gin.Context, fh *multipart.FileHeader) (*service.LocalFileInput, error) {
	if fh.Size > h.maxUploadBytes {
		return nil, xerr.ErrPayloadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, xerr.New(xerr.BadRequest, "上传文件读取失败: "+fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, xerr.New(xerr.BadRequest, "上传文件读取失败: "+fh.Filename)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, xerr.ErrPayloadTooLarge
	}
	return &service.LocalFileInput{
		FileName:    fh.Filename,
		MimeType:    fh.Header.Get("Content-Type"),
		Data:        data,
		Category:    c.PostForm("category"),
		Tags:        service.SplitTags(c.PostForm("tags")),
		Description: c.PostForm("description"),
		UploadedBy:  c.GetString("uuid"),
	}, nil
}
