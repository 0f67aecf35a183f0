package xerr

import "fmt"

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// 内容提取错误码（40xxx 均映射为 HTTP 400，调用方据此判断可否重试）
const (
	UnsupportedType   = 40001
	PayloadTooLarge   = 40002
	RemoteFetchFailed = 40003
	ParseFailed       = 40004
)

// 向量化与同步错误码
const (
	EmbeddingFailed = 50001
	SyncFailed      = 50002
)

// 常用预定义错误
var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "系统错误，请联系工作人员")
	ErrParam       = New(BadRequest, "参数错误")

	ErrUnsupportedType   = New(UnsupportedType, "不支持的文件类型")
	ErrPayloadTooLarge   = New(PayloadTooLarge, "文件大小超出限制")
	ErrRemoteFetchFailed = New(RemoteFetchFailed, "远程文档拉取失败")
	ErrParseFailed       = New(ParseFailed, "文档内容解析失败")
	ErrEmbeddingFailed   = New(EmbeddingFailed, "向量化失败")
	ErrDocumentNotFound  = New(NotFound, "文档不存在")
)

// HTTPStatus 根据业务错误码推导 HTTP 状态码
func HTTPStatus(code int) int {
	switch {
	case code >= 40000 && code < 50000:
		return BadRequest
	case code >= 50000:
		return InternalServerError
	case code >= 400 && code < 600:
		return code
	default:
		return OK
	}
}
