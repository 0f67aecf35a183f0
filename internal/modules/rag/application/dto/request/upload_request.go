package request

// FeishuUploadRequest 远程文档/表格入库请求。
// tags 与前端表单保持一致：逗号分隔字符串，服务端拆分。
type FeishuUploadRequest struct {
	FeishuUrl   string `json:"feishuUrl"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
}
