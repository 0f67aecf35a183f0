package request

// SearchRequest 语义检索请求
type SearchRequest struct {
	Query    string   `json:"query"`
	Limit    int      `json:"limit"`    // top-k，默认 5，范围 1-50
	Category string   `json:"category"` // 可选：按分类过滤（排序后收窄）
	Tags     []string `json:"tags"`     // 可选：任一标签命中即保留
}
