package respond

// SearchResultItem 单条检索命中
type SearchResultItem struct {
	DocumentId string   `json:"documentId"`
	ChunkId    string   `json:"chunkId"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	ChunkText  string   `json:"chunkText"`
	Score      float64  `json:"score"`
	SourceType string   `json:"sourceType"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags,omitempty"`
}

// SearchRespond 检索响应。
// 摘要失败不影响排序结果：aiSummary 置空并打上 summaryDegraded 标记。
type SearchRespond struct {
	QueryId         string             `json:"queryId"`
	Query           string             `json:"query"`
	Results         []SearchResultItem `json:"results"`
	TotalFound      int                `json:"totalFound"`
	AiSummary       string             `json:"aiSummary,omitempty"`
	SummaryDegraded bool               `json:"summaryDegraded"`
	DurationMs      int64              `json:"durationMs"`
	EmbeddingMs     int64              `json:"embeddingMs"`
	SearchMs        int64              `json:"searchMs"`
	SummaryMs       int64              `json:"summaryMs"`
}
