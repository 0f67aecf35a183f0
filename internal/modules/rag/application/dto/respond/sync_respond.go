package respond

// SyncResultItem 单个文档的重同步结果
type SyncResultItem struct {
	DocumentId string `json:"documentId"`
	Title      string `json:"title"`
	Status     string `json:"status"` // success / failed
	Error      string `json:"error,omitempty"`
}

// SyncRespond 强制重同步汇总
type SyncRespond struct {
	SyncedCount  int              `json:"syncedCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	TotalCount   int              `json:"totalCount"`
	Results      []SyncResultItem `json:"results"`
}

// ResetRespond 重置数据库连接结果
type ResetRespond struct {
	DbConnected       bool `json:"dbConnected"`
	DocumentStoreSize int  `json:"documentStoreSize"`
	VectorIndexSize   int  `json:"vectorIndexSize"`
}
