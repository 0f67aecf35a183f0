package respond

// StatsRespond 统计信息
type StatsRespond struct {
	TotalDocuments int            `json:"totalDocuments"`
	TotalSize      int64          `json:"totalSize"`
	ByCategory     map[string]int `json:"byCategory"`
	ByStatus       map[string]int `json:"byStatus"`
	IndexedChunks  int            `json:"indexedChunks"`
	DbConnected    bool           `json:"dbConnected"`
	LastUpdate     string         `json:"lastUpdate"`
}

// HealthRespond 健康检查
type HealthRespond struct {
	Status        string `json:"status"`
	DbConnected   bool   `json:"dbConnected"`
	Documents     int    `json:"documents"`
	IndexedChunks int    `json:"indexedChunks"`
	Timestamp     string `json:"timestamp"`
}
