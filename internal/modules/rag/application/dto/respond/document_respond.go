package respond

import "time"

// DocumentSummary 文档列表项
type DocumentSummary struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	SourceType    string    `json:"sourceType"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags,omitempty"`
	Status        string    `json:"status"`
	DbSyncState   string    `json:"dbSyncState"`
	ChunkCount    int       `json:"chunkCount"`
	ContentLength int       `json:"contentLength"`
	UploadedBy    string    `json:"uploadedBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DocumentDetail 文档详情（含全文）
type DocumentDetail struct {
	DocumentSummary
	Content   string `json:"content"`
	SyncError string `json:"syncError,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// DocumentListRespond 文档列表响应
type DocumentListRespond struct {
	Documents  []DocumentSummary `json:"documents"`
	Pagination Pagination        `json:"pagination"`
}
