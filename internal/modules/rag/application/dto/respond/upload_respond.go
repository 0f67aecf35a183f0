package respond

// UploadRespond 单文档入库结果
type UploadRespond struct {
	DocumentId   string `json:"documentId"`
	Status       string `json:"status"` // indexed / failed
	ChunkCount   int    `json:"chunkCount"`
	FailedChunks int    `json:"failedChunks,omitempty"`
	Message      string `json:"message"`
}

// BatchItemRespond 批量上传中单个文件的结果
type BatchItemRespond struct {
	OriginalName string `json:"originalName"`
	Success      bool   `json:"success"`
	DocumentId   string `json:"documentId,omitempty"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchSummary 批量上传汇总
type BatchSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// BatchUploadRespond 批量上传结果
type BatchUploadRespond struct {
	Results []BatchItemRespond `json:"results"`
	Summary BatchSummary       `json:"summary"`
}
