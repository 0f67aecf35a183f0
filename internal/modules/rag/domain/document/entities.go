package document

import "time"

// SourceType 文档来源类型
type SourceType string

const (
	SourceLocalFile         SourceType = "local_file"
	SourceFeishuDocument    SourceType = "feishu_document"
	SourceFeishuSpreadsheet SourceType = "feishu_spreadsheet"
)

// Status 文档入库状态，indexed / failed 为终态
type Status string

const (
	StatusPending Status = "pending"
	StatusIndexed Status = "indexed"
	StatusFailed  Status = "failed"
)

// SyncState 数据库镜像同步状态，与 Status 互相独立
type SyncState string

const (
	SyncNotSynced SyncState = "not_synced"
	SyncSynced    SyncState = "synced"
	SyncFailed    SyncState = "sync_failed"
)

// Chunk 文档切片，向量化与检索的最小单位
type Chunk struct {
	ChunkId   string    `json:"chunkId"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Order     int       `json:"order"`
}

// Metadata 上传时随文档提交的原始元数据
type Metadata struct {
	OriginalName string   `json:"originalName,omitempty"`
	URL          string   `json:"url,omitempty"`
	Size         int64    `json:"size,omitempty"`
	MimeType     string   `json:"mimeType,omitempty"`
	UploadedBy   string   `json:"uploadedBy"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Document 一次入库的完整文档记录。
//
// 内存 Document Store 是读路径的唯一权威；数据库只是异步镜像。
// 不变量：Chunks 非空 当且仅当 Status == indexed。
type Document struct {
	Id            string     `json:"id"`
	SourceType    SourceType `json:"sourceType"`
	Metadata      Metadata   `json:"metadata"`
	ExtractedText string     `json:"extractedText"`
	Chunks        []Chunk    `json:"chunks"`
	FailedChunks  int        `json:"failedChunks"`
	Status        Status     `json:"status"`
	DbSyncState   SyncState  `json:"dbSyncState"`
	SyncError     string     `json:"syncError,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Title 展示用标题：文件名优先，其次 URL
func (d *Document) Title() string {
	if d.Metadata.OriginalName != "" {
		return d.Metadata.OriginalName
	}
	if d.Metadata.URL != "" {
		return d.Metadata.URL
	}
	return "未知文档"
}

// Clone 深拷贝整个文档。
// Store 写入走整体替换（copy-then-swap），读取方拿到的是独立副本，
// 不会观察到写到一半的 chunk 列表。
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Chunks != nil {
		out.Chunks = make([]Chunk, len(d.Chunks))
		for i, c := range d.Chunks {
			out.Chunks[i] = c
			if c.Embedding != nil {
				out.Chunks[i].Embedding = append([]float64(nil), c.Embedding...)
			}
		}
	}
	if d.Metadata.Tags != nil {
		out.Metadata.Tags = append([]string(nil), d.Metadata.Tags...)
	}
	return &out
}

// HasTagAny 是否命中任一给定标签
func (d *Document) HasTagAny(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, got := range d.Metadata.Tags {
			if got == want {
				return true
			}
		}
	}
	return false
}
