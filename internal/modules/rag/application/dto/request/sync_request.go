package request

// ForceResyncRequest 强制重同步请求；all 为 true 时不区分同步状态全量重写
type ForceResyncRequest struct {
	All bool `json:"all"`
}
