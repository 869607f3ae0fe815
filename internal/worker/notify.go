package worker

// NotifyChannel 是导出结果的 Redis Pub/Sub 频道，由 API 的 WebSocket
// 处理器订阅并转发给页面。
const NotifyChannel = "cv_notify"

// ExportNotifyMessage 统一的 WebSocket 消息协议。
// 注意：这里的字段名与页面解析保持一致。
type ExportNotifyMessage struct {
	Status        string `json:"status"`
	ExportID      uint   `json:"export_id"`
	DocumentID    uint   `json:"document_id"`
	Lang          string `json:"lang"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}
