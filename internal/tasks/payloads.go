package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFExport = "pdf:export"
)

// PDFExportPayload 描述导出一份 PDF 所需的最小信息。
type PDFExportPayload struct {
	ExportID      uint   `json:"export_id"`
	DocumentID    uint   `json:"document_id"`
	Lang          string `json:"lang"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFExportTask 构造一个新的 PDF 导出任务。
func NewPDFExportTask(exportID, documentID uint, lang, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PDFExportPayload{
		ExportID:      exportID,
		DocumentID:    documentID,
		Lang:          lang,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFExport, payload), nil
}
