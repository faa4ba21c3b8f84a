package model

import "time"

// SyncResult 一次同步/对账的处理结果
type SyncResult struct {
	Strategy  string        `json:"strategy"`
	Changed   bool          `json:"changed"`
	Rows      int           `json:"rows"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Deleted   int           `json:"deleted"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`

	// 同步后的完整数据集，不随统计序列化
	Data []SheetRow `json:"-"`
}

// FileResult 单个上传文件的处理结果
type FileResult struct {
	FileName string   `json:"fileName"`
	Status   string   `json:"status"` // processed/rejected/error
	Sheets   int      `json:"sheets"`
	Rows     int      `json:"rows"`
	Errors   []string `json:"errors,omitempty"`
}

// UploadReport 一次上传聚合的统计报告
// 调用方通过 Processed 与 Errors 区分"有跳过但成功"与"整体失败"
type UploadReport struct {
	RunID      string        `json:"runId"`
	Files      int           `json:"files"`
	TotalRows  int           `json:"totalRows"`
	Processed  int           `json:"processed"`
	Duplicates int           `json:"duplicates"`
	Skipped    int           `json:"skipped"`
	Errors     int           `json:"errors"`
	Aggregates int           `json:"aggregates"`
	Duration   time.Duration `json:"duration"`
	Results    []FileResult  `json:"results"`
}
