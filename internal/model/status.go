package model

import "strings"

// 状态汇总桶，固定四类
const (
	BucketCompleted = "Completed"
	BucketPaused    = "Paused"
	BucketLive      = "Live"
	BucketNotLive   = "Not Live"
)

// statusBuckets 原始状态到汇总桶的多对一映射
var statusBuckets = map[string]string{
	"Completed":            BucketCompleted,
	"Internally Completed": BucketCompleted,
	"Flagged":              BucketPaused,
	"Paused":               BucketPaused,
	"Live":                 BucketLive,
	"Not Live":             BucketNotLive,
	"TBC":                  BucketNotLive,
}

// StatusBucketNames 汇总桶的固定顺序
var StatusBucketNames = []string{BucketCompleted, BucketPaused, BucketLive, BucketNotLive}

// SummarizeStatuses 将原始状态串折叠进固定汇总桶并计数
// 空白或未识别的状态不计入任何桶
func SummarizeStatuses(statuses []string) map[string]int {
	summary := make(map[string]int, len(StatusBucketNames))
	for _, name := range StatusBucketNames {
		summary[name] = 0
	}
	for _, raw := range statuses {
		bucket, ok := statusBuckets[strings.TrimSpace(raw)]
		if !ok {
			continue
		}
		summary[bucket]++
	}
	return summary
}
