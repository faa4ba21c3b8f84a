package model

import "testing"

func TestSummarizeStatuses(t *testing.T) {
	t.Parallel()

	statuses := []string{
		"Completed",
		"Internally Completed",
		"Flagged",
		"Paused",
		"Live",
		" Live ", // 首尾空白不影响归桶
		"Not Live",
		"TBC",
		"",          // 空白不计入
		"Cancelled", // 未识别不计入
	}

	summary := SummarizeStatuses(statuses)

	want := map[string]int{
		BucketCompleted: 2,
		BucketPaused:    2,
		BucketLive:      2,
		BucketNotLive:   2,
	}
	for bucket, count := range want {
		if summary[bucket] != count {
			t.Fatalf("%s = %d, want %d", bucket, summary[bucket], count)
		}
	}
	if len(summary) != len(StatusBucketNames) {
		t.Fatalf("summary has %d buckets, want %d", len(summary), len(StatusBucketNames))
	}
}

func TestSummarizeStatuses_Empty(t *testing.T) {
	t.Parallel()

	// 无数据时四个桶全部归零而非缺失
	summary := SummarizeStatuses(nil)
	for _, name := range StatusBucketNames {
		count, ok := summary[name]
		if !ok || count != 0 {
			t.Fatalf("bucket %s: got (%d, %v), want (0, true)", name, count, ok)
		}
	}
}
