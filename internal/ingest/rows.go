package ingest

import (
	"strings"

	"campboard/internal/model"
	"campboard/internal/parser"
)

// 命名列缺失时的位置兜底：第 1/2/7 列
// 这是对上传方模板不一致的刻意妥协
const (
	fallbackLeadIDColumn    = 0
	fallbackTimestampColumn = 1
	fallbackCampaignColumn  = 6
)

// 命名列的候选表头，按小写去空格比对
var (
	leadIDHeaders    = []string{"lead id", "leadid", "lead_id", "id"}
	timestampHeaders = []string{"timestamp", "date", "created at", "createdat", "created"}
	campaignHeaders  = []string{"campaign", "campaigns", "campaign name", "itl", "itl code"}
	statusHeaders    = []string{"status", "lead status"}
)

// columnLayout 一个 Sheet 的列定位结果，-1 表示缺失
type columnLayout struct {
	leadID    int
	timestamp int
	campaign  int
	status    int
}

// resolveColumns 按表头定位关键列，命名列缺失时退回固定位置
// 状态列没有位置兜底：缺失按空状态处理（计入 accepted）
func resolveColumns(header []string) columnLayout {
	cols := columnLayout{
		leadID:    findColumn(header, leadIDHeaders),
		timestamp: findColumn(header, timestampHeaders),
		campaign:  findColumn(header, campaignHeaders),
		status:    findColumn(header, statusHeaders),
	}
	if cols.leadID < 0 {
		cols.leadID = fallbackLeadIDColumn
	}
	if cols.timestamp < 0 {
		cols.timestamp = fallbackTimestampColumn
	}
	if cols.campaign < 0 {
		cols.campaign = fallbackCampaignColumn
	}
	return cols
}

func findColumn(header []string, candidates []string) int {
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		for _, candidate := range candidates {
			if normalized == candidate {
				return i
			}
		}
	}
	return -1
}

func cellAt(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

// processRow 分类并聚合单行
// 跳过条件：重复去重键、缺线索 ID、活动编码不可解析、日期不可解析
// （纪元零值等同解析失败）。状态恰为 rejected（忽略大小写）计入拒绝，
// 其余一律计入接受
func (e *Engine) processRow(cols columnLayout, cells []string, seen map[dedupKey]bool, aggregates map[aggKey]*aggregate, order *[]aggKey, report *model.UploadReport) {
	leadID := cellAt(cells, cols.leadID)
	rawTimestamp := cellAt(cells, cols.timestamp)
	rawCampaign := cellAt(cells, cols.campaign)
	status := strings.ToLower(cellAt(cells, cols.status))

	if leadID == "" {
		report.Skipped++
		return
	}

	key := dedupKey{leadID: leadID, rawCampaign: rawCampaign, status: status}
	if seen[key] {
		report.Duplicates++
		return
	}
	seen[key] = true

	code, ok := parser.ResolveStrictCampaignCode(rawCampaign)
	if !ok {
		report.Skipped++
		return
	}

	date, ok := parser.ParseDateValue(rawTimestamp)
	if !ok {
		report.Skipped++
		return
	}

	k := aggKey{code: code, date: parser.FormatDate(date)}
	agg, exists := aggregates[k]
	if !exists {
		agg = &aggregate{
			acceptedSet: make(map[string]bool),
			rejectedSet: make(map[string]bool),
		}
		aggregates[k] = agg
		*order = append(*order, k)
	}

	if status == "rejected" {
		if !agg.rejectedSet[leadID] {
			agg.rejectedSet[leadID] = true
			agg.rejectedIDs = append(agg.rejectedIDs, leadID)
		}
	} else {
		if !agg.acceptedSet[leadID] {
			agg.acceptedSet[leadID] = true
			agg.acceptedIDs = append(agg.acceptedIDs, leadID)
		}
	}

	report.Processed++
}
