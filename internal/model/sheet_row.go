package model

import "time"

// 表格中约定的关键列名（来自运营同学维护的表格模板）
const (
	ColumnCampaigns = "Campaigns"
	ColumnCampaign  = "Campaign"
	ColumnName      = "Name"
	ColumnStatus    = "Status"
	ColumnTactic    = "Tactic"
	ColumnStartDate = "Start Date"
	ColumnDeadline  = "Deadline"
)

// SheetRow 镜像表格中的一行数据
// Fields 保留原始表头到单元格值的开放映射，任意多余列原样保留；
// 已解析出的关键字段单独存放，下游只读不改
type SheetRow struct {
	Fields       map[string]string `json:"fields"`
	SourceSheet  string            `json:"sourceSheet"`
	CampaignCode string            `json:"campaignCode"`
	StartDate    time.Time         `json:"startDate"`
	Deadline     time.Time         `json:"deadline"`
}

// Field 读取原始列值，列不存在返回空字符串
func (r *SheetRow) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Status 读取状态列
func (r *SheetRow) Status() string {
	return r.Field(ColumnStatus)
}

// StartDateKey 起始日期的自然键表示，未解析出日期时为空字符串
func (r *SheetRow) StartDateKey() string {
	if r.StartDate.IsZero() {
		return ""
	}
	return r.StartDate.Format("2006-01-02")
}

// DeadlineKey 截止日期的字符串表示，未解析出日期时为空字符串
func (r *SheetRow) DeadlineKey() string {
	if r.Deadline.IsZero() {
		return ""
	}
	return r.Deadline.Format("2006-01-02")
}

// NaturalKey 镜像行的自然键 (campaignCode, startDate)
func (r *SheetRow) NaturalKey() NaturalKey {
	return NaturalKey{CampaignCode: r.CampaignCode, StartDate: r.StartDateKey()}
}

// NaturalKey 业务自然键，用于增量对账时的匹配与删除
type NaturalKey struct {
	CampaignCode string `json:"campaignCode"`
	StartDate    string `json:"startDate"`
}
