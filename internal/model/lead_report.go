package model

import "time"

// LeadReport 按 (campaignCode, date) 聚合的线索统计
// 不变式：AcceptedCount == len(AcceptedLeadIDs)，RejectedCount == len(RejectedLeadIDs)，
// 由上传引擎的去重键在单次导入内保证
type LeadReport struct {
	CampaignCode    string    `json:"itlCode"`
	Date            string    `json:"date"` // YYYY-MM-DD
	AcceptedCount   int       `json:"acceptedCount"`
	AcceptedLeadIDs []string  `json:"acceptedLeadIds"`
	RejectedCount   int       `json:"rejectedCount"`
	RejectedLeadIDs []string  `json:"rejectedLeadIds"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// LeadCodeStats 单个活动编码的线索统计汇总
type LeadCodeStats struct {
	CampaignCode  string     `json:"itlCode"`
	TotalAccepted int        `json:"totalAccepted"`
	TotalRejected int        `json:"totalRejected"`
	FirstLead     *time.Time `json:"firstLead"`
	LastUpdated   *time.Time `json:"lastUpdated"`
}

// DailyDelivered 单日交付数
type DailyDelivered struct {
	Date      string `json:"date"`
	Delivered int    `json:"delivered"`
}
