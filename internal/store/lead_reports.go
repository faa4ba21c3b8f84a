package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"campboard/internal/model"
)

// UpsertLeadReports 批量写入线索聚合记录
// 同一 (campaign_code, report_date) 已存在时整体覆盖计数与 ID 列表，
// 而不是累加——重复上传同一周期会覆盖历史（见 DESIGN.md 中的语义决策）
func (s *Store) UpsertLeadReports(reports []model.LeadReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO lead_reports (campaign_code, report_date, accepted_count, accepted_lead_ids,
			rejected_count, rejected_lead_ids, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_code, report_date) DO UPDATE SET
			accepted_count = excluded.accepted_count,
			accepted_lead_ids = excluded.accepted_lead_ids,
			rejected_count = excluded.rejected_count,
			rejected_lead_ids = excluded.rejected_lead_ids,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range reports {
		r := &reports[i]
		acceptedIDs, err := json.Marshal(emptyIfNil(r.AcceptedLeadIDs))
		if err != nil {
			return fmt.Errorf("failed to marshal accepted ids: %w", err)
		}
		rejectedIDs, err := json.Marshal(emptyIfNil(r.RejectedLeadIDs))
		if err != nil {
			return fmt.Errorf("failed to marshal rejected ids: %w", err)
		}
		_, err = stmt.Exec(r.CampaignCode, r.Date, r.AcceptedCount, string(acceptedIDs),
			r.RejectedCount, string(rejectedIDs), r.LastUpdated.UTC())
		if err != nil {
			return fmt.Errorf("failed to upsert lead report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLeadReport 按自然键读取单条聚合记录
func (s *Store) GetLeadReport(campaignCode, date string) (*model.LeadReport, error) {
	row := s.db.QueryRow(`
		SELECT campaign_code, report_date, accepted_count, accepted_lead_ids,
			rejected_count, rejected_lead_ids, last_updated
		FROM lead_reports WHERE campaign_code = ? AND report_date = ?
	`, campaignCode, date)

	report, err := scanLeadReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LeadCountEntry 单个活动编码的接受数汇总
type LeadCountEntry struct {
	Count       int        `json:"count"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// AcceptedCounts 按活动编码汇总接受数，可选日期范围过滤
func (s *Store) AcceptedCounts(startDate, endDate string) (map[string]LeadCountEntry, error) {
	query := `
		SELECT campaign_code, SUM(accepted_count), MAX(last_updated)
		FROM lead_reports WHERE 1=1`
	args := []interface{}{}

	if startDate != "" && endDate != "" {
		query += " AND report_date >= ? AND report_date <= ?"
		args = append(args, startDate, endDate)
	}
	query += " GROUP BY campaign_code"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted counts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]LeadCountEntry)
	for rows.Next() {
		var (
			code        string
			count       int
			lastUpdated sql.NullTime
		)
		if err := rows.Scan(&code, &count, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan accepted count: %w", err)
		}
		entry := LeadCountEntry{Count: count}
		if lastUpdated.Valid {
			t := lastUpdated.Time
			entry.LastUpdated = &t
		}
		result[code] = entry
	}
	return result, rows.Err()
}

// BatchAcceptedCounts 批量查询指定活动编码的接受数总和
// 请求中的每个编码都会出现在结果里，没有数据的补零
func (s *Store) BatchAcceptedCounts(codes []string, startDate, endDate string) (map[string]int, error) {
	counts := make(map[string]int, len(codes))
	for _, code := range codes {
		counts[code] = 0
	}
	if len(codes) == 0 {
		return counts, nil
	}

	placeholders := strings.Repeat("?,", len(codes))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT campaign_code, SUM(accepted_count)
		FROM lead_reports WHERE campaign_code IN (%s)`, placeholders)
	args := make([]interface{}, 0, len(codes)+2)
	for _, code := range codes {
		args = append(args, code)
	}
	if startDate != "" && endDate != "" {
		query += " AND report_date >= ? AND report_date <= ?"
		args = append(args, startDate, endDate)
	}
	query += " GROUP BY campaign_code"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code  string
			count int
		)
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("failed to scan batch count: %w", err)
		}
		counts[code] = count
	}
	return counts, rows.Err()
}

// LeadStats 单个活动编码的统计汇总，可选日期范围过滤
func (s *Store) LeadStats(campaignCode, startDate, endDate string) (*model.LeadCodeStats, error) {
	query := `
		SELECT COALESCE(SUM(accepted_count), 0), COALESCE(SUM(rejected_count), 0),
			MIN(last_updated), MAX(last_updated)
		FROM lead_reports WHERE campaign_code = ?`
	args := []interface{}{campaignCode}

	if startDate != "" && endDate != "" {
		query += " AND report_date >= ? AND report_date <= ?"
		args = append(args, startDate, endDate)
	}

	stats := &model.LeadCodeStats{CampaignCode: campaignCode}
	var first, last sql.NullTime
	err := s.db.QueryRow(query, args...).Scan(&stats.TotalAccepted, &stats.TotalRejected, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead stats: %w", err)
	}
	if first.Valid {
		t := first.Time
		stats.FirstLead = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastUpdated = &t
	}
	return stats, nil
}

// DeliveredBreakdown 单个活动编码的交付总数与按日明细
func (s *Store) DeliveredBreakdown(campaignCode string) (int, []model.DailyDelivered, error) {
	rows, err := s.db.Query(`
		SELECT report_date, accepted_count
		FROM lead_reports WHERE campaign_code = ?
		ORDER BY report_date
	`, campaignCode)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query delivered breakdown: %w", err)
	}
	defer rows.Close()

	total := 0
	var days []model.DailyDelivered
	for rows.Next() {
		var day model.DailyDelivered
		if err := rows.Scan(&day.Date, &day.Delivered); err != nil {
			return 0, nil, fmt.Errorf("failed to scan delivered day: %w", err)
		}
		total += day.Delivered
		days = append(days, day)
	}
	return total, days, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeadReport(row rowScanner) (*model.LeadReport, error) {
	var (
		report                   model.LeadReport
		acceptedIDs, rejectedIDs string
	)
	err := row.Scan(&report.CampaignCode, &report.Date, &report.AcceptedCount, &acceptedIDs,
		&report.RejectedCount, &rejectedIDs, &report.LastUpdated)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(acceptedIDs), &report.AcceptedLeadIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accepted ids: %w", err)
	}
	if err := json.Unmarshal([]byte(rejectedIDs), &report.RejectedLeadIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rejected ids: %w", err)
	}
	return &report, nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
