package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"campboard/internal/model"
)

// ReplaceSheetRows 整表替换镜像数据（快照策略）
// 删除与插入在同一事务内提交，读侧要么看到旧集合要么看到新集合
func (s *Store) ReplaceSheetRows(rows []model.SheetRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sheet_rows"); err != nil {
		return fmt.Errorf("failed to clear sheet rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sheet_rows (campaign_code, start_date, deadline, status, name, source_sheet, fields, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range rows {
		row := &rows[i]
		fields, err := json.Marshal(row.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
		_, err = stmt.Exec(row.CampaignCode, row.StartDateKey(), row.DeadlineKey(),
			row.Status(), row.Field(model.ColumnName), row.SourceSheet, string(fields), now)
		if err != nil {
			return fmt.Errorf("failed to insert sheet row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertSheetRow 按自然键更新或插入单行（对账策略）
// 返回是否为新插入
func (s *Store) UpsertSheetRow(row *model.SheetRow) (bool, error) {
	fields, err := json.Marshal(row.Fields)
	if err != nil {
		return false, fmt.Errorf("failed to marshal fields: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE sheet_rows
		SET deadline = ?, status = ?, name = ?, source_sheet = ?, fields = ?, updated_at = ?
		WHERE campaign_code = ? AND start_date = ?
	`, row.DeadlineKey(), row.Status(), row.Field(model.ColumnName), row.SourceSheet, string(fields), now,
		row.CampaignCode, row.StartDateKey())
	if err != nil {
		return false, fmt.Errorf("failed to update sheet row: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO sheet_rows (campaign_code, start_date, deadline, status, name, source_sheet, fields, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.CampaignCode, row.StartDateKey(), row.DeadlineKey(), row.Status(),
		row.Field(model.ColumnName), row.SourceSheet, string(fields), now)
	if err != nil {
		return false, fmt.Errorf("failed to insert sheet row: %w", err)
	}
	return true, nil
}

// DeleteSheetRowsByKeys 按自然键批量删除镜像行
func (s *Store) DeleteSheetRowsByKeys(keys []model.NaturalKey) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM sheet_rows WHERE campaign_code = ? AND start_date = ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	deleted := 0
	for _, key := range keys {
		res, err := stmt.Exec(key.CampaignCode, key.StartDate)
		if err != nil {
			return 0, fmt.Errorf("failed to delete sheet row: %w", err)
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

// ListNaturalKeys 列出当前持久化的全部自然键
func (s *Store) ListNaturalKeys() ([]model.NaturalKey, error) {
	rows, err := s.db.Query("SELECT DISTINCT campaign_code, start_date FROM sheet_rows")
	if err != nil {
		return nil, fmt.Errorf("failed to query natural keys: %w", err)
	}
	defer rows.Close()

	var keys []model.NaturalKey
	for rows.Next() {
		var key model.NaturalKey
		if err := rows.Scan(&key.CampaignCode, &key.StartDate); err != nil {
			return nil, fmt.Errorf("failed to scan natural key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// SheetRowQueryOptions 镜像行查询选项
type SheetRowQueryOptions struct {
	StartDateFrom string // 含边界，YYYY-MM-DD
	StartDateTo   string
}

// ListSheetRows 查询镜像行，可按起始日期范围过滤
func (s *Store) ListSheetRows(opts SheetRowQueryOptions) ([]model.SheetRow, error) {
	query := "SELECT campaign_code, start_date, deadline, source_sheet, fields FROM sheet_rows WHERE 1=1"
	args := []interface{}{}

	if opts.StartDateFrom != "" {
		query += " AND start_date >= ?"
		args = append(args, opts.StartDateFrom)
	}
	if opts.StartDateTo != "" {
		query += " AND start_date <= ?"
		args = append(args, opts.StartDateTo)
	}

	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sheet rows: %w", err)
	}
	defer rows.Close()

	return scanSheetRows(rows)
}

// ListStatuses 列出全部镜像行的状态列，供状态汇总使用
func (s *Store) ListStatuses() ([]string, error) {
	rows, err := s.db.Query("SELECT status FROM sheet_rows")
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

// CountSheetRows 统计镜像行数
func (s *Store) CountSheetRows() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sheet_rows").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sheet rows: %w", err)
	}
	return count, nil
}

func scanSheetRows(rows *sql.Rows) ([]model.SheetRow, error) {
	var result []model.SheetRow
	for rows.Next() {
		var (
			row                 model.SheetRow
			startDate, deadline string
			fieldsJSON          string
		)
		if err := rows.Scan(&row.CampaignCode, &startDate, &deadline, &row.SourceSheet, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan sheet row: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &row.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
		}
		if startDate != "" {
			if t, err := time.Parse("2006-01-02", startDate); err == nil {
				row.StartDate = t
			}
		}
		if deadline != "" {
			if t, err := time.Parse("2006-01-02", deadline); err == nil {
				row.Deadline = t
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
