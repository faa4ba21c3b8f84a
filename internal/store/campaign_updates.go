package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"campboard/internal/model"
)

// InsertCampaignUpdate 写入一条活动备注
func (s *Store) InsertCampaignUpdate(update *model.CampaignUpdate) error {
	attachments, err := json.Marshal(update.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO campaign_updates (id, campaign_id, message, author, attachments, edited, edited_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, update.ID, update.CampaignID, update.Message, update.Author, string(attachments),
		update.Edited, update.EditedAt, update.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert campaign update: %w", err)
	}
	return nil
}

// ListCampaignUpdates 按时间升序列出某个活动的全部备注
func (s *Store) ListCampaignUpdates(campaignID string) ([]model.CampaignUpdate, error) {
	rows, err := s.db.Query(`
		SELECT id, campaign_id, message, author, attachments, edited, edited_at, created_at
		FROM campaign_updates WHERE campaign_id = ?
		ORDER BY created_at
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign updates: %w", err)
	}
	defer rows.Close()

	var updates []model.CampaignUpdate
	for rows.Next() {
		var (
			update      model.CampaignUpdate
			attachments string
			editedAt    sql.NullTime
		)
		err := rows.Scan(&update.ID, &update.CampaignID, &update.Message, &update.Author,
			&attachments, &update.Edited, &editedAt, &update.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign update: %w", err)
		}
		if err := json.Unmarshal([]byte(attachments), &update.Attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
		if editedAt.Valid {
			t := editedAt.Time
			update.EditedAt = &t
		}
		updates = append(updates, update)
	}
	return updates, rows.Err()
}

// DeleteCampaignUpdate 删除一条活动备注，返回被删除的记录
func (s *Store) DeleteCampaignUpdate(campaignID, updateID string) (*model.CampaignUpdate, error) {
	row := s.db.QueryRow(`
		SELECT id, campaign_id, message, author, attachments, edited, edited_at, created_at
		FROM campaign_updates WHERE campaign_id = ? AND id = ?
	`, campaignID, updateID)

	var (
		update      model.CampaignUpdate
		attachments string
		editedAt    sql.NullTime
	)
	err := row.Scan(&update.ID, &update.CampaignID, &update.Message, &update.Author,
		&attachments, &update.Edited, &editedAt, &update.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign update: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &update.Attachments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	if editedAt.Valid {
		t := editedAt.Time
		update.EditedAt = &t
	}

	if _, err := s.db.Exec("DELETE FROM campaign_updates WHERE id = ?", updateID); err != nil {
		return nil, fmt.Errorf("failed to delete campaign update: %w", err)
	}
	return &update, nil
}
