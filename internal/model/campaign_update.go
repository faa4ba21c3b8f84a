package model

import "time"

// Attachment 活动备注的附件元数据
type Attachment struct {
	FileName   string `json:"fileName"`
	StoredName string `json:"storedName"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	URL        string `json:"url"`
}

// CampaignUpdate 活动的自由格式备注/留言
type CampaignUpdate struct {
	ID          string       `json:"id"`
	CampaignID  string       `json:"campaignId"`
	Message     string       `json:"message"`
	Author      string       `json:"author"`
	Attachments []Attachment `json:"attachments"`
	Edited      bool         `json:"edited"`
	EditedAt    *time.Time   `json:"editedAt,omitempty"`
	CreatedAt   time.Time    `json:"timestamp"`
}
