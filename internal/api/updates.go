package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campboard/internal/model"
)

// EventCampaignUpdateAdded 新活动备注事件
const EventCampaignUpdateAdded = "campaignUpdateAdded"

// 备注附件允许的扩展名
var allowedAttachmentExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".svg": true, ".pdf": true, ".doc": true, ".docx": true,
	".txt": true, ".xlsx": true, ".xls": true, ".csv": true, ".zip": true,
	".ppt": true, ".pptx": true,
}

// ListCampaignUpdates 按时间升序列出活动备注
// GET /api/campaigns/:campaignId/updates
func (h *Handler) ListCampaignUpdates(c *gin.Context) {
	campaignID := c.Param("campaignId")

	updates, err := h.store.ListCampaignUpdates(campaignID)
	if err != nil {
		h.log.Error("查询活动备注失败", zap.String("campaignId", campaignID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5009, "查询活动备注失败")
		return
	}
	if updates == nil {
		updates = []model.CampaignUpdate{}
	}
	success(c, updates)
}

// CreateCampaignUpdate 新建活动备注，支持附件
// 消息与附件至少要有一项
// POST /api/campaigns/:campaignId/updates (multipart)
func (h *Handler) CreateCampaignUpdate(c *gin.Context) {
	campaignID := c.Param("campaignId")
	message := strings.TrimSpace(c.PostForm("message"))
	author := strings.TrimSpace(c.PostForm("author"))

	var attachments []model.Attachment
	if form, err := c.MultipartForm(); err == nil {
		for _, header := range form.File["attachments"] {
			if header.Size > h.maxUpload {
				errorResponse(c, http.StatusBadRequest, 1005,
					fmt.Sprintf("附件 %s 超过大小上限", header.Filename))
				return
			}
			ext := strings.ToLower(filepath.Ext(header.Filename))
			if !allowedAttachmentExts[ext] {
				errorResponse(c, http.StatusBadRequest, 1006,
					fmt.Sprintf("不支持的附件类型 %q", ext))
				return
			}

			storedName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
			dest := filepath.Join(h.attachDir, storedName)
			if err := c.SaveUploadedFile(header, dest); err != nil {
				h.log.Error("保存附件失败", zap.String("file", header.Filename), zap.Error(err))
				errorResponse(c, http.StatusInternalServerError, 5010, "保存附件失败")
				return
			}

			attachments = append(attachments, model.Attachment{
				FileName:   header.Filename,
				StoredName: storedName,
				Size:       header.Size,
				MimeType:   header.Header.Get("Content-Type"),
				URL:        "/attachments/" + storedName,
			})
		}
	}

	if message == "" && len(attachments) == 0 {
		errorResponse(c, http.StatusBadRequest, 1007, "消息与附件至少要有一项")
		return
	}

	update := &model.CampaignUpdate{
		ID:          uuid.New().String(),
		CampaignID:  campaignID,
		Message:     message,
		Author:      author,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}
	if update.Attachments == nil {
		update.Attachments = []model.Attachment{}
	}

	if err := h.store.InsertCampaignUpdate(update); err != nil {
		h.log.Error("写入活动备注失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5011, "写入活动备注失败")
		return
	}

	h.hub.Publish(EventCampaignUpdateAdded, update)
	success(c, update)
}

// DeleteCampaignUpdate 删除活动备注及其附件文件
// DELETE /api/campaigns/:campaignId/updates/:updateId
func (h *Handler) DeleteCampaignUpdate(c *gin.Context) {
	campaignID := c.Param("campaignId")
	updateID := c.Param("updateId")

	update, err := h.store.DeleteCampaignUpdate(campaignID, updateID)
	if err != nil {
		h.log.Error("删除活动备注失败", zap.String("updateId", updateID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5012, "删除活动备注失败")
		return
	}
	if update == nil {
		errorResponse(c, http.StatusNotFound, 4040, "备注不存在")
		return
	}

	// 附件文件尽力删除，失败不影响结果
	for _, att := range update.Attachments {
		path := filepath.Join(h.attachDir, att.StoredName)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.log.Warn("删除附件文件失败", zap.String("file", att.StoredName), zap.Error(err))
		}
	}

	success(c, gin.H{"deleted": updateID})
}
