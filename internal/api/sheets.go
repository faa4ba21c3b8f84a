package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campboard/internal/model"
	"campboard/internal/parser"
	"campboard/internal/store"
	syncsvc "campboard/internal/sync"
)

// GetSheetData 查询完整镜像数据集，可按起始日期范围过滤
// GET /api/sheets/data?start=2025-01-01&end=2025-12-31
func (h *Handler) GetSheetData(c *gin.Context) {
	opts := store.SheetRowQueryOptions{}

	start := c.Query("start")
	end := c.Query("end")
	if start != "" || end != "" {
		startDate, startOK := parser.ParseDateValue(start)
		endDate, endOK := parser.ParseDateValue(end)
		if !startOK || !endOK {
			errorResponse(c, http.StatusBadRequest, 1001, "起止日期无效")
			return
		}
		opts.StartDateFrom = parser.FormatDate(startDate)
		opts.StartDateTo = parser.FormatDate(endDate)
	}

	rows, err := h.store.ListSheetRows(opts)
	if err != nil {
		h.log.Error("查询镜像数据失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5001, "查询镜像数据失败")
		return
	}
	success(c, rows)
}

// GetStatusSummary 状态汇总：原始状态折叠进固定四类桶
// GET /api/sheets/status-summary
func (h *Handler) GetStatusSummary(c *gin.Context) {
	statuses, err := h.store.ListStatuses()
	if err != nil {
		h.log.Error("查询状态列失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5002, "查询状态汇总失败")
		return
	}
	success(c, model.SummarizeStatuses(statuses))
}

// TriggerSync 手动触发一次同步
// POST /api/sheets/sync?strategy=snapshot|mirror
func (h *Handler) TriggerSync(c *gin.Context) {
	strategy := c.DefaultQuery("strategy", "")

	result, err := h.syncSvc.Sync(c.Request.Context(), strategy)
	if err != nil {
		switch {
		case errors.Is(err, syncsvc.ErrSyncInProgress):
			errorResponse(c, http.StatusConflict, 4090, "同步正在进行中")
		case errors.Is(err, syncsvc.ErrUnknownStrategy):
			errorResponse(c, http.StatusBadRequest, 1002, "未知的同步策略")
		default:
			h.log.Error("手动同步失败", zap.Error(err))
			errorResponse(c, http.StatusInternalServerError, 5003, "同步失败")
		}
		return
	}
	success(c, result)
}
