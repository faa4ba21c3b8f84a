package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campboard/internal/ingest"
)

// UploadLeads 上传线索表格并聚合
// POST /api/leads/upload (multipart, 字段名 files)
func (h *Handler) UploadLeads(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, 1001, "无效的表单数据")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		errorResponse(c, http.StatusBadRequest, 1002, "未找到上传文件")
		return
	}

	files := make([]ingest.UploadFile, 0, len(headers))
	var closers []func()
	defer func() {
		for _, close := range closers {
			close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			errorResponse(c, http.StatusBadRequest, 1003, "读取上传文件失败")
			return
		}
		closers = append(closers, func() { _ = f.Close() })
		files = append(files, ingest.UploadFile{
			Name:   header.Filename,
			Size:   header.Size,
			Reader: f,
		})
	}

	report, err := h.engine.Process(c.Request.Context(), files)
	if err != nil {
		if errors.Is(err, ingest.ErrNoProcessableRows) {
			c.JSON(http.StatusUnprocessableEntity, Response{
				Code:    4220,
				Message: "所有文件中没有可处理的行",
				Data:    report,
			})
			return
		}
		h.log.Error("上传聚合失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5004, "上传处理失败")
		return
	}
	success(c, report)
}

// GetLeadCounts 按活动编码汇总接受数
// GET /api/leads/counts?startDate=&endDate=
func (h *Handler) GetLeadCounts(c *gin.Context) {
	start, end := normalizeDateRange(c.Query("startDate"), c.Query("endDate"))

	counts, err := h.store.AcceptedCounts(start, end)
	if err != nil {
		h.log.Error("查询接受数失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5005, "查询接受数失败")
		return
	}
	success(c, counts)
}

// batchCountRequest 批量接受数查询请求
type batchCountRequest struct {
	ITLCodes []string `json:"itlCodes"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
}

// BatchAcceptedCounts 批量查询多个活动编码的接受数总和
// POST /api/leads/accepted-count-batch
func (h *Handler) BatchAcceptedCounts(c *gin.Context) {
	var req batchCountRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ITLCodes) == 0 {
		errorResponse(c, http.StatusBadRequest, 1004, "itlCodes 必须为非空数组")
		return
	}

	start, end := normalizeDateRange(req.Start, req.End)

	counts, err := h.store.BatchAcceptedCounts(req.ITLCodes, start, end)
	if err != nil {
		h.log.Error("批量查询接受数失败", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5006, "批量查询失败")
		return
	}
	success(c, counts)
}

// GetLeadStats 单个活动编码的统计汇总
// GET /api/leads/stats/:code?startDate=&endDate=
func (h *Handler) GetLeadStats(c *gin.Context) {
	code := c.Param("code")
	start, end := normalizeDateRange(c.Query("startDate"), c.Query("endDate"))

	stats, err := h.store.LeadStats(code, start, end)
	if err != nil {
		h.log.Error("查询线索统计失败", zap.String("code", code), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5007, "查询线索统计失败")
		return
	}
	success(c, stats)
}

// GetDeliveredBreakdown 单个活动编码的交付总数与按日明细
// GET /api/leads/delivered/:code
func (h *Handler) GetDeliveredBreakdown(c *gin.Context) {
	code := c.Param("code")

	total, days, err := h.store.DeliveredBreakdown(code)
	if err != nil {
		h.log.Error("查询交付明细失败", zap.String("code", code), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, 5008, "查询交付明细失败")
		return
	}
	success(c, gin.H{
		"itlCode":   code,
		"delivered": total,
		"daily":     days,
	})
}

// normalizeDateRange 日期范围过滤的防御性校验
// 两端都是有效日期串时才生效；纪元锚点 1970-01-01 视为无效输入
// （与日期解析失败在数据上无法区分）
func normalizeDateRange(start, end string) (string, string) {
	if !isValidDateBound(start) || !isValidDateBound(end) {
		return "", ""
	}
	return start, end
}

func isValidDateBound(v string) bool {
	v = strings.TrimSpace(v)
	return len(v) >= 8 && v != "1970-01-01"
}
