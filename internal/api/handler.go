package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campboard/internal/ingest"
	"campboard/internal/push"
	"campboard/internal/store"
	syncsvc "campboard/internal/sync"
)

// Handler API 处理器
type Handler struct {
	store     *store.Store
	syncSvc   *syncsvc.Service
	engine    *ingest.Engine
	hub       *push.Hub
	attachDir string
	maxUpload int64
	log       *zap.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, syncSvc *syncsvc.Service, engine *ingest.Engine, hub *push.Hub, attachDir string, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{
		store:     st,
		syncSvc:   syncSvc,
		engine:    engine,
		hub:       hub,
		attachDir: attachDir,
		maxUpload: maxUpload,
		log:       log,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 表格镜像
	sheets := router.Group("/sheets")
	{
		sheets.GET("/test", h.TestConnection)
		sheets.GET("/data", h.GetSheetData)
		sheets.GET("/status-summary", h.GetStatusSummary)
		sheets.POST("/sync", h.TriggerSync)
	}

	// 线索聚合
	leads := router.Group("/leads")
	{
		leads.POST("/upload", h.UploadLeads)
		leads.GET("/counts", h.GetLeadCounts)
		leads.POST("/accepted-count-batch", h.BatchAcceptedCounts)
		leads.GET("/stats/:code", h.GetLeadStats)
		leads.GET("/delivered/:code", h.GetDeliveredBreakdown)
	}

	// 活动备注
	campaigns := router.Group("/campaigns")
	{
		campaigns.GET("/:campaignId/updates", h.ListCampaignUpdates)
		campaigns.POST("/:campaignId/updates", h.CreateCampaignUpdate)
		campaigns.DELETE("/:campaignId/updates/:updateId", h.DeleteCampaignUpdate)
	}

	// 推送通道
	router.GET("/ws", gin.WrapH(h.hub))
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// TestConnection 存活探针
func (h *Handler) TestConnection(c *gin.Context) {
	success(c, gin.H{"status": "running"})
}
