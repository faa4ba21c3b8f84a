// Package ingest 上传的线索表格的解析与聚合引擎
// 单次调用内跨文件/跨 Sheet 去重并在内存中累加 (campaignCode, date) 计数，
// 全部输入处理完后一次性批量落库
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campboard/internal/model"
	"campboard/internal/store"
	syncsvc "campboard/internal/sync"
)

// EventLeadReportsUpdated 线索聚合更新事件
const EventLeadReportsUpdated = "leadReportsUpdated"

// ErrNoProcessableRows 所有输入中没有任何可处理的行
var ErrNoProcessableRows = errors.New("no processable rows in upload")

// DefaultMaxFileSize 单文件大小上限
const DefaultMaxFileSize = 10 << 20 // 10MB

// 允许的上传扩展名
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// UploadFile 一个待处理的上传文件
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Engine 上传聚合引擎
type Engine struct {
	store       *store.Store
	pub         syncsvc.Publisher
	log         *zap.Logger
	maxFileSize int64
}

// NewEngine 创建上传聚合引擎
func NewEngine(st *store.Store, pub syncsvc.Publisher, log *zap.Logger, maxFileSize int64) *Engine {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Engine{store: st, pub: pub, log: log, maxFileSize: maxFileSize}
}

// dedupKey 单次调用内的去重键：重复键计 skipped，不是错误
type dedupKey struct {
	leadID      string
	rawCampaign string
	status      string
}

// aggKey 聚合键
type aggKey struct {
	code string
	date string
}

// aggregate 聚合中的计数与 ID 集合，计数始终等于集合基数
type aggregate struct {
	acceptedIDs []string
	rejectedIDs []string
	acceptedSet map[string]bool
	rejectedSet map[string]bool
}

// Process 解析并聚合一批上传文件
// 文件/Sheet/行级错误就地计数不中断其余输入；
// 仅当所有输入加起来没有任何可处理行时整体失败
func (e *Engine) Process(ctx context.Context, files []UploadFile) (*model.UploadReport, error) {
	started := time.Now()
	report := &model.UploadReport{
		RunID: uuid.New().String(),
		Files: len(files),
	}

	seen := make(map[dedupKey]bool)
	aggregates := make(map[aggKey]*aggregate)
	var order []aggKey

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := e.processFile(file, seen, aggregates, &order, report)
		report.Results = append(report.Results, result)
	}

	if report.Processed == 0 {
		return report, ErrNoProcessableRows
	}

	now := time.Now().UTC()
	reports := make([]model.LeadReport, 0, len(order))
	for _, key := range order {
		agg := aggregates[key]
		if len(agg.acceptedIDs) == 0 && len(agg.rejectedIDs) == 0 {
			continue
		}
		reports = append(reports, model.LeadReport{
			CampaignCode:    key.code,
			Date:            key.date,
			AcceptedCount:   len(agg.acceptedIDs),
			AcceptedLeadIDs: agg.acceptedIDs,
			RejectedCount:   len(agg.rejectedIDs),
			RejectedLeadIDs: agg.rejectedIDs,
			LastUpdated:     now,
		})
	}

	if err := e.store.UpsertLeadReports(reports); err != nil {
		return nil, fmt.Errorf("persist lead reports: %w", err)
	}
	report.Aggregates = len(reports)
	report.Duration = time.Since(started)

	e.pub.Publish(EventLeadReportsUpdated, reports)

	e.log.Info("上传聚合完成",
		zap.String("runId", report.RunID),
		zap.Int("files", report.Files),
		zap.Int("processed", report.Processed),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int("aggregates", report.Aggregates))
	return report, nil
}

// processFile 处理单个文件，返回该文件的处理结果
func (e *Engine) processFile(file UploadFile, seen map[dedupKey]bool, aggregates map[aggKey]*aggregate, order *[]aggKey, report *model.UploadReport) model.FileResult {
	result := model.FileResult{FileName: file.Name, Status: "processed"}

	ext := strings.ToLower(filepath.Ext(file.Name))
	if !allowedExtensions[ext] {
		report.Errors++
		result.Status = "rejected"
		result.Errors = append(result.Errors, fmt.Sprintf("不支持的文件类型 %q，仅接受 xlsx/xls/csv", ext))
		return result
	}
	if file.Size > e.maxFileSize {
		report.Errors++
		result.Status = "rejected"
		result.Errors = append(result.Errors, fmt.Sprintf("文件超过大小上限 %d 字节", e.maxFileSize))
		return result
	}

	grids, err := e.readGrids(file, ext)
	if err != nil {
		report.Errors++
		result.Status = "error"
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Sheets = len(grids)
	for _, grid := range grids {
		cols := resolveColumns(grid.header())
		for _, cells := range grid.dataRows() {
			result.Rows++
			report.TotalRows++
			e.processRow(cols, cells, seen, aggregates, order, report)
		}
	}
	return result
}

type uploadGrid struct {
	sheet string
	cells [][]string
}

func (g uploadGrid) header() []string {
	if len(g.cells) == 0 {
		return nil
	}
	return g.cells[0]
}

func (g uploadGrid) dataRows() [][]string {
	if len(g.cells) < 2 {
		return nil
	}
	return g.cells[1:]
}

// readGrids 读出文件内全部 Sheet 的网格；单个 Sheet 读取失败跳过
func (e *Engine) readGrids(file UploadFile, ext string) ([]uploadGrid, error) {
	if ext == ".csv" {
		reader := csv.NewReader(file.Reader)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("解析 CSV 失败: %w", err)
		}
		return []uploadGrid{{sheet: file.Name, cells: records}}, nil
	}

	data, err := io.ReadAll(io.LimitReader(file.Reader, e.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	if int64(len(data)) > e.maxFileSize {
		return nil, fmt.Errorf("文件超过大小上限 %d 字节", e.maxFileSize)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析 Excel 失败: %w", err)
	}
	defer workbook.Close()

	var grids []uploadGrid
	for _, name := range workbook.GetSheetList() {
		cells, err := workbook.GetRows(name)
		if err != nil {
			e.log.Warn("读取上传 Sheet 失败，跳过", zap.String("sheet", name), zap.Error(err))
			continue
		}
		grids = append(grids, uploadGrid{sheet: name, cells: cells})
	}
	return grids, nil
}
