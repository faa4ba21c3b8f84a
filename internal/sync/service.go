// Package sync 表格镜像的同步与对账引擎
// 两种策略实现同一 ReconcileStrategy 接口：snapshot 指纹变更检测后整表替换，
// mirror 按自然键做真正的增量对账（新增/更新/删除）
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"campboard/internal/model"
	"campboard/internal/parser"
	"campboard/internal/source"
)

// EventSheetDataUpdated 镜像数据变更事件
const EventSheetDataUpdated = "sheetDataUpdated"

// ErrSyncInProgress 已有同步在执行，本次调用被拒绝（不排队）
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrUnknownStrategy 未注册的策略名
var ErrUnknownStrategy = errors.New("unknown reconcile strategy")

// Publisher 向所有订阅方广播命名事件
type Publisher interface {
	Publish(event string, payload interface{})
}

// ReconcileStrategy 对账策略：输入重建后的完整数据集，落库并返回结果
type ReconcileStrategy interface {
	Name() string
	Reconcile(ctx context.Context, rows []model.SheetRow) (*model.SyncResult, error)
}

// Service 同步服务
// 指纹与进行中标记都归属于实例，多个实例互不干扰；
// 定时触发与手动触发共用同一单飞闸门
type Service struct {
	src        source.Source
	log        *zap.Logger
	strategies map[string]ReconcileStrategy
	defaultKey string
	inFlight   atomic.Bool
}

// NewService 创建同步服务并注册策略
func NewService(src source.Source, log *zap.Logger, strategies ...ReconcileStrategy) *Service {
	s := &Service{
		src:        src,
		log:        log,
		strategies: make(map[string]ReconcileStrategy, len(strategies)),
	}
	for i, strategy := range strategies {
		if i == 0 {
			s.defaultKey = strategy.Name()
		}
		s.strategies[strategy.Name()] = strategy
	}
	return s
}

// Sync 执行一次同步
// strategyName 为空时使用默认策略；已有同步在执行时立即返回 ErrSyncInProgress。
// 拉取失败时不触碰持久化数据
func (s *Service) Sync(ctx context.Context, strategyName string) (*model.SyncResult, error) {
	if strategyName == "" {
		strategyName = s.defaultKey
	}
	strategy, ok := s.strategies[strategyName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategyName)
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	started := time.Now()

	grids, err := s.src.FetchGrids(ctx)
	if err != nil {
		s.log.Error("拉取数据源失败，本轮同步中止", zap.Error(err))
		return nil, fmt.Errorf("fetch source: %w", err)
	}

	rows, parseSkipped := s.buildRows(grids)

	result, err := strategy.Reconcile(ctx, rows)
	if err != nil {
		return nil, err
	}

	result.Skipped += parseSkipped
	result.Duration = time.Since(started)
	s.log.Info("同步完成",
		zap.String("strategy", result.Strategy),
		zap.Bool("changed", result.Changed),
		zap.Int("rows", result.Rows),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// buildRows 将各 Sheet 网格重建为规范化行
// 合并单元格重建只在单个 Sheet 内进行，参照行不跨 Sheet 延续
func (s *Service) buildRows(grids []source.Grid) ([]model.SheetRow, int) {
	var (
		all     []model.SheetRow
		skipped int
	)
	for _, grid := range grids {
		rows, n := parser.BuildSheetRows(parser.ExtractRows(grid.Sheet, grid.Cells))
		all = append(all, rows...)
		skipped += n
	}
	return all, skipped
}
