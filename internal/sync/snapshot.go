package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"campboard/internal/model"
	"campboard/internal/store"
)

// StrategySnapshot 快照策略名
const StrategySnapshot = "snapshot"

// SnapshotStrategy 变更检测同步：对整个数据集求指纹，
// 与上次指纹相同则零写入、直接回读缓存数据；不同则整表替换并广播。
// 指纹只存在于进程内，重启后首次同步必然执行落库
type SnapshotStrategy struct {
	store *store.Store
	pub   Publisher
	log   *zap.Logger

	mu          sync.Mutex
	fingerprint string
}

// NewSnapshotStrategy 创建快照策略
func NewSnapshotStrategy(st *store.Store, pub Publisher, log *zap.Logger) *SnapshotStrategy {
	return &SnapshotStrategy{store: st, pub: pub, log: log}
}

// Name 策略名
func (s *SnapshotStrategy) Name() string { return StrategySnapshot }

// Reconcile 执行快照同步
func (s *SnapshotStrategy) Reconcile(ctx context.Context, rows []model.SheetRow) (*model.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fingerprint, err := datasetFingerprint(rows)
	if err != nil {
		return nil, fmt.Errorf("compute fingerprint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fingerprint == s.fingerprint {
		cached, err := s.store.ListSheetRows(store.SheetRowQueryOptions{})
		if err != nil {
			return nil, fmt.Errorf("load cached rows: %w", err)
		}
		s.log.Info("数据集无变化，返回缓存数据", zap.Int("rows", len(cached)))
		return &model.SyncResult{
			Strategy: StrategySnapshot,
			Changed:  false,
			Rows:     len(cached),
			Data:     cached,
		}, nil
	}

	if err := s.store.ReplaceSheetRows(rows); err != nil {
		return nil, fmt.Errorf("replace sheet rows: %w", err)
	}
	s.fingerprint = fingerprint

	s.pub.Publish(EventSheetDataUpdated, rows)

	return &model.SyncResult{
		Strategy:  StrategySnapshot,
		Changed:   true,
		Rows:      len(rows),
		Processed: len(rows),
		Data:      rows,
	}, nil
}

// datasetFingerprint 数据集的确定性指纹：稳定 JSON 序列化后取 SHA-256
// map 键由 encoding/json 保证有序，序列化结果对同一数据集恒定
func datasetFingerprint(rows []model.SheetRow) (string, error) {
	serialized, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(serialized)
	return hex.EncodeToString(digest[:]), nil
}
