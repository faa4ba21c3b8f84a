package sync

import (
	"context"

	"go.uber.org/zap"

	"campboard/internal/model"
	"campboard/internal/store"
)

// StrategyMirror 增量对账策略名
const StrategyMirror = "mirror"

// MirrorStrategy 真正的集合对账：按自然键 (campaignCode, startDate) 逐行 upsert，
// 再删除源中已不存在的持久化键。新增、更新、删除都由源数据的成员关系驱动，
// 与快照策略的整表替换不同
type MirrorStrategy struct {
	store *store.Store
	pub   Publisher
	log   *zap.Logger
}

// NewMirrorStrategy 创建增量对账策略
func NewMirrorStrategy(st *store.Store, pub Publisher, log *zap.Logger) *MirrorStrategy {
	return &MirrorStrategy{store: st, pub: pub, log: log}
}

// Name 策略名
func (m *MirrorStrategy) Name() string { return StrategyMirror }

// Reconcile 执行增量对账
// 缺编码或缺状态列的行计入 skipped 不落库；单行写入失败计入 errors 继续处理
func (m *MirrorStrategy) Reconcile(ctx context.Context, rows []model.SheetRow) (*model.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &model.SyncResult{Strategy: StrategyMirror}

	sourceKeys := make(map[model.NaturalKey]bool, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.CampaignCode == "" || row.Status() == "" {
			result.Skipped++
			continue
		}

		sourceKeys[row.NaturalKey()] = true

		inserted, err := m.store.UpsertSheetRow(row)
		if err != nil {
			m.log.Warn("写入镜像行失败",
				zap.String("campaignCode", row.CampaignCode),
				zap.String("startDate", row.StartDateKey()),
				zap.Error(err))
			result.Errors++
			continue
		}
		result.Processed++
		if inserted {
			result.Changed = true
		}
	}

	persistedKeys, err := m.store.ListNaturalKeys()
	if err != nil {
		return nil, err
	}

	var stale []model.NaturalKey
	for _, key := range persistedKeys {
		if !sourceKeys[key] {
			stale = append(stale, key)
		}
	}
	if len(stale) > 0 {
		deleted, err := m.store.DeleteSheetRowsByKeys(stale)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
		if deleted > 0 {
			result.Changed = true
		}
	}

	current, err := m.store.ListSheetRows(store.SheetRowQueryOptions{})
	if err != nil {
		return nil, err
	}
	result.Rows = len(current)
	result.Data = current

	m.pub.Publish(EventSheetDataUpdated, current)

	return result, nil
}
