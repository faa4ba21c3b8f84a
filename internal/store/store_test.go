package store

import (
	"path/filepath"
	"testing"
	"time"

	"campboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("创建测试数据库失败: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func leadReport(code, date string, accepted, rejected []string) model.LeadReport {
	return model.LeadReport{
		CampaignCode:    code,
		Date:            date,
		AcceptedCount:   len(accepted),
		AcceptedLeadIDs: accepted,
		RejectedCount:   len(rejected),
		RejectedLeadIDs: rejected,
		LastUpdated:     time.Now().UTC(),
	}
}

func TestUpsertLeadReports_Overwrite(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.UpsertLeadReports([]model.LeadReport{
		leadReport("7781", "2025-05-28", []string{"L1", "L2"}, nil),
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := st.UpsertLeadReports([]model.LeadReport{
		leadReport("7781", "2025-05-28", []string{"L3"}, []string{"L4"}),
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := st.GetLeadReport("7781", "2025-05-28")
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if got.AcceptedCount != 1 || got.RejectedCount != 1 {
		t.Fatalf("accepted=%d rejected=%d, want 1/1 (overwritten)", got.AcceptedCount, got.RejectedCount)
	}
	if len(got.AcceptedLeadIDs) != 1 || got.AcceptedLeadIDs[0] != "L3" {
		t.Fatalf("unexpected accepted ids: %v", got.AcceptedLeadIDs)
	}
}

func TestBatchAcceptedCounts_ZeroFill(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.UpsertLeadReports([]model.LeadReport{
		leadReport("7781", "2025-05-28", []string{"L1", "L2"}, nil),
		leadReport("7781", "2025-05-29", []string{"L3"}, nil),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	counts, err := st.BatchAcceptedCounts([]string{"7781", "9999"}, "", "")
	if err != nil {
		t.Fatalf("batch counts: %v", err)
	}
	if counts["7781"] != 3 {
		t.Fatalf("7781 = %d, want 3", counts["7781"])
	}
	// 没有数据的编码补零而非缺失
	if count, ok := counts["9999"]; !ok || count != 0 {
		t.Fatalf("9999 = (%d, %v), want (0, true)", count, ok)
	}
}

func TestBatchAcceptedCounts_DateRange(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.UpsertLeadReports([]model.LeadReport{
		leadReport("7781", "2025-05-28", []string{"L1"}, nil),
		leadReport("7781", "2025-06-15", []string{"L2", "L3"}, nil),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	counts, err := st.BatchAcceptedCounts([]string{"7781"}, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("batch counts: %v", err)
	}
	if counts["7781"] != 2 {
		t.Fatalf("7781 = %d, want 2 (range filtered)", counts["7781"])
	}
}

func TestDeliveredBreakdown(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.UpsertLeadReports([]model.LeadReport{
		leadReport("7781", "2025-05-29", []string{"L3"}, nil),
		leadReport("7781", "2025-05-28", []string{"L1", "L2"}, []string{"L9"}),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	total, days, err := st.DeliveredBreakdown("7781")
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(days) != 2 || days[0].Date != "2025-05-28" || days[1].Date != "2025-05-29" {
		t.Fatalf("days should be ordered by date, got %v", days)
	}
}

func TestCampaignUpdates_Lifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	first := &model.CampaignUpdate{
		ID: "u1", CampaignID: "7781", Message: "首条备注",
		Attachments: []model.Attachment{}, CreatedAt: base,
	}
	second := &model.CampaignUpdate{
		ID: "u2", CampaignID: "7781", Message: "第二条", Author: "ops",
		Attachments: []model.Attachment{{FileName: "a.png", StoredName: "x.png"}},
		CreatedAt:   base.Add(time.Minute),
	}
	if err := st.InsertCampaignUpdate(first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := st.InsertCampaignUpdate(second); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	updates, err := st.ListCampaignUpdates("7781")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(updates) != 2 || updates[0].ID != "u1" || updates[1].ID != "u2" {
		t.Fatalf("updates should be time-ordered, got %v", updates)
	}
	if len(updates[1].Attachments) != 1 || updates[1].Attachments[0].FileName != "a.png" {
		t.Fatalf("attachments should round-trip, got %v", updates[1].Attachments)
	}

	deleted, err := st.DeleteCampaignUpdate("7781", "u1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted == nil || deleted.Message != "首条备注" {
		t.Fatalf("delete should return the record, got %v", deleted)
	}

	if missing, err := st.DeleteCampaignUpdate("7781", "u1"); err != nil || missing != nil {
		t.Fatalf("deleting a missing record should be (nil, nil), got %v, %v", missing, err)
	}

	remaining, err := st.ListCampaignUpdates("7781")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "u2" {
		t.Fatalf("unexpected remaining updates: %v", remaining)
	}
}
