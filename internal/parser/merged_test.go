package parser

import (
	"testing"

	"campboard/internal/model"
)

func mergedRow(fields map[string]string) Row {
	return Row{Fields: fields, SourceSheet: "Sheet1"}
}

func TestBuildSheetRows_CarryForward(t *testing.T) {
	t.Parallel()

	rows := []Row{
		mergedRow(map[string]string{
			model.ColumnCampaign:  "ITL-7781",
			model.ColumnStatus:    "Live",
			model.ColumnStartDate: "2025-05-28",
			model.ColumnDeadline:  "2025-06-30",
		}),
		// 合并单元格延续行：无编码无日期，但状态列有内容
		mergedRow(map[string]string{
			model.ColumnStatus: "Paused",
		}),
		// 延续行自带日期时不被参照行覆盖
		mergedRow(map[string]string{
			model.ColumnTactic:    "Email",
			model.ColumnStartDate: "2025-07-01",
		}),
	}

	out, skipped := BuildSheetRows(rows)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3", len(out))
	}

	for i, row := range out {
		if row.CampaignCode != "7781" {
			t.Fatalf("row %d: campaignCode = %q, want 7781", i, row.CampaignCode)
		}
	}
	if out[1].StartDateKey() != "2025-05-28" || out[1].DeadlineKey() != "2025-06-30" {
		t.Fatalf("row 1 should inherit dates, got %s / %s", out[1].StartDateKey(), out[1].DeadlineKey())
	}
	if out[2].StartDateKey() != "2025-07-01" {
		t.Fatalf("row 2 own start date should win, got %s", out[2].StartDateKey())
	}
	if out[2].DeadlineKey() != "2025-06-30" {
		t.Fatalf("row 2 should inherit deadline, got %s", out[2].DeadlineKey())
	}
}

func TestBuildSheetRows_DropWithoutReference(t *testing.T) {
	t.Parallel()

	rows := []Row{
		// 在任何参照行出现之前的无编码行只能丢弃
		mergedRow(map[string]string{model.ColumnStatus: "Live"}),
		mergedRow(map[string]string{model.ColumnCampaign: "ITL-7781", model.ColumnStatus: "Live"}),
	}

	out, skipped := BuildSheetRows(rows)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(out) != 1 || out[0].CampaignCode != "7781" {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestBuildSheetRows_DropEmptyContinuation(t *testing.T) {
	t.Parallel()

	rows := []Row{
		mergedRow(map[string]string{model.ColumnCampaign: "ITL-7781", model.ColumnStatus: "Live"}),
		// 有参照行但所有内容列均为空，视为空行
		mergedRow(map[string]string{model.ColumnStatus: "", model.ColumnTactic: ""}),
	}

	out, skipped := BuildSheetRows(rows)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
}

func TestBuildSheetRows_NewReferenceReplacesOld(t *testing.T) {
	t.Parallel()

	rows := []Row{
		mergedRow(map[string]string{model.ColumnCampaign: "ITL-7781", model.ColumnStatus: "Live"}),
		mergedRow(map[string]string{model.ColumnCampaign: "ITL-8892", model.ColumnStatus: "Paused"}),
		mergedRow(map[string]string{model.ColumnStatus: "Completed"}),
	}

	out, _ := BuildSheetRows(rows)
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3", len(out))
	}
	if out[2].CampaignCode != "8892" {
		t.Fatalf("continuation should follow latest reference, got %q", out[2].CampaignCode)
	}
}
