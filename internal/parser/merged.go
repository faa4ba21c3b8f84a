package parser

import "campboard/internal/model"

// 判定"仍携带有效内容"的列：合并单元格的延续行虽然缺编码，
// 但这些列非空时说明该行是真实数据而非空行
var meaningfulColumns = []string{
	model.ColumnStatus,
	model.ColumnTactic,
	model.ColumnName,
}

// BuildSheetRows 重建因合并单元格渲染而缺失标识列的行
// 按原始行序做带状态的折叠：解析出编码的行成为新的参照行并原样输出；
// 缺编码但仍有内容的行补上参照行的编码与未被覆盖的日期字段；
// 既无编码又无参照行的行丢弃并计入 skipped。
// 输入必须保持原始行序，重建过程依赖行间顺序
func BuildSheetRows(rows []Row) (out []model.SheetRow, skipped int) {
	out = make([]model.SheetRow, 0, len(rows))

	var ref *model.SheetRow
	for _, raw := range rows {
		code, resolved := ResolveCampaignCode(
			raw.Field(model.ColumnCampaigns),
			raw.Field(model.ColumnCampaign),
			raw.Field(model.ColumnName),
		)

		startDate, startOK := ParseDateValue(raw.Field(model.ColumnStartDate))
		deadline, deadlineOK := ParseDateValue(raw.Field(model.ColumnDeadline))

		row := model.SheetRow{
			Fields:      raw.Fields,
			SourceSheet: raw.SourceSheet,
		}
		if startOK {
			row.StartDate = startDate
		}
		if deadlineOK {
			row.Deadline = deadline
		}

		switch {
		case resolved:
			row.CampaignCode = code
			out = append(out, row)
			last := row
			ref = &last
		case ref != nil && hasMeaningfulFields(raw):
			row.CampaignCode = ref.CampaignCode
			if !startOK {
				row.StartDate = ref.StartDate
			}
			if !deadlineOK {
				row.Deadline = ref.Deadline
			}
			out = append(out, row)
		default:
			skipped++
		}
	}
	return out, skipped
}

func hasMeaningfulFields(raw Row) bool {
	for _, col := range meaningfulColumns {
		if raw.Field(col) != "" {
			return true
		}
	}
	return false
}
