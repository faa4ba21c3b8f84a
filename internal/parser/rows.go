package parser

import "strings"

// Row 原始表格行：表头到单元格值的映射，附带来源 Sheet 名
type Row struct {
	Fields      map[string]string
	SourceSheet string
}

// Field 读取列值，缺失的列返回空字符串
func (r Row) Field(name string) string {
	return r.Fields[name]
}

// ExtractRows 将二维表格（首行表头）转为键值记录序列
// 行尾缺失的单元格补空字符串；不足两行的空 Sheet 返回空序列而非错误
func ExtractRows(sheetName string, grid [][]string) []Row {
	if len(grid) < 2 {
		return nil
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				fields[name] = cells[i]
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, Row{Fields: fields, SourceSheet: sheetName})
	}
	return rows
}
