// Package source 抽象外部表格数据源：按 Sheet 返回表头加数据行的二维网格。
// 排除名单内的 Sheet 不参与同步
package source

import "context"

// Grid 单个 Sheet 的原始网格，首行为表头
type Grid struct {
	Sheet string
	Cells [][]string
}

// Source 表格数据提供方
type Source interface {
	FetchGrids(ctx context.Context) ([]Grid, error)
}

// 默认排除的 Sheet（运营内部工作表，不属于镜像数据）
var DefaultExcludedSheets = []string{
	"Feasibilities",
	"Campagin Managers' - Updates",
	"HTMLs & Feedback",
}

func buildExcluded(names []string) map[string]bool {
	excluded := make(map[string]bool, len(names))
	for _, name := range names {
		excluded[name] = true
	}
	return excluded
}
