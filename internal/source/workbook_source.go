package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// WorkbookSource 以本地 Excel 工作簿为数据源
// 用于离线运行和测试，每次拉取时重新打开文件以读到最新内容
type WorkbookSource struct {
	path     string
	excluded map[string]bool
	log      *zap.Logger
}

// NewWorkbookSource 创建工作簿数据源
func NewWorkbookSource(path string, excludedSheets []string, log *zap.Logger) *WorkbookSource {
	return &WorkbookSource{
		path:     path,
		excluded: buildExcluded(excludedSheets),
		log:      log,
	}
}

// FetchGrids 读取工作簿内全部未排除 Sheet 的网格
func (s *WorkbookSource) FetchGrids(ctx context.Context) ([]Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var grids []Grid
	for _, name := range f.GetSheetList() {
		if s.excluded[name] {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			s.log.Warn("读取 Sheet 失败，跳过", zap.String("sheet", name), zap.Error(err))
			continue
		}
		grids = append(grids, Grid{Sheet: name, Cells: rows})
	}
	return grids, nil
}
