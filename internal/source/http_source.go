package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// HTTPSource 通过 HTTP 拉取远端表格网关的数据
// 网关协议与 Sheets API v4 对齐：
//
//	GET {base}                  -> {"sheets":[{"properties":{"title":...}}]}
//	GET {base}/values/{sheet}   -> {"values":[[...],[...]]}
//
// 单个 Sheet 拉取失败只记日志跳过，元数据拉取失败则整体失败
type HTTPSource struct {
	baseURL  string
	apiKey   string
	excluded map[string]bool
	client   *http.Client
	log      *zap.Logger
}

// NewHTTPSource 创建 HTTP 数据源，timeout 约束整个请求
func NewHTTPSource(baseURL, apiKey string, excludedSheets []string, timeout time.Duration, log *zap.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL:  baseURL,
		apiKey:   apiKey,
		excluded: buildExcluded(excludedSheets),
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// FetchGrids 拉取全部未排除 Sheet 的网格
func (s *HTTPSource) FetchGrids(ctx context.Context) ([]Grid, error) {
	var meta string
	err := requests.
		URL(s.baseURL).
		Client(s.client).
		Bearer(s.apiKey).
		ToString(&meta).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet metadata: %w", err)
	}
	if !gjson.Valid(meta) {
		return nil, fmt.Errorf("invalid sheet metadata response")
	}

	var grids []Grid
	for _, title := range gjson.Get(meta, "sheets.#.properties.title").Array() {
		name := title.String()
		if name == "" || s.excluded[name] {
			continue
		}

		grid, err := s.fetchGrid(ctx, name)
		if err != nil {
			s.log.Warn("拉取 Sheet 失败，跳过", zap.String("sheet", name), zap.Error(err))
			continue
		}
		grids = append(grids, grid)
	}
	return grids, nil
}

func (s *HTTPSource) fetchGrid(ctx context.Context, sheet string) (Grid, error) {
	var body string
	err := requests.
		URL(s.baseURL).
		Client(s.client).
		Bearer(s.apiKey).
		Pathf("/values/%s", sheet).
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return Grid{}, err
	}
	if !gjson.Valid(body) {
		return Grid{}, fmt.Errorf("invalid values response for sheet %q", sheet)
	}

	var cells [][]string
	for _, row := range gjson.Get(body, "values").Array() {
		var cellRow []string
		for _, cell := range row.Array() {
			cellRow = append(cellRow, cell.String())
		}
		cells = append(cells, cellRow)
	}
	return Grid{Sheet: sheet, Cells: cells}, nil
}
