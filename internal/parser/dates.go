package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Excel 序列号纪元偏移：序列号 25569 对应 1970-01-01 UTC
const serialEpochOffset = 25569

// 字符串日期的候选格式，按顺序尝试
// 4 位年份的 YYYY-MM-DD 优先于 MM/DD/YY，避免歧义
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), // MM/DD/YYYY
	regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`), // MM-DD-YYYY
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), // YYYY-MM-DD
	regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2})`), // MM/DD/YY
}

// ParseDateValue 将异构的日期表示规范化为日历日期
// 输入可能是数字日序列号、ISO 字符串或若干本地化日期格式；
// 解析失败返回 ok=false，调用方按"跳过该字段"处理，绝不当作纪元零值。
// 恰好等于 1970-01-01 的结果与解析失败同样视为无效，
// 因为它与失败在数据上无法区分
func ParseDateValue(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return validate(serialToTime(serial))
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return validate(t.UTC())
	}

	for _, re := range datePatterns {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		var year, month, day int
		if len(m[1]) == 4 {
			// YYYY-MM-DD
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			// MM/DD/YYYY 或 MM-DD-YYYY 或 MM/DD/YY
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return validate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}

	return time.Time{}, false
}

// serialToTime 按序列号纪元公式转换，整数天与小数时刻分开处理避免舍入误差
func serialToTime(serial float64) time.Time {
	utcDays := int64(serial) - serialEpochOffset
	t := time.Unix(utcDays*86400, 0).UTC()

	fraction := serial - float64(int64(serial))
	totalSeconds := int64(86400*fraction + 0.0000001)
	return t.Add(time.Duration(totalSeconds) * time.Second)
}

func validate(t time.Time) (time.Time, bool) {
	if IsEpochAnchor(t) {
		return time.Time{}, false
	}
	return t, true
}

// IsEpochAnchor 判断日期是否落在纪元锚点 1970-01-01
func IsEpochAnchor(t time.Time) bool {
	return t.Year() == 1970 && t.Month() == time.January && t.Day() == 1
}

// FormatDate 日期的标准字符串表示 YYYY-MM-DD
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
