package parser

import "regexp"

// 活动编码从自由文本中按 "ITL" 前缀提取
// 严格版要求 4 位数字（上传聚合使用），宽松版接受任意位数（表格镜像使用）
var (
	strictCodeRe = regexp.MustCompile(`(?i)ITL\s*-*\s*(\d{4})`)
	looseCodeRe  = regexp.MustCompile(`(?i)ITL\s*-*\s*(\d+)`)
)

// ResolveCampaignCode 宽松提取活动编码，依次尝试候选字段，首个命中生效
// 未命中返回 ok=false，由调用方决定跳过还是沿用前值
func ResolveCampaignCode(candidates ...string) (string, bool) {
	return resolve(looseCodeRe, candidates)
}

// ResolveStrictCampaignCode 严格提取 4 位活动编码
func ResolveStrictCampaignCode(candidates ...string) (string, bool) {
	return resolve(strictCodeRe, candidates)
}

func resolve(re *regexp.Regexp, candidates []string) (string, bool) {
	for _, text := range candidates {
		if text == "" {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
