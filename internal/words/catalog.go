package words

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// 词条记录，对应词库文件中的一项
// type 字段是语言标签，例如 "en" / "nl" / "uk"
type Entry struct {
	Word string `json:"word"`
	Type string `json:"type"`
}

// Catalog 是启动时一次性加载的词库，加载后只读
type Catalog struct {
	byLanguage map[string][]string
}

// LoadCatalog 读取目录下所有 .json 词库文件并合并
// 单个文件解析失败只记录日志并跳过，不影响其他文件
func LoadCatalog(dir string) (*Catalog, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取词库目录失败: %w", err)
	}

	byLanguage := make(map[string][]string)
	// 同一语言内去重，抽牌要求词语互不相同
	seen := make(map[string]map[string]struct{})

	total := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, file.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			zap.L().Warn("读取词库文件失败，已跳过", zap.String("file", path), zap.Error(err))
			continue
		}

		var entries []Entry

		if err := json.Unmarshal(data, &entries); err != nil {
			zap.L().Warn("解析词库文件失败，已跳过", zap.String("file", path), zap.Error(err))
			continue
		}

		for _, e := range entries {
			if e.Word == "" || e.Type == "" {
				continue
			}

			if seen[e.Type] == nil {
				seen[e.Type] = make(map[string]struct{})
			}

			if _, dup := seen[e.Type][e.Word]; dup {
				continue
			}

			seen[e.Type][e.Word] = struct{}{}
			byLanguage[e.Type] = append(byLanguage[e.Type], e.Word)
			total++
		}
	}

	zap.L().Info(
		"词库加载完成",
		zap.Int("total_words", total),
		zap.Int("languages", len(byLanguage)),
	)

	return &Catalog{byLanguage: byLanguage}, nil
}

// WordsFor 返回指定语言的全部词语（副本）
func (c *Catalog) WordsFor(language string) []string {
	src := c.byLanguage[language]
	out := make([]string, len(src))
	copy(out, src)

	return out
}

// Languages 返回已加载的语言标签，按字典序排列
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.byLanguage))
	for lang := range c.byLanguage {
		langs = append(langs, lang)
	}

	sort.Strings(langs)

	return langs
}
