package analysis

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// embeddedAgents 是内置的 Agent 目录.
//
//go:embed agents/*.yaml
var embeddedAgents embed.FS

// DefaultAgents 返回内置目录的文件系统，根目录即类别文件所在目录.
func DefaultAgents() fs.FS {
	sub, err := fs.Sub(embeddedAgents, "agents")
	if err != nil {
		panic(err) // embed 路径在编译期确定
	}
	return sub
}

// DefaultCategories 返回默认加载的类别.
func DefaultCategories() []string {
	return []string{"business", "web", "data", "film"}
}

// categoryExtensions 是类别文件按顺序尝试的扩展名.
var categoryExtensions = []string{".yaml", ".yml", ".json"}

// PromptItem 是一条提示词.
type PromptItem struct {
	ID      string `yaml:"id,omitempty" json:"id,omitempty"`
	Type    string `yaml:"type,omitempty" json:"type,omitempty"`
	Content string `yaml:"content" json:"content"`
}

// Agent 是目录中的一个分析 Agent.
type Agent struct {
	ID            string       `yaml:"id,omitempty" json:"id,omitempty"`
	Name          string       `yaml:"name" json:"name"`
	Description   string       `yaml:"description,omitempty" json:"description,omitempty"`
	Model         string       `yaml:"model,omitempty" json:"model,omitempty"`
	Category      string       `yaml:"-" json:"category,omitempty"`
	SystemPrompts []PromptItem `yaml:"systemPrompts" json:"systemPrompts"`
	UserPrompts   []PromptItem `yaml:"userPrompts" json:"userPrompts"`
}

// Catalog 是按类别分组的 Agent 目录，保留加载时的类别顺序.
type Catalog struct {
	categories []string
	agents     map[string][]Agent
}

// LoadCatalog 从 fsys 加载 categories 中的每个类别.
// 单个类别读取或解析失败时记为空列表并记录告警，不影响其他类别.
func LoadCatalog(fsys fs.FS, categories []string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "catalog"))
	if categories == nil {
		categories = DefaultCategories()
	}

	c := &Catalog{
		categories: make([]string, 0, len(categories)),
		agents:     make(map[string][]Agent, len(categories)),
	}
	for _, category := range categories {
		if _, dup := c.agents[category]; dup {
			continue
		}
		c.categories = append(c.categories, category)

		agents, err := loadCategory(fsys, category)
		if err != nil {
			logger.Warn("failed to load agent category",
				zap.String("category", category),
				zap.Error(err),
			)
			agents = []Agent{}
		}
		c.agents[category] = agents
	}
	return c
}

func loadCategory(fsys fs.FS, category string) ([]Agent, error) {
	var (
		data []byte
		name string
		err  error
	)
	for _, ext := range categoryExtensions {
		name = category + ext
		data, err = fs.ReadFile(fsys, name)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no definition file for category %q: %w", category, err)
	}

	var agents []Agent
	switch path.Ext(name) {
	case ".json":
		if err := json.Unmarshal(data, &agents); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", name, err)
		}
	default:
		if err := yaml.Unmarshal(data, &agents); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", name, err)
		}
	}

	for i := range agents {
		a := &agents[i]
		a.Category = category
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		assignPromptIDs(a.SystemPrompts)
		assignPromptIDs(a.UserPrompts)
		if a.SystemPrompts == nil {
			a.SystemPrompts = []PromptItem{}
		}
		if a.UserPrompts == nil {
			a.UserPrompts = []PromptItem{}
		}
	}
	if agents == nil {
		agents = []Agent{}
	}
	return agents, nil
}

func assignPromptIDs(items []PromptItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
}

// Categories 返回加载顺序的类别名.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category 返回某个类别的 Agent，未知类别返回 nil.
func (c *Catalog) Category(name string) []Agent {
	return c.agents[name]
}

// All 按类别顺序返回全部 Agent.
func (c *Catalog) All() []Agent {
	var out []Agent
	for _, category := range c.categories {
		out = append(out, c.agents[category]...)
	}
	return out
}

// Find 按 ID 或名称（不区分大小写）查找 Agent.
func (c *Catalog) Find(ref string) (Agent, bool) {
	for _, a := range c.All() {
		if a.ID == ref || strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	return Agent{}, false
}
