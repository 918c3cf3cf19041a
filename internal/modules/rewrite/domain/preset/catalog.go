package preset

// DefaultKey 未给出任何风格时使用的预设
const DefaultKey = "polish"

// Preset 预设风格
type Preset struct {
	Key    string `json:"key"`
	Phrase string `json:"phrase"`
}

// Catalog 预设目录，启动时构建，之后只读
type Catalog struct {
	items []Preset
	index map[string]int
}

// NewCatalog 按给定顺序构建目录，重复的 key 只保留第一个
func NewCatalog(items ...Preset) *Catalog {
	c := &Catalog{
		items: make([]Preset, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, p := range items {
		if _, dup := c.index[p.Key]; dup {
			continue
		}
		c.index[p.Key] = len(c.items)
		c.items = append(c.items, p)
	}
	return c
}

// Builtin 内置预设目录
func Builtin() *Catalog {
	return NewCatalog(
		Preset{Key: "polish", Phrase: "polished, clear, concise, and professional"},
		Preset{Key: "simplify", Phrase: "simpler and easier to read while preserving meaning"},
		Preset{Key: "bulletize", Phrase: "bullet-point summary; concise, factual, and well-structured"},
		Preset{Key: "formal", Phrase: "formal and professional tone"},
		Preset{Key: "casual", Phrase: "friendly, approachable, and casual tone"},
		Preset{Key: "brief", Phrase: "as short as possible while preserving all key information"},
	)
}

// Lookup 按 key 查找短语
func (c *Catalog) Lookup(key string) (string, bool) {
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.items[i].Phrase, true
}

// Keys 按注册顺序返回所有 key（返回副本）
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.items))
	for i, p := range c.items {
		keys[i] = p.Key
	}
	return keys
}

// DefaultPhrase 默认预设的短语；目录中没有默认预设时取第一项
func (c *Catalog) DefaultPhrase() string {
	if phrase, ok := c.Lookup(DefaultKey); ok {
		return phrase
	}
	if len(c.items) > 0 {
		return c.items[0].Phrase
	}
	return ""
}
