package prompt

import "github.com/cloudwego/eino/schema"

// Pair 交给上游模型的两段指令
type Pair struct {
	System string
	User   string
}

// Messages 转换为 Eino 标准消息格式
func (p Pair) Messages() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	}
}
