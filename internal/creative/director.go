package creative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"yuzu/internal/ai/component"
	"yuzu/internal/config"
)

// 各代理的采样温度：顾问要发散，分镜要稳定，提示词优化要保守
const (
	consultantTemperature = 0.7
	storyboardTemperature = 0.5
	engineerTemperature   = 0.3
)

// Message 对话历史中的一条消息
type Message struct {
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`
}

// Director 创意导演，编排三段代理流水线
// 大多数轮次只有顾问说话；顾问产出概念简报后自动接力分镜导演和提示词工程师
type Director struct {
	chatModel model.BaseChatModel
}

// NewDirector 创建创意导演
func NewDirector(ctx context.Context, cfg *config.AIConfig) (*Director, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &Director{chatModel: chatModel}, nil
}

// NewDirectorWithModel 用现成的模型创建，测试用
func NewDirectorWithModel(chatModel model.BaseChatModel) *Director {
	return &Director{chatModel: chatModel}
}

// Chat 执行一轮创意对话
// 返回顾问的回复文本；当流水线跑通时同时返回最终分镜，否则分镜为 nil
func (d *Director) Chat(ctx context.Context, history []Message, userMessage string) (string, *Storyboard, error) {
	reply, err := d.consult(ctx, history, userMessage)
	if err != nil {
		return "", nil, err
	}

	concept := ExtractConceptBrief(reply)
	if concept == nil {
		// 仍在澄清阶段
		return reply, nil, nil
	}

	log.Info().Msg("检测到概念简报，触发分镜流水线")

	storyboard, err := d.generateStoryboard(ctx, concept)
	if err != nil {
		return reply, nil, err
	}

	final := d.optimizePrompts(ctx, storyboard)
	return reply, final, nil
}

// consult 顾问对话：系统提示 + 历史 + 当前消息
func (d *Director) consult(ctx context.Context, history []Message, userMessage string) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(consultantPrompt))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}
	messages = append(messages, schema.UserMessage(userMessage))

	resp, err := d.chatModel.Generate(ctx, messages, model.WithTemperature(consultantTemperature))
	if err != nil {
		return "", fmt.Errorf("consultant: %w", err)
	}
	return resp.Content, nil
}

// generateStoryboard 分镜导演：概念简报转完整分镜，必须产出合法 JSON
func (d *Director) generateStoryboard(ctx context.Context, concept map[string]any) (*Storyboard, error) {
	brief, err := json.Marshal(concept)
	if err != nil {
		return nil, err
	}

	resp, err := d.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(storyboarderPrompt),
		schema.UserMessage(string(brief)),
	}, model.WithTemperature(storyboardTemperature))
	if err != nil {
		return nil, fmt.Errorf("storyboarder: %w", err)
	}

	storyboard := ExtractStoryboard(resp.Content)
	if storyboard == nil {
		return nil, errors.New("storyboard agent did not return valid JSON")
	}
	return storyboard, nil
}

// optimizePrompts 提示词工程师：只优化场景提示词
// 优化失败时保留原分镜，这一步是增益而不是门槛
func (d *Director) optimizePrompts(ctx context.Context, storyboard *Storyboard) *Storyboard {
	raw, err := json.Marshal(storyboard)
	if err != nil {
		return storyboard
	}

	resp, err := d.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(promptEngineerPrompt),
		schema.UserMessage(string(raw)),
	}, model.WithTemperature(engineerTemperature))
	if err != nil {
		log.Warn().Err(err).Msg("提示词优化调用失败，沿用原分镜")
		return storyboard
	}

	optimized := ExtractStoryboard(resp.Content)
	if optimized == nil {
		log.Warn().Msg("提示词优化产出非法 JSON，沿用原分镜")
		return storyboard
	}
	return optimized
}
