package creative

import (
	"encoding/json"
	"regexp"

	"github.com/rs/zerolog/log"
)

var (
	conceptBriefRe = regexp.MustCompile("(?s)```concept_brief\\s*\\n?(.*?)\\n?\\s*```")
	jsonBlockRe    = regexp.MustCompile("(?s)```json\\s*\\n?(.*?)\\n?\\s*```")
)

// Character 分镜中的角色设定
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenePlan 单个场景的分镜计划
type ScenePlan struct {
	OrderIndex    int    `json:"order_index"`
	Prompt        string `json:"prompt"`
	CharacterName string `json:"character_name,omitempty"`
	Duration      int    `json:"duration"`
}

// Storyboard 完整分镜，创意流程的最终产出
type Storyboard struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	StylePreset    string      `json:"style_preset"`
	GenerationMode string      `json:"generation_mode"`
	Characters     []Character `json:"characters"`
	Scenes         []ScenePlan `json:"scenes"`
}

// ExtractConceptBrief 从回复中提取 concept_brief 代码块里的概念简报
// 块不存在、JSON 非法或缺少确认标记时返回 nil，表示对话仍在澄清阶段
func ExtractConceptBrief(text string) map[string]any {
	m := conceptBriefRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		log.Warn().Err(err).Msg("概念简报 JSON 解析失败")
		return nil
	}

	if ok, _ := data["concept_brief"].(bool); !ok {
		return nil
	}
	return data
}

// ExtractStoryboard 从回复中提取 json 代码块里的分镜
func ExtractStoryboard(text string) *Storyboard {
	m := jsonBlockRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var sb Storyboard
	if err := json.Unmarshal([]byte(m[1]), &sb); err != nil {
		log.Warn().Err(err).Msg("分镜 JSON 解析失败")
		return nil
	}
	return &sb
}
