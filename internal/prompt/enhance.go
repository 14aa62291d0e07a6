package prompt

import (
	"fmt"
	"strings"

	"yuzu/internal/model/generation"
)

// StylePresets 动画风格预设
// 未知预设一律回落到 ghibli
var StylePresets = map[string]string{
	"ghibli":          "studio ghibli style, watercolor, soft lighting, whimsical, miyazaki inspired",
	"shonen":          "shonen anime style, dynamic action, bold lines, vibrant colors, dramatic lighting",
	"seinen":          "seinen anime style, detailed, mature, realistic proportions, atmospheric",
	"cyberpunk_anime": "cyberpunk anime style, neon lights, futuristic, ghost in the shell inspired",
	"chibi":           "chibi anime style, cute, super deformed, big eyes, kawaii",
}

// QualityTags 质量标签，所有增强结果都会携带
const QualityTags = "masterpiece, best quality, highly detailed, sharp focus, " +
	"professional, 4k, anime screencap"

// motionTags 按任务类型区分的运动标签
var motionTags = map[generation.JobKind]string{
	generation.JobKindImageToVideo: "smooth motion, fluid animation, cinematic movement",
	generation.JobKindTextToVideo:  "dynamic scene, smooth animation, cinematic camera work",
	generation.JobKindVideoToAnime: "anime conversion, stylized animation, consistent style throughout",
	generation.JobKindStoryScene:   "narrative flow, scene continuity, consistent characters",
}

// NegativeDefaults 默认负向提示词
const NegativeDefaults = "low quality, worst quality, blurry, pixelated, distorted, deformed, " +
	"bad anatomy, extra limbs, ugly, watermark, text, logo, signature, " +
	"3d render, photorealistic, live action"

// stylePrefix 解析风格预设，未知时回落到 ghibli
func stylePrefix(preset string) string {
	if p, ok := StylePresets[preset]; ok {
		return p
	}
	return StylePresets["ghibli"]
}

// join 以 ", " 连接非空片段
func join(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// Enhance 为用户提示词叠加风格、质量和运动标签
// 纯函数，无IO无状态，相同输入产生逐字节相同的输出
func Enhance(userPrompt, preset string, kind generation.JobKind) string {
	motion, ok := motionTags[kind]
	if !ok {
		motion = motionTags[generation.JobKindTextToVideo]
	}

	return join([]string{
		stylePrefix(preset),
		QualityTags,
		motion,
		strings.TrimSpace(userPrompt),
	})
}

// Negative 构建负向提示词，叠加用户自定义文本
func Negative(userNegative string) string {
	if userNegative != "" {
		return NegativeDefaults + ", " + strings.TrimSpace(userNegative)
	}
	return NegativeDefaults
}

// SceneInput 故事场景增强的输入
type SceneInput struct {
	ScenePrompt   string
	CharacterName string
	CharacterDesc string
	StylePreset   string
	SceneIndex    int // 从0开始
	TotalScenes   int
	Chained       bool // 连贯模式下为 true，追加接力连贯性提示
}

// EnhanceScene 为故事场景提示词叠加角色和连贯性上下文
func EnhanceScene(in SceneInput) string {
	parts := []string{
		stylePrefix(in.StylePreset),
		QualityTags,
	}

	if in.CharacterName != "" {
		charContext := "featuring character " + in.CharacterName
		if in.CharacterDesc != "" {
			charContext += " (" + in.CharacterDesc + ")"
		}
		parts = append(parts, charContext)
	}

	parts = append(parts, fmt.Sprintf("scene %d of %d", in.SceneIndex+1, in.TotalScenes))

	if in.Chained {
		if in.SceneIndex == 0 {
			parts = append(parts, "opening scene, establishing shot")
		} else {
			parts = append(parts, "continuation from previous scene, "+
				"maintain character appearance and color palette")
		}
	}

	parts = append(parts, "consistent art style throughout")
	parts = append(parts, strings.TrimSpace(in.ScenePrompt))

	return join(parts)
}
