package prompt

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"yuzu/internal/model/generation"
)

func TestEnhance(t *testing.T) {
	Convey("提示词增强", t, func() {
		Convey("按固定顺序拼接：风格、质量、运动、用户提示词", func() {
			got := Enhance("a fox in a forest", "ghibli", generation.JobKindTextToVideo)
			So(got, ShouldStartWith, StylePresets["ghibli"])
			So(got, ShouldContainSubstring, QualityTags)
			So(got, ShouldContainSubstring, "dynamic scene, smooth animation, cinematic camera work")
			So(got, ShouldEndWith, "a fox in a forest")
		})

		Convey("未知预设回落到 ghibli", func() {
			got := Enhance("a fox", "no-such-preset", generation.JobKindTextToVideo)
			So(got, ShouldStartWith, StylePresets["ghibli"])
		})

		Convey("未知任务类型使用文生视频的运动标签", func() {
			got := Enhance("a fox", "ghibli", generation.JobKind("unknown"))
			So(got, ShouldContainSubstring, "cinematic camera work")
		})

		Convey("用户提示词首尾空白被裁剪，空片段被跳过", func() {
			got := Enhance("   ", "ghibli", generation.JobKindTextToVideo)
			So(strings.HasSuffix(got, ", "), ShouldBeFalse)
			So(got, ShouldEndWith, motionTags[generation.JobKindTextToVideo])
		})

		Convey("确定性：相同输入产生逐字节相同输出", func() {
			a := Enhance("a fox in a forest", "shonen", generation.JobKindImageToVideo)
			b := Enhance("a fox in a forest", "shonen", generation.JobKindImageToVideo)
			So(a, ShouldEqual, b)
		})
	})
}

func TestNegative(t *testing.T) {
	Convey("负向提示词", t, func() {
		Convey("无用户输入时返回默认标签", func() {
			So(Negative(""), ShouldEqual, NegativeDefaults)
		})

		Convey("用户输入追加在默认标签之后", func() {
			got := Negative("  cropped  ")
			So(got, ShouldEqual, NegativeDefaults+", cropped")
		})
	})
}

func TestEnhanceScene(t *testing.T) {
	Convey("故事场景提示词增强", t, func() {
		base := SceneInput{
			ScenePrompt: "the fox meets a crane by the river",
			StylePreset: "ghibli",
			SceneIndex:  1,
			TotalScenes: 3,
		}

		Convey("角色子句带名字和描述", func() {
			in := base
			in.CharacterName = "Kit"
			in.CharacterDesc = "a small red fox"
			got := EnhanceScene(in)
			So(got, ShouldContainSubstring, "featuring character Kit (a small red fox)")
		})

		Convey("只有名字时不带括号", func() {
			in := base
			in.CharacterName = "Kit"
			got := EnhanceScene(in)
			So(got, ShouldContainSubstring, "featuring character Kit")
			So(got, ShouldNotContainSubstring, "(")
		})

		Convey("包含场景位置子句", func() {
			got := EnhanceScene(base)
			So(got, ShouldContainSubstring, "scene 2 of 3")
		})

		Convey("非接力模式不包含连贯性子句", func() {
			got := EnhanceScene(base)
			So(got, ShouldNotContainSubstring, "opening scene")
			So(got, ShouldNotContainSubstring, "continuation from previous scene")
			So(got, ShouldContainSubstring, "consistent art style throughout")
		})

		Convey("接力模式首场景使用开场子句", func() {
			in := base
			in.SceneIndex = 0
			in.Chained = true
			got := EnhanceScene(in)
			So(got, ShouldContainSubstring, "opening scene, establishing shot")
		})

		Convey("接力模式后续场景使用延续子句", func() {
			in := base
			in.Chained = true
			got := EnhanceScene(in)
			So(got, ShouldContainSubstring,
				"continuation from previous scene, maintain character appearance and color palette")
		})

		Convey("场景提示词收尾", func() {
			got := EnhanceScene(base)
			So(got, ShouldEndWith, "the fox meets a crane by the river")
		})

		Convey("确定性", func() {
			So(EnhanceScene(base), ShouldEqual, EnhanceScene(base))
		})
	})
}
