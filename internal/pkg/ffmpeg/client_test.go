package ffmpeg

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildCrossfadeFilter(t *testing.T) {
	Convey("交叉淡化滤镜图构建", t, func() {
		Convey("两段视频各生成一条 xfade 和 acrossfade", func() {
			filter := buildCrossfadeFilter([]float64{5, 5}, 0.5)
			So(filter, ShouldEqual,
				"[0:v][1:v]xfade=transition=fade:duration=0.50:offset=4.50[vout];"+
					"[0:a][1:a]acrossfade=d=0.50[aout]")
		})

		Convey("三段视频的偏移量按前段时长累计", func() {
			filter := buildCrossfadeFilter([]float64{5, 8, 5}, 0.5)
			parts := strings.Split(filter, ";")
			So(len(parts), ShouldEqual, 4)

			// off1 = 5 - 0.5 = 4.5, off2 = 4.5 + 8 - 0.5 = 12
			So(parts[0], ShouldEqual, "[0:v][1:v]xfade=transition=fade:duration=0.50:offset=4.50[v1]")
			So(parts[2], ShouldEqual, "[v1][2:v]xfade=transition=fade:duration=0.50:offset=12.00[vout]")
		})

		Convey("中间链路用编号标签，末段落到 vout/aout", func() {
			filter := buildCrossfadeFilter([]float64{4, 4, 4, 4}, 1)
			So(filter, ShouldContainSubstring, "[v1]")
			So(filter, ShouldContainSubstring, "[v2]")
			So(filter, ShouldContainSubstring, "[a1]")
			So(filter, ShouldContainSubstring, "[a2]")
			So(strings.Count(filter, "[vout]"), ShouldEqual, 1)
			So(strings.Count(filter, "[aout]"), ShouldEqual, 1)
		})
	})
}

func TestNewClient(t *testing.T) {
	Convey("FFmpeg 客户端初始化", t, func() {
		Convey("未设置环境变量时使用 PATH 中的可执行文件", func() {
			t.Setenv("FFMPEG_PATH", "")
			t.Setenv("FFPROBE_PATH", "")
			c := NewClient()
			So(c.ffmpegPath, ShouldEqual, "ffmpeg")
			So(c.ffprobePath, ShouldEqual, "ffprobe")
		})

		Convey("环境变量可以覆盖可执行文件路径", func() {
			t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
			t.Setenv("FFPROBE_PATH", "/opt/ffmpeg/bin/ffprobe")
			c := NewClient()
			So(c.ffmpegPath, ShouldEqual, "/opt/ffmpeg/bin/ffmpeg")
			So(c.ffprobePath, ShouldEqual, "/opt/ffmpeg/bin/ffprobe")
		})
	})
}
