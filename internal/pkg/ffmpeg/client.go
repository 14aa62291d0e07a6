package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client FFmpeg 客户端
// 用于封装 FFmpeg 命令调用
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// VideoInfo 视频信息
type VideoInfo struct {
	Width    int     // 宽度
	Height   int     // 高度
	FPS      float64 // 帧率
	Duration float64 // 时长（秒）
}

// GetVideoInfo 获取视频信息
func (c *Client) GetVideoInfo(ctx context.Context, videoPath string) (*VideoInfo, error) {
	// ffprobe -v error -select_streams v:0 -show_entries stream=width,height,r_frame_rate -show_entries format=duration -of json video.mp4
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	// 只需要四个字段，直接按关键字扫描
	outputStr := string(output)
	var info VideoInfo

	if idx := strings.Index(outputStr, `"width":`); idx != -1 {
		var width int
		if _, err := fmt.Sscanf(outputStr[idx:], `"width":%d`, &width); err == nil {
			info.Width = width
		}
	}

	if idx := strings.Index(outputStr, `"height":`); idx != -1 {
		var height int
		if _, err := fmt.Sscanf(outputStr[idx:], `"height":%d`, &height); err == nil {
			info.Height = height
		}
	}

	if idx := strings.Index(outputStr, `"duration":`); idx != -1 {
		var duration float64
		if _, err := fmt.Sscanf(outputStr[idx:], `"duration":"%f"`, &duration); err == nil {
			info.Duration = duration
		}
	}

	// r_frame_rate 格式是 "30000/1001"
	if idx := strings.Index(outputStr, `"r_frame_rate":`); idx != -1 {
		var num, den int
		if _, err := fmt.Sscanf(outputStr[idx:], `"r_frame_rate":"%d/%d"`, &num, &den); err == nil && den > 0 {
			info.FPS = float64(num) / float64(den)
		}
	}

	return &info, nil
}

// HasAudio 检查视频是否带音频流
func (c *Client) HasAudio(ctx context.Context, videoPath string) (bool, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe failed: %w", err)
	}
	return strings.Contains(string(output), "audio"), nil
}

// ExtractFrame 从指定时间点抽取单帧
func (c *Client) ExtractFrame(ctx context.Context, videoPath, outputPath string, at float64) error {
	if at < 0 {
		at = 0
	}

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", videoPath,
		"-vframes", "1",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extract frame failed: %w", err)
	}

	log.Info().
		Str("video", videoPath).
		Str("output", outputPath).
		Float64("at", at).
		Msg("帧抽取成功")

	return nil
}

// ExtractTailFrame 抽取片尾帧
// 取结尾前 0.5 秒的位置，避开编码器在最后几帧的淡出/花屏
func (c *Client) ExtractTailFrame(ctx context.Context, videoPath, outputPath string) error {
	info, err := c.GetVideoInfo(ctx, videoPath)
	if err != nil {
		return err
	}

	at := info.Duration - 0.5
	if at < 0 {
		at = 0
	}
	return c.ExtractFrame(ctx, videoPath, outputPath, at)
}

// ExtractThumbnail 生成视频缩略图（第 1 秒处，宽 320 等比缩放）
func (c *Client) ExtractThumbnail(ctx context.Context, videoPath, outputPath string) error {
	args := []string{
		"-y",
		"-ss", "00:00:01",
		"-i", videoPath,
		"-vframes", "1",
		"-vf", "scale=320:-1",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail failed: %w", err)
	}
	return nil
}

// AddSilentAudio 给没有音频流的视频补一条静音轨
// acrossfade 要求每路输入都有音频，合成前必须补齐
func (c *Client) AddSilentAudio(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg add silent audio failed: %w", err)
	}
	return nil
}

// buildCrossfadeFilter 构建多段视频交叉淡化的滤镜图
// 每段衔接处视频用 xfade、音频用 acrossfade，偏移量按前段累计时长递推
func buildCrossfadeFilter(durations []float64, fade float64) string {
	n := len(durations)

	var parts []string
	offset := durations[0] - fade
	vIn, aIn := "[0:v]", "[0:a]"

	for i := 1; i < n; i++ {
		vOut := fmt.Sprintf("[v%d]", i)
		aOut := fmt.Sprintf("[a%d]", i)
		if i == n-1 {
			vOut = "[vout]"
			aOut = "[aout]"
		}

		parts = append(parts, fmt.Sprintf("%s[%d:v]xfade=transition=fade:duration=%.2f:offset=%.2f%s",
			vIn, i, fade, offset, vOut))
		parts = append(parts, fmt.Sprintf("%s[%d:a]acrossfade=d=%.2f%s",
			aIn, i, fade, aOut))

		vIn, aIn = vOut, aOut
		offset += durations[i] - fade
	}

	return strings.Join(parts, ";")
}

// CrossfadeConcat 把多段视频用交叉淡化拼接成一条
// durations 是各段的实际时长（秒），与 inputPaths 一一对应
func (c *Client) CrossfadeConcat(ctx context.Context, inputPaths []string, durations []float64, fade float64, outputPath string) error {
	if len(inputPaths) < 2 {
		return fmt.Errorf("crossfade concat needs at least 2 videos")
	}
	if len(inputPaths) != len(durations) {
		return fmt.Errorf("inputs and durations length mismatch: %d vs %d", len(inputPaths), len(durations))
	}

	args := []string{"-y"}
	for _, path := range inputPaths {
		args = append(args, "-i", path)
	}

	args = append(args,
		"-filter_complex", buildCrossfadeFilter(durations, fade),
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-crf", "20",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "160k",
		"-movflags", "+faststart",
		outputPath,
	)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg crossfade failed: %w", err)
	}

	log.Info().
		Int("count", len(inputPaths)).
		Float64("fade", fade).
		Str("output", outputPath).
		Msg("视频交叉淡化拼接成功")

	return nil
}

// ConcatVideos 合并多个视频文件
// 使用 concat demuxer 的无损拼接，滤镜拼接失败时的保底路径
func (c *Client) ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error {
	if len(videoPaths) == 0 {
		return fmt.Errorf("no videos to concat")
	}

	tempDir := filepath.Dir(outputPath)
	concatListFile := filepath.Join(tempDir, fmt.Sprintf("concat_list_%d.txt", time.Now().Unix()))

	file, err := os.Create(concatListFile)
	if err != nil {
		return fmt.Errorf("create concat list file: %w", err)
	}
	defer os.Remove(concatListFile)

	for _, videoPath := range videoPaths {
		absPath, err := filepath.Abs(videoPath)
		if err != nil {
			return fmt.Errorf("get absolute path: %w", err)
		}
		fmt.Fprintf(file, "file '%s'\n", absPath)
	}
	file.Close()

	// ffmpeg -f concat -safe 0 -i concat_list.txt -c copy output.mp4
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c", "copy", // 使用 copy 避免重新编码
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	log.Info().
		Int("count", len(videoPaths)).
		Str("output", outputPath).
		Msg("视频合并成功")

	return nil
}
