package generation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	model "yuzu/internal/model/generation"
	"yuzu/internal/pkg/id"
	"yuzu/internal/pkg/storage"
)

// ProcessStory 按顺序执行故事的全部场景
// 连贯模式下每个场景完成后抽取片尾帧，作为下一场景的输入接力；
// 单个场景失败只断开接力链，不影响后续场景独立生成
func (s *Service) ProcessStory(ctx context.Context, storyID string) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("load story %s: %w", storyID, err)
	}

	scenes, err := s.scenes.FindByStoryID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("load scenes: %w", err)
	}
	if len(scenes) == 0 {
		log.Warn().Str("story_id", storyID).Msg("故事没有任何场景")
		return nil
	}

	coherent := story.Mode == model.StoryModeCoherent

	log.Info().
		Str("story_id", storyID).
		Int("scenes", len(scenes)).
		Bool("coherent", coherent).
		Msg("开始编排故事场景")

	var frameURL string
	for i, scene := range scenes {
		if scene.JobID == "" {
			log.Warn().Str("scene_id", scene.ID).Msg("场景未关联生成任务，跳过")
			frameURL = ""
			continue
		}

		// 首场景保持原样；后续场景拿到参考帧时改写为图生视频接力
		if coherent && i > 0 && frameURL != "" {
			if err := s.jobs.SetChainedInput(ctx, scene.JobID, frameURL); err != nil {
				log.Error().Err(err).Str("scene_id", scene.ID).Msg("接力改写失败")
				frameURL = ""
			}
		}

		// 场景之间留出间隔，避免连续打满厂商限流
		if i > 0 && s.worker.SceneChainDelay > 0 {
			if err := waitFor(ctx, s.worker.SceneChainDelay); err != nil {
				return err
			}
		}

		if err := s.scenes.UpdateStatus(ctx, scene.ID, model.JobStatusProcessing); err != nil {
			log.Warn().Err(err).Str("scene_id", scene.ID).Msg("更新场景状态失败")
		}

		if err := s.ProcessJob(ctx, scene.JobID); err != nil {
			log.Error().Err(err).
				Str("story_id", storyID).
				Str("scene_id", scene.ID).
				Int("order_index", scene.OrderIndex).
				Msg("场景生成失败，断开接力链")
			s.scenes.UpdateStatus(ctx, scene.ID, model.JobStatusFailed)
			frameURL = ""
			continue
		}

		if err := s.scenes.UpdateStatus(ctx, scene.ID, model.JobStatusCompleted); err != nil {
			log.Warn().Err(err).Str("scene_id", scene.ID).Msg("更新场景状态失败")
		}

		if coherent && i < len(scenes)-1 {
			url, err := s.extractSceneFrame(ctx, story, scene)
			if err != nil {
				log.Warn().Err(err).
					Str("scene_id", scene.ID).
					Msg("参考帧抽取失败，下一场景独立生成")
				frameURL = ""
			} else {
				frameURL = url
			}
		}
	}

	log.Info().Str("story_id", storyID).Msg("故事场景编排结束")
	return nil
}

// extractSceneFrame 抽取场景产出的片尾帧并转存，返回可访问URL
func (s *Service) extractSceneFrame(ctx context.Context, story *model.Story, scene *model.Scene) (string, error) {
	video, err := s.videos.FindByJobID(ctx, scene.JobID)
	if err != nil {
		return "", fmt.Errorf("load scene video: %w", err)
	}

	scratch, err := os.MkdirTemp("", "yuzu_frame_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	localVideo := filepath.Join(scratch, "scene.mp4")
	if err := s.fetchStoredObject(ctx, video.ObjectKey, localVideo); err != nil {
		return "", err
	}

	localFrame := filepath.Join(scratch, "frame.png")
	if err := s.media.ExtractTailFrame(ctx, localVideo, localFrame); err != nil {
		return "", fmt.Errorf("extract tail frame: %w", err)
	}

	key := storage.FrameKey(story.UserID, story.ID, id.New())
	url, err := s.uploadFile(ctx, localFrame, key, "image/png")
	if err != nil {
		return "", fmt.Errorf("upload frame: %w", err)
	}

	log.Info().
		Str("scene_id", scene.ID).
		Str("frame_key", key).
		Msg("参考帧抽取成功")
	return url, nil
}
