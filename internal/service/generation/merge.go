package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	model "yuzu/internal/model/generation"
	"yuzu/internal/pkg/cache"
	"yuzu/internal/pkg/id"
	"yuzu/internal/pkg/storage"
)

// MergeStory 把故事中已完成场景的视频合成一条成片
// 场景衔接处做交叉淡化；滤镜路径失败时退回无损拼接
func (s *Service) MergeStory(ctx context.Context, storyID string) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("load story %s: %w", storyID, err)
	}

	if story.MergedStatus == model.MergeStatusMerging {
		return fmt.Errorf("story %s: %w", storyID, ErrMergeInProgress)
	}

	// 跨进程互斥，merged_status 只能挡住同进程的并发
	if s.cache != nil {
		ok, err := s.cache.SetNX(ctx, cache.MergeLockKey(storyID), 1, cache.MergeLockTTL)
		if err != nil {
			return fmt.Errorf("acquire merge lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("story %s: %w", storyID, ErrMergeInProgress)
		}
		defer s.cache.Delete(context.WithoutCancel(ctx), cache.MergeLockKey(storyID))
	}

	if err := s.stories.UpdateMergedStatus(ctx, storyID, model.MergeStatusMerging); err != nil {
		return fmt.Errorf("mark merging: %w", err)
	}

	mergedURL, err := s.runMerge(ctx, story)
	if err != nil {
		if uerr := s.stories.UpdateMergedStatus(ctx, storyID, model.MergeStatusFailed); uerr != nil {
			log.Error().Err(uerr).Str("story_id", storyID).Msg("写入合成失败终态失败")
		}
		log.Error().Err(err).Str("story_id", storyID).Msg("故事合成失败")
		return err
	}

	if err := s.stories.CompleteMerge(ctx, storyID, mergedURL); err != nil {
		return fmt.Errorf("mark merge completed: %w", err)
	}

	log.Info().Str("story_id", storyID).Str("url", mergedURL).Msg("故事合成完成")
	return nil
}

func (s *Service) runMerge(ctx context.Context, story *model.Story) (string, error) {
	scenes, err := s.scenes.FindByStoryID(ctx, story.ID)
	if err != nil {
		return "", fmt.Errorf("load scenes: %w", err)
	}

	// 只收集已有产出的场景，保持顺序索引的次序
	var clips []*model.Video
	for _, scene := range scenes {
		if scene.JobID == "" {
			continue
		}
		video, err := s.videos.FindByJobID(ctx, scene.JobID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Warn().Err(err).
				Str("scene_id", scene.ID).
				Int("order_index", scene.OrderIndex).
				Msg("场景没有产出视频，合成时跳过")
			continue
		}
		// 查询本身失败不等于场景没有产出，悄悄跳过会合出缺场景的成片
		if err != nil {
			return "", fmt.Errorf("load video for scene %s: %w", scene.ID, err)
		}
		clips = append(clips, video)
	}

	if len(clips) == 0 {
		return "", errors.New("no completed scenes to merge")
	}

	scratch, err := os.MkdirTemp("", "yuzu_merge_")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	paths := make([]string, len(clips))
	for i, clip := range clips {
		paths[i] = filepath.Join(scratch, fmt.Sprintf("scene_%03d.mp4", i))
		if err := s.fetchStoredObject(ctx, clip.ObjectKey, paths[i]); err != nil {
			return "", err
		}
	}

	outputPath := filepath.Join(scratch, "merged.mp4")
	if len(paths) == 1 {
		// 单场景无需拼接
		if err := copyFile(paths[0], outputPath); err != nil {
			return "", err
		}
	} else if err := s.concatClips(ctx, paths, outputPath); err != nil {
		return "", err
	}

	key := storage.MergedVideoKey(story.UserID, story.ID, id.New())
	url, err := s.uploadFile(ctx, outputPath, key, "video/mp4")
	if err != nil {
		return "", fmt.Errorf("upload merged video: %w", err)
	}
	return url, nil
}

// concatClips 交叉淡化拼接，失败时退回 concat demuxer 无损拼接
func (s *Service) concatClips(ctx context.Context, paths []string, outputPath string) error {
	inputs, durations, err := s.prepareClips(ctx, paths)
	if err == nil {
		err = s.media.CrossfadeConcat(ctx, inputs, durations, s.merge.FadeDuration, outputPath)
		if err == nil {
			return nil
		}
	}

	log.Warn().Err(err).Msg("交叉淡化拼接失败，退回无损拼接")
	if err := s.media.ConcatVideos(ctx, paths, outputPath); err != nil {
		return fmt.Errorf("concat videos: %w", err)
	}
	return nil
}

// prepareClips 探测各段时长并补齐缺失的音频轨
func (s *Service) prepareClips(ctx context.Context, paths []string) ([]string, []float64, error) {
	inputs := make([]string, len(paths))
	durations := make([]float64, len(paths))

	for i, path := range paths {
		info, err := s.media.GetVideoInfo(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("probe clip %d: %w", i, err)
		}
		if info.Duration <= 0 {
			return nil, nil, fmt.Errorf("probe clip %d: no duration", i)
		}
		durations[i] = info.Duration

		inputs[i] = path
		hasAudio, err := s.media.HasAudio(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("probe clip %d audio: %w", i, err)
		}
		if !hasAudio {
			padded := path + ".audio.mp4"
			if err := s.media.AddSilentAudio(ctx, path, padded); err != nil {
				return nil, nil, fmt.Errorf("pad clip %d audio: %w", i, err)
			}
			inputs[i] = padded
		}
	}

	return inputs, durations, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
