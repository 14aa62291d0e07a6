package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	model "yuzu/internal/model/generation"
	"yuzu/internal/notify"
	"yuzu/internal/pkg/id"
	"yuzu/internal/pkg/storage"
	"yuzu/internal/prompt"
	"yuzu/internal/provider"
)

// errTimeout 轮询预算耗尽
var errTimeout = errors.New("Generation timed out")

// ProcessJob 执行单个生成任务：提交厂商、轮询、落盘产出
// 失败时写入失败终态并返回错误，让队列按策略重试；已完成的任务直接跳过
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	if job.Status == model.JobStatusCompleted {
		log.Info().Str("job_id", jobID).Msg("任务已完成，跳过")
		return nil
	}

	if err := s.runJob(ctx, job); err != nil {
		msg := truncate(err.Error(), 1000)
		if uerr := s.jobs.UpdateStatus(ctx, job.ID, model.JobStatusFailed, msg); uerr != nil {
			log.Error().Err(uerr).Str("job_id", job.ID).Msg("写入失败终态失败")
		}
		s.notifyJob(ctx, job, model.JobStatusFailed, job.Progress, truncate(err.Error(), 500), "", "")

		log.Error().Err(err).
			Str("job_id", job.ID).
			Str("provider", job.Provider).
			Msg("生成任务失败")
		return err
	}
	return nil
}

func (s *Service) runJob(ctx context.Context, job *model.Job) error {
	prov, err := s.providers.New(job.Provider)
	if err != nil {
		return err
	}

	// 提示词增强只做一次，重试的任务已带增强标记
	if !job.MetaBool("enhanced") {
		enhanced := prompt.Enhance(job.Prompt, job.StylePreset, job.Kind)
		if err := s.jobs.UpdatePrompt(ctx, job.ID, enhanced); err != nil {
			return fmt.Errorf("persist enhanced prompt: %w", err)
		}
		job.Prompt = enhanced
	}

	if err := s.jobs.UpdateStatus(ctx, job.ID, model.JobStatusSubmitted, ""); err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	s.notifyJob(ctx, job, model.JobStatusSubmitted, 5, "", "", "")

	req := buildRequest(job)
	providerJobID, err := prov.Submit(ctx, req)
	if err != nil {
		return err
	}

	if err := s.jobs.UpdateProviderJobID(ctx, job.ID, providerJobID); err != nil {
		return fmt.Errorf("persist provider job id: %w", err)
	}
	if err := s.jobs.UpdateStatus(ctx, job.ID, model.JobStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	s.notifyJob(ctx, job, model.JobStatusProcessing, 10, "", "", "")

	log.Info().
		Str("job_id", job.ID).
		Str("provider", job.Provider).
		Str("provider_job_id", providerJobID).
		Msg("任务已提交厂商")

	return s.pollUntilDone(ctx, job, prov, providerJobID)
}

// pollUntilDone 轮询厂商直到终态或预算耗尽
// 单次轮询出错按处理中对待，瞬时抖动不应终结整个任务
func (s *Service) pollUntilDone(ctx context.Context, job *model.Job, prov provider.Provider, providerJobID string) error {
	deadline := time.Now().Add(s.worker.PollTimeout)
	lastProgress := 10

	for {
		if time.Now().After(deadline) {
			return errTimeout
		}

		res, err := prov.Poll(ctx, providerJobID)
		if err != nil {
			log.Warn().Err(err).
				Str("job_id", job.ID).
				Str("provider", job.Provider).
				Msg("轮询失败，继续等待")
		} else {
			switch res.Status {
			case provider.StatusCompleted:
				if res.VideoURL == "" {
					return fmt.Errorf("provider %s reported completion without a video url", job.Provider)
				}
				return s.finalizeJob(ctx, job, res.VideoURL)
			case provider.StatusFailed:
				msg := res.ErrorMessage
				if msg == "" {
					msg = "Generation failed"
				}
				return errors.New(msg)
			default:
				// 进度只前进不后退，厂商未上报时保持上次的值
				// 进度原地踏步也照常落库并推送，订阅方靠这个心跳判断任务还活着
				if res.Progress > lastProgress {
					lastProgress = res.Progress
				}
				if err := s.jobs.UpdateProgress(ctx, job.ID, lastProgress); err != nil {
					log.Warn().Err(err).Str("job_id", job.ID).Msg("更新进度失败")
				}
				s.notifyJob(ctx, job, model.JobStatusProcessing, lastProgress, "", "", "")
			}
		}

		if err := waitFor(ctx, s.worker.PollInterval); err != nil {
			return err
		}
	}
}

// finalizeJob 下载厂商产出并转存到自有存储，写入成功终态
func (s *Service) finalizeJob(ctx context.Context, job *model.Job, providerVideoURL string) error {
	scratch, err := os.MkdirTemp("", "yuzu_job_")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	localVideo := filepath.Join(scratch, "output.mp4")
	size, err := s.downloadToFile(ctx, providerVideoURL, localVideo)
	if err != nil {
		return err
	}

	videoID := id.New()
	videoKey := storage.VideoKey(job.UserID, videoID)
	videoURL, err := s.uploadFile(ctx, localVideo, videoKey, "video/mp4")
	if err != nil {
		return fmt.Errorf("upload video: %w", err)
	}

	// 缩略图尽力而为，抽帧或上传失败不影响任务结果
	var thumbURL string
	localThumb := filepath.Join(scratch, "thumb.jpg")
	if err := s.media.ExtractThumbnail(ctx, localVideo, localThumb); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("缩略图抽取失败")
	} else {
		thumbURL, err = s.uploadFile(ctx, localThumb, storage.ThumbnailKey(job.UserID, videoID), "image/jpeg")
		if err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Msg("缩略图上传失败")
			thumbURL = ""
		}
	}

	var duration float64
	if info, err := s.media.GetVideoInfo(ctx, localVideo); err == nil {
		duration = info.Duration
	}

	if err := s.jobs.Complete(ctx, job.ID, videoURL, thumbURL); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	if err := s.videos.Create(ctx, &model.Video{
		ID:           videoID,
		UserID:       job.UserID,
		JobID:        job.ID,
		URL:          videoURL,
		ThumbnailURL: thumbURL,
		ObjectKey:    videoKey,
		FileSize:     size,
		Duration:     duration,
	}); err != nil {
		return fmt.Errorf("create video record: %w", err)
	}

	s.notifyJob(ctx, job, model.JobStatusCompleted, 100, "", videoURL, thumbURL)

	log.Info().
		Str("job_id", job.ID).
		Str("video_id", videoID).
		Int64("size", size).
		Msg("生成任务完成")
	return nil
}

// buildRequest 把任务实体转换为厂商请求
func buildRequest(job *model.Job) *provider.GenerationRequest {
	return &provider.GenerationRequest{
		Kind:           job.Kind,
		Prompt:         job.Prompt,
		StylePreset:    job.StylePreset,
		InputImageURL:  job.InputImageURL,
		SubjectRefURL:  job.MetaString("subject_ref_url", ""),
		NegativePrompt: prompt.Negative(job.NegativePrompt()),
		Duration:       job.Duration(),
		AspectRatio:    job.AspectRatio(),
		StyleStrength:  job.StyleStrength(),
	}
}

func (s *Service) notifyJob(ctx context.Context, job *model.Job, status model.JobStatus, progress int, errMsg, videoURL, thumbURL string) {
	s.notifier.PublishJobUpdate(ctx, job.UserID, &notify.JobUpdate{
		JobID:        job.ID,
		Status:       status.String(),
		Progress:     progress,
		Error:        errMsg,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
	})
}
