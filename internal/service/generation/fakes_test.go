package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"yuzu/internal/config"
	model "yuzu/internal/model/generation"
	"yuzu/internal/notify"
	"yuzu/internal/pkg/ffmpeg"
	"yuzu/internal/pkg/storage"
	"yuzu/internal/provider"
)

// 内存仓库，行为与 Mongo 实现保持一致

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newFakeJobs(jobs ...*model.Job) *fakeJobs {
	f := &fakeJobs{jobs: make(map[string]*model.Job)}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(ctx context.Context, j *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j.Status == "" {
		j.Status = model.JobStatusQueued
	}
	f.jobs[j.ID] = j
	return nil
}

func (f *fakeJobs) FindByID(ctx context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.Status = status
	j.ErrorMessage = errorMsg
	return nil
}

func (f *fakeJobs) UpdateProgress(ctx context.Context, id string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Progress = progress
	return nil
}

func (f *fakeJobs) UpdateProviderJobID(ctx context.Context, id string, providerJobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].ProviderJobID = providerJobID
	return nil
}

func (f *fakeJobs) UpdatePrompt(ctx context.Context, id string, prompt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.Prompt = prompt
	if j.Metadata == nil {
		j.Metadata = map[string]any{}
	}
	j.Metadata["enhanced"] = true
	return nil
}

func (f *fakeJobs) Complete(ctx context.Context, id string, outputVideoURL, thumbnailURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.Status = model.JobStatusCompleted
	j.OutputVideoURL = outputVideoURL
	j.ThumbnailURL = thumbnailURL
	j.Progress = 100
	j.ErrorMessage = ""
	return nil
}

func (f *fakeJobs) SetChainedInput(ctx context.Context, id string, frameURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.Kind = model.JobKindImageToVideo
	j.InputImageURL = frameURL
	if j.Metadata == nil {
		j.Metadata = map[string]any{}
	}
	j.Metadata["chained"] = true
	return nil
}

func (f *fakeJobs) get(id string) *model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

type fakeStories struct {
	mu      sync.Mutex
	stories map[string]*model.Story
}

func newFakeStories(stories ...*model.Story) *fakeStories {
	f := &fakeStories{stories: make(map[string]*model.Story)}
	for _, s := range stories {
		f.stories[s.ID] = s
	}
	return f
}

func (f *fakeStories) Create(ctx context.Context, s *model.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stories[s.ID] = s
	return nil
}

func (f *fakeStories) FindByID(ctx context.Context, id string) (*model.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[id]
	if !ok {
		return nil, errors.New("story not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStories) UpdateMergedStatus(ctx context.Context, id string, status model.MergeStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stories[id].MergedStatus = status
	return nil
}

func (f *fakeStories) CompleteMerge(ctx context.Context, id string, mergedVideoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.stories[id]
	s.MergedStatus = model.MergeStatusCompleted
	s.MergedVideoURL = mergedVideoURL
	return nil
}

func (f *fakeStories) get(id string) *model.Story {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stories[id]
}

type fakeScenes struct {
	mu     sync.Mutex
	scenes map[string]*model.Scene
}

func newFakeScenes(scenes ...*model.Scene) *fakeScenes {
	f := &fakeScenes{scenes: make(map[string]*model.Scene)}
	for _, s := range scenes {
		f.scenes[s.ID] = s
	}
	return f
}

func (f *fakeScenes) Create(ctx context.Context, s *model.Scene) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenes[s.ID] = s
	return nil
}

func (f *fakeScenes) FindByID(ctx context.Context, id string) (*model.Scene, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scenes[id]
	if !ok {
		return nil, errors.New("scene not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScenes) FindByStoryID(ctx context.Context, storyID string) ([]*model.Scene, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Scene
	for _, s := range f.scenes {
		if s.StoryID == storyID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeScenes) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenes[id].Status = status
	return nil
}

func (f *fakeScenes) get(id string) *model.Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scenes[id]
}

type fakeVideos struct {
	mu       sync.Mutex
	videos   []*model.Video
	findErrs map[string]error // jobID -> 注入的查询错误
}

func (f *fakeVideos) Create(ctx context.Context, v *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos = append(f.videos, v)
	return nil
}

func (f *fakeVideos) FindByID(ctx context.Context, id string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeVideos) FindByJobID(ctx context.Context, jobID string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.findErrs[jobID]; err != nil {
		return nil, err
	}
	for _, v := range f.videos {
		if v.JobID == jobID {
			return v, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeVideos) byJob(jobID string) *model.Video {
	v, _ := f.FindByJobID(context.Background(), jobID)
	return v
}

// fakeStorage 内存对象存储
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = content
	return "http://store.test/" + key, nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (f *fakeStorage) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "http://store.test/" + key + "?signed", nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) GetFileInfo(ctx context.Context, key string) (*storage.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return &storage.FileInfo{Key: key, Size: int64(len(content))}, nil
}

func (f *fakeStorage) GetStorageType() string { return "fake" }

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// fakeMedia 媒体处理桩
type fakeMedia struct {
	duration      float64
	hasAudio      bool
	failThumbnail bool
	failCrossfade bool
	failProbe     bool

	mu              sync.Mutex
	crossfadeCalls  int
	concatCalls     int
	silentPadCalls  int
	tailFrameCalls  int
	lastFade        float64
	lastDurations   []float64
	lastInputsCount int
}

func (f *fakeMedia) GetVideoInfo(ctx context.Context, videoPath string) (*ffmpeg.VideoInfo, error) {
	if f.failProbe {
		return nil, errors.New("probe failed")
	}
	return &ffmpeg.VideoInfo{Width: 1280, Height: 720, FPS: 30, Duration: f.duration}, nil
}

func (f *fakeMedia) HasAudio(ctx context.Context, videoPath string) (bool, error) {
	return f.hasAudio, nil
}

func (f *fakeMedia) ExtractTailFrame(ctx context.Context, videoPath, outputPath string) error {
	f.mu.Lock()
	f.tailFrameCalls++
	f.mu.Unlock()
	return os.WriteFile(outputPath, []byte("frame"), 0o644)
}

func (f *fakeMedia) ExtractThumbnail(ctx context.Context, videoPath, outputPath string) error {
	if f.failThumbnail {
		return errors.New("thumbnail failed")
	}
	return os.WriteFile(outputPath, []byte("thumb"), 0o644)
}

func (f *fakeMedia) AddSilentAudio(ctx context.Context, inputPath, outputPath string) error {
	f.mu.Lock()
	f.silentPadCalls++
	f.mu.Unlock()
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, content, 0o644)
}

func (f *fakeMedia) CrossfadeConcat(ctx context.Context, inputPaths []string, durations []float64, fade float64, outputPath string) error {
	f.mu.Lock()
	f.crossfadeCalls++
	f.lastFade = fade
	f.lastDurations = durations
	f.lastInputsCount = len(inputPaths)
	f.mu.Unlock()
	if f.failCrossfade {
		return errors.New("crossfade failed")
	}
	return os.WriteFile(outputPath, []byte("merged"), 0o644)
}

func (f *fakeMedia) ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error {
	f.mu.Lock()
	f.concatCalls++
	f.mu.Unlock()
	return os.WriteFile(outputPath, []byte("merged-plain"), 0o644)
}

// fakeProvider 脚本化的厂商适配器
// pollResults 依次消费，耗尽后重复最后一个
type fakeProvider struct {
	name      string
	submitErr error

	mu                sync.Mutex
	submits           int
	polls             int
	pollResults       []*provider.GenerationResult
	pollErr           error
	transientPollErrs int // 前 N 次轮询返回瞬时错误
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Submit(ctx context.Context, req *provider.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return fmt.Sprintf("%s-task-%d", f.name, f.submits), nil
}

func (f *fakeProvider) Poll(ctx context.Context, providerJobID string) (*provider.GenerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.transientPollErrs > 0 {
		f.transientPollErrs--
		return nil, errors.New("transient poll error")
	}
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.pollResults) == 0 {
		return &provider.GenerationResult{Status: provider.StatusProcessing}, nil
	}
	res := f.pollResults[0]
	if len(f.pollResults) > 1 {
		f.pollResults = f.pollResults[1:]
	}
	return res, nil
}

type fakeFactory struct {
	providers map[string]provider.Provider
}

func (f *fakeFactory) New(name string) (provider.Provider, error) {
	p, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownProvider, name)
	}
	return p, nil
}

// recordingNotifier 记录全部推送
type recordingNotifier struct {
	mu      sync.Mutex
	updates []*notify.JobUpdate
}

func (n *recordingNotifier) PublishJobUpdate(ctx context.Context, userID string, update *notify.JobUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
}

func (n *recordingNotifier) all() []*notify.JobUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*notify.JobUpdate, len(n.updates))
	copy(out, n.updates)
	return out
}

func (n *recordingNotifier) last() *notify.JobUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.updates) == 0 {
		return nil
	}
	return n.updates[len(n.updates)-1]
}

func testWorkerConfig() *config.WorkerConfig {
	return &config.WorkerConfig{
		Concurrency:     1,
		PollInterval:    time.Millisecond,
		PollTimeout:     time.Second,
		SceneChainDelay: 0,
	}
}
