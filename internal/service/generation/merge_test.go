package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"yuzu/internal/config"
	model "yuzu/internal/model/generation"
	"yuzu/internal/pkg/storage"
)

// mergeFixture 故事+场景+已上传的场景产出
func mergeFixture(sceneCount int) (*fakeStories, *fakeScenes, *fakeVideos, *fakeStorage) {
	stories := newFakeStories(&model.Story{
		ID:           "story-1",
		UserID:       "user-1",
		Mode:         model.StoryModeCoherent,
		MergedStatus: model.MergeStatusNotStarted,
	})

	scenes := newFakeScenes()
	videos := &fakeVideos{}
	store := newFakeStorage()

	ctx := context.Background()
	for i := 0; i < sceneCount; i++ {
		sceneID := "scene-" + string(rune('1'+i))
		jobID := "job-" + string(rune('1'+i))
		scenes.Create(ctx, &model.Scene{
			ID: sceneID, StoryID: "story-1", OrderIndex: i,
			JobID: jobID, Status: model.JobStatusCompleted,
		})

		key := storage.VideoKey("user-1", jobID)
		store.Upload(ctx, key, strings.NewReader("clip-"+jobID), "video/mp4")
		videos.Create(ctx, &model.Video{
			ID: "video-" + jobID, UserID: "user-1", JobID: jobID,
			URL: "http://store.test/" + key, ObjectKey: key,
		})
	}
	return stories, scenes, videos, store
}

func newMergeService(stories *fakeStories, scenes *fakeScenes, videos *fakeVideos, store *fakeStorage, media *fakeMedia) *Service {
	return NewService(Deps{
		Jobs:      newFakeJobs(),
		Stories:   stories,
		Scenes:    scenes,
		Videos:    videos,
		Providers: &fakeFactory{},
		Storage:   store,
		Media:     media,
		Worker:    testWorkerConfig(),
		Merge:     &config.MergeConfig{FadeDuration: 0.5},
	})
}

func TestMergeStory(t *testing.T) {
	Convey("故事成片合成", t, func() {
		Convey("多场景走交叉淡化拼接", func() {
			stories, scenes, videos, store := mergeFixture(3)
			media := &fakeMedia{duration: 5, hasAudio: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)

			story := stories.get("story-1")
			So(story.MergedStatus, ShouldEqual, model.MergeStatusCompleted)
			So(story.MergedVideoURL, ShouldStartWith, "http://store.test/merged_videos/user-1/story-1/")

			So(media.crossfadeCalls, ShouldEqual, 1)
			So(media.lastFade, ShouldEqual, 0.5)
			So(media.lastDurations, ShouldResemble, []float64{5, 5, 5})
			So(media.concatCalls, ShouldEqual, 0)
		})

		Convey("缺音轨的片段在拼接前补静音", func() {
			stories, scenes, videos, store := mergeFixture(2)
			media := &fakeMedia{duration: 5, hasAudio: false}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)
			So(media.silentPadCalls, ShouldEqual, 2)
		})

		Convey("交叉淡化失败退回无损拼接", func() {
			stories, scenes, videos, store := mergeFixture(2)
			media := &fakeMedia{duration: 5, hasAudio: true, failCrossfade: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)
			So(media.crossfadeCalls, ShouldEqual, 1)
			So(media.concatCalls, ShouldEqual, 1)
			So(stories.get("story-1").MergedStatus, ShouldEqual, model.MergeStatusCompleted)
		})

		Convey("时长探测失败同样退回无损拼接", func() {
			stories, scenes, videos, store := mergeFixture(2)
			media := &fakeMedia{hasAudio: true, failProbe: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)
			So(media.crossfadeCalls, ShouldEqual, 0)
			So(media.concatCalls, ShouldEqual, 1)
		})

		Convey("单场景直接转存，不做任何拼接", func() {
			stories, scenes, videos, store := mergeFixture(1)
			media := &fakeMedia{duration: 5, hasAudio: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)
			So(media.crossfadeCalls, ShouldEqual, 0)
			So(media.concatCalls, ShouldEqual, 0)
			So(stories.get("story-1").MergedStatus, ShouldEqual, model.MergeStatusCompleted)
		})

		Convey("没有任何已完成场景时合成失败", func() {
			stories := newFakeStories(&model.Story{
				ID: "story-1", UserID: "user-1", MergedStatus: model.MergeStatusNotStarted,
			})
			scenes := newFakeScenes(&model.Scene{
				ID: "scene-1", StoryID: "story-1", OrderIndex: 0,
				JobID: "job-1", Status: model.JobStatusFailed,
			})
			svc := newMergeService(stories, scenes, &fakeVideos{}, newFakeStorage(), &fakeMedia{})

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no completed scenes")
			So(stories.get("story-1").MergedStatus, ShouldEqual, model.MergeStatusFailed)
		})

		Convey("已在合成中的故事拒绝并发请求", func() {
			stories, scenes, videos, store := mergeFixture(2)
			stories.get("story-1").MergedStatus = model.MergeStatusMerging
			svc := newMergeService(stories, scenes, videos, store, &fakeMedia{duration: 5, hasAudio: true})

			err := svc.MergeStory(context.Background(), "story-1")
			So(errors.Is(err, ErrMergeInProgress), ShouldBeTrue)
		})

		Convey("场景产出查询出错时合成失败，不能合出缺场景的成片", func() {
			stories, scenes, videos, store := mergeFixture(3)
			videos.findErrs = map[string]error{"job-2": errors.New("connection reset by peer")}
			media := &fakeMedia{duration: 5, hasAudio: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "connection reset")
			So(stories.get("story-1").MergedStatus, ShouldEqual, model.MergeStatusFailed)
			So(media.crossfadeCalls, ShouldEqual, 0)
			So(media.concatCalls, ShouldEqual, 0)
		})

		Convey("部分场景无产出时只合成有产出的", func() {
			stories, scenes, videos, store := mergeFixture(2)
			scenes.Create(context.Background(), &model.Scene{
				ID: "scene-x", StoryID: "story-1", OrderIndex: 2,
				JobID: "job-x", Status: model.JobStatusFailed,
			})
			media := &fakeMedia{duration: 5, hasAudio: true}
			svc := newMergeService(stories, scenes, videos, store, media)

			err := svc.MergeStory(context.Background(), "story-1")
			So(err, ShouldBeNil)
			So(media.lastInputsCount, ShouldEqual, 2)
		})
	})
}
