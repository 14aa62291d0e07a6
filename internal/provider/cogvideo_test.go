package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
)

func TestCogVideoSubmit(t *testing.T) {
	Convey("CogVideo 任务提交", t, func() {
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(map[string]any{"id": "cg-1"})
		}))
		defer srv.Close()

		p := NewCogVideo(&config.CogVideoConfig{BaseURL: srv.URL, APIKey: "cg-key"}, srv.Client(), nil)

		Convey("画面比例映射为像素尺寸", func() {
			cases := map[string]string{
				"16:9": "1280x720",
				"9:16": "720x1280",
				"1:1":  "1024x1024",
				"4:3":  "1280x720",
			}
			for ratio, size := range cases {
				_, err := p.Submit(context.Background(), &GenerationRequest{
					Kind:        generation.JobKindTextToVideo,
					Prompt:      "x",
					Duration:    5,
					AspectRatio: ratio,
				})
				So(err, ShouldBeNil)
				So(gotBody["size"], ShouldEqual, size)
			}
		})

		Convey("时长只接受 5 或 10，其他值回落到 5", func() {
			for _, c := range []struct{ in, want int }{{5, 5}, {10, 10}, {8, 5}, {15, 5}} {
				_, err := p.Submit(context.Background(), &GenerationRequest{
					Kind:     generation.JobKindTextToVideo,
					Prompt:   "x",
					Duration: c.in,
				})
				So(err, ShouldBeNil)
				So(gotBody["duration"], ShouldEqual, c.want)
			}
		})

		Convey("提交参数固定质量优先并带音频", func() {
			_, err := p.Submit(context.Background(), &GenerationRequest{
				Kind:     generation.JobKindTextToVideo,
				Prompt:   "x",
				Duration: 5,
			})
			So(err, ShouldBeNil)
			So(gotBody["model"], ShouldEqual, "cogvideox-3")
			So(gotBody["quality"], ShouldEqual, "quality")
			So(gotBody["with_audio"], ShouldEqual, true)
			So(gotBody["fps"], ShouldEqual, 30)
		})
	})
}

func TestCogVideoPoll(t *testing.T) {
	Convey("CogVideo 任务轮询", t, func() {
		newPoll := func(code int, body map[string]any) (*CogVideo, *httptest.Server) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				json.NewEncoder(w).Encode(body)
			}))
			return NewCogVideo(&config.CogVideoConfig{BaseURL: srv.URL, APIKey: "k"}, srv.Client(), nil), srv
		}

		Convey("成功时从 video_result 列表取地址", func() {
			p, srv := newPoll(http.StatusOK, map[string]any{
				"task_status":  "SUCCESS",
				"video_result": []any{map[string]any{"url": "http://cdn/c.mp4"}},
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "cg-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusCompleted)
			So(res.VideoURL, ShouldEqual, "http://cdn/c.mp4")
		})

		Convey("video_result 是对象时也能取到地址", func() {
			p, srv := newPoll(http.StatusOK, map[string]any{
				"task_status":  "SUCCESS",
				"video_result": map[string]any{"url": "http://cdn/d.mp4"},
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "cg-1")
			So(err, ShouldBeNil)
			So(res.VideoURL, ShouldEqual, "http://cdn/d.mp4")
		})

		Convey("查询接口 4xx 携带任务级错误，按失败处理", func() {
			p, srv := newPoll(http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": "task not found"},
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "cg-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusFailed)
			So(res.ErrorMessage, ShouldEqual, "ZhipuAI API error (400): task not found")
		})

		Convey("失败但无错误信息时使用兜底文案", func() {
			p, srv := newPoll(http.StatusOK, map[string]any{"task_status": "FAIL"})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "cg-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusFailed)
			So(res.ErrorMessage, ShouldEqual, "Video generation failed")
		})

		Convey("PROCESSING 按处理中对待", func() {
			p, srv := newPoll(http.StatusOK, map[string]any{"task_status": "PROCESSING"})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "cg-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusProcessing)
			So(res.Progress, ShouldEqual, 50)
		})
	})
}
