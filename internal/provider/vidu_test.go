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

func TestViduSubmit(t *testing.T) {
	Convey("Vidu 任务提交", t, func() {
		var gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(map[string]any{"task_id": "vd-1"})
		}))
		defer srv.Close()

		p := NewVidu(&config.ViduConfig{BaseURL: srv.URL, APIKey: "vd-key"}, srv.Client())

		Convey("认证头是 Token 前缀", func() {
			_, err := p.Submit(context.Background(), &GenerationRequest{
				Kind:   generation.JobKindTextToVideo,
				Prompt: "x",
			})
			So(err, ShouldBeNil)
			So(gotAuth, ShouldEqual, "Token vd-key")
		})

		Convey("文生视频固定动漫风格", func() {
			id, err := p.Submit(context.Background(), &GenerationRequest{
				Kind:   generation.JobKindTextToVideo,
				Prompt: "a fox running",
			})
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "vd-1")
			So(gotBody["type"], ShouldEqual, "text2video")
			So(gotBody["model"], ShouldEqual, "vidu2.0")
			So(gotBody["style"], ShouldEqual, "anime")
			So(str(asMap(gotBody["input"]), "prompt"), ShouldEqual, "a fox running")
		})

		Convey("图生视频携带图片地址", func() {
			_, err := p.Submit(context.Background(), &GenerationRequest{
				Kind:          generation.JobKindImageToVideo,
				Prompt:        "x",
				InputImageURL: "http://img/a.png",
			})
			So(err, ShouldBeNil)
			So(gotBody["type"], ShouldEqual, "img2video")
			So(str(asMap(gotBody["input"]), "image_url"), ShouldEqual, "http://img/a.png")
		})
	})
}

func TestViduPoll(t *testing.T) {
	Convey("Vidu 任务轮询", t, func() {
		newPoll := func(body map[string]any) (*Vidu, *httptest.Server) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(body)
			}))
			return NewVidu(&config.ViduConfig{BaseURL: srv.URL, APIKey: "k"}, srv.Client()), srv
		}

		Convey("成功时优先取 creations 列表", func() {
			p, srv := newPoll(map[string]any{
				"status":    "success",
				"creations": []any{map[string]any{"url": "http://cdn/v.mp4"}},
				"video_url": "http://cdn/flat.mp4",
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "vd-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusCompleted)
			So(res.VideoURL, ShouldEqual, "http://cdn/v.mp4")
		})

		Convey("没有 creations 时回落到平铺字段", func() {
			p, srv := newPoll(map[string]any{
				"status":    "success",
				"video_url": "http://cdn/flat.mp4",
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "vd-1")
			So(err, ShouldBeNil)
			So(res.VideoURL, ShouldEqual, "http://cdn/flat.mp4")
		})

		Convey("失败时取 err_msg", func() {
			p, srv := newPoll(map[string]any{
				"status":  "fail",
				"err_msg": "nsfw content detected",
			})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "vd-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusFailed)
			So(res.ErrorMessage, ShouldEqual, "nsfw content detected")
		})

		Convey("其他状态按处理中", func() {
			p, srv := newPoll(map[string]any{"status": "processing"})
			defer srv.Close()

			res, err := p.Poll(context.Background(), "vd-1")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, StatusProcessing)
			So(res.Progress, ShouldEqual, 50)
		})
	})
}
