package provider

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"yuzu/internal/config"
)

func TestFactoryNew(t *testing.T) {
	Convey("按名称创建厂商适配器", t, func() {
		cfg := &config.ProvidersConfig{
			Kling:    config.KlingConfig{AccessKey: "ak", SecretKey: "sk"},
			Jimeng:   config.JimengConfig{APIKey: "jm-key"},
			Vidu:     config.ViduConfig{APIKey: "vd-key"},
			CogVideo: config.CogVideoConfig{APIKey: "cg-key"},
			ComfyUI:  config.ComfyUIConfig{BaseURL: "http://comfy:8188"},
		}
		f := NewFactory(cfg, nil)

		Convey("五个厂商都能创建且名称正确", func() {
			for _, name := range []string{"kling", "jimeng", "vidu", "cogvideo", "comfyui"} {
				p, err := f.New(name)
				So(err, ShouldBeNil)
				So(p.Name(), ShouldEqual, name)
			}
		})

		Convey("未知厂商返回 ErrUnknownProvider", func() {
			_, err := f.New("runway")
			So(errors.Is(err, ErrUnknownProvider), ShouldBeTrue)
		})

		Convey("缺少凭证的厂商创建失败", func() {
			empty := NewFactory(&config.ProvidersConfig{}, nil)
			for _, name := range []string{"kling", "jimeng", "vidu", "cogvideo"} {
				_, err := empty.New(name)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "no API key configured")
			}
		})

		Convey("comfyui 自托管无需凭证", func() {
			empty := NewFactory(&config.ProvidersConfig{}, nil)
			p, err := empty.New("comfyui")
			So(err, ShouldBeNil)
			So(p.Name(), ShouldEqual, "comfyui")
		})

		Convey("配置了 MinIO 内外网地址时 fetcher 可改写", func() {
			storageCfg := &config.StorageConfig{
				Type: "minio",
				MinIO: &config.MinIOConfig{
					Endpoint:       "minio:9000",
					PublicEndpoint: "media.example.com",
				},
			}
			f2 := NewFactory(cfg, storageCfg)
			So(f2.fetcher.rewriteInternal("http://media.example.com/b/k.png"),
				ShouldEqual, "http://minio:9000/b/k.png")
		})
	})
}
