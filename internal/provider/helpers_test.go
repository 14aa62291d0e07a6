package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseProgress(t *testing.T) {
	Convey("解析厂商上报的进度", t, func() {
		Convey("数字类型直接取整", func() {
			So(parseProgress(float64(45.7), 0), ShouldEqual, 45)
			So(parseProgress(80, 0), ShouldEqual, 80)
		})

		Convey("百分比字符串去掉百分号", func() {
			So(parseProgress("45%", 0), ShouldEqual, 45)
			So(parseProgress(" 99 % ", 0), ShouldEqual, 99)
			So(parseProgress("12.5", 0), ShouldEqual, 12)
		})

		Convey("越界值截断到 0-100", func() {
			So(parseProgress(float64(150), 0), ShouldEqual, 100)
			So(parseProgress(float64(-3), 0), ShouldEqual, 0)
		})

		Convey("解析失败时返回兜底值", func() {
			So(parseProgress("almost done", 30), ShouldEqual, 30)
			So(parseProgress(nil, 50), ShouldEqual, 50)
			So(parseProgress("", 60), ShouldEqual, 60)
		})
	})
}

func TestJSONHelpers(t *testing.T) {
	Convey("容错读取 JSON 字段", t, func() {
		data := map[string]any{
			"obj":  map[string]any{"name": "x"},
			"list": []any{"a", "b"},
			"num":  float64(1),
		}

		Convey("类型匹配时正常取值", func() {
			So(str(asMap(data["obj"]), "name"), ShouldEqual, "x")
			So(len(asList(data["list"])), ShouldEqual, 2)
		})

		Convey("类型不匹配时返回零值而不是恐慌", func() {
			So(asMap(data["num"]), ShouldBeNil)
			So(asList(data["obj"]), ShouldBeNil)
			So(str(asMap(data["missing"]), "name"), ShouldEqual, "")
			So(str(nil, "name"), ShouldEqual, "")
		})
	})
}

func TestImageFetcher(t *testing.T) {
	Convey("图片取回与内联", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing.png" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
		}))
		defer srv.Close()

		Convey("下载后编码为 data URI", func() {
			f := &imageFetcher{client: srv.Client()}
			uri, err := f.FetchAsDataURI(context.Background(), srv.URL+"/frame.png")
			So(err, ShouldBeNil)
			So(uri, ShouldStartWith, "data:image/png;base64,")
		})

		Convey("取回失败时返回错误", func() {
			f := &imageFetcher{client: srv.Client()}
			_, err := f.FetchAsDataURI(context.Background(), srv.URL+"/missing.png")
			So(err, ShouldNotBeNil)
		})

		Convey("外部地址改写为内部地址", func() {
			f := &imageFetcher{
				client:       srv.Client(),
				publicBase:   "http://media.example.com",
				internalBase: "http://minio:9000",
			}
			So(f.rewriteInternal("http://media.example.com/bucket/a.png"),
				ShouldEqual, "http://minio:9000/bucket/a.png")
			So(f.rewriteInternal("http://other.example.com/b.png"),
				ShouldEqual, "http://other.example.com/b.png")
		})

		Convey("未配置内外网映射时不改写", func() {
			f := &imageFetcher{client: srv.Client()}
			So(f.rewriteInternal("http://media.example.com/a.png"),
				ShouldEqual, "http://media.example.com/a.png")
		})
	})
}
