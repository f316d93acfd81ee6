package normalize_test

import (
	"math"
	"testing"

	"github.com/okian/linepulse/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given attribute blobs in different notations", t, func() {
		Convey("When the blob is a JSON object", func() {
			p := normalize.Parse(`{"start_time":"2025-03-10 09:00:00","work_time":240.5,"scan_count":60,"is_test":false,"note":null,"extra":{"a":[1,2]}}`)

			Convey("Then values should be stringified", func() {
				So(p.Kind, ShouldEqual, normalize.KindStructured)
				attrs := p.Attributes()
				So(attrs["start_time"], ShouldEqual, "2025-03-10 09:00:00")
				So(attrs["work_time"], ShouldEqual, "240.5")
				So(attrs["scan_count"], ShouldEqual, "60")
				So(attrs["is_test"], ShouldEqual, "false")
				So(attrs["extra"], ShouldEqual, `{"a":[1,2]}`)
				_, hasNote := attrs["note"]
				So(hasNote, ShouldBeFalse)
			})
		})

		Convey("When the blob is pipe-delimited key-value pairs", func() {
			p := normalize.Parse("PHS=1| CLC = 8801 |WID=W-7|garbage|OBD=2025-03-12")

			Convey("Then pairs should be split on the first equals sign and trimmed", func() {
				So(p.Kind, ShouldEqual, normalize.KindKeyValue)
				attrs := p.Attributes()
				So(attrs, ShouldHaveLength, 4)
				So(attrs["CLC"], ShouldEqual, "8801")
				So(attrs["PHS"], ShouldEqual, "1")
				So(attrs["OBD"], ShouldEqual, "2025-03-12")
			})
		})

		Convey("When a value itself contains an equals sign", func() {
			attrs := normalize.Normalize("expr=a=b|k=v")

			Convey("Then only the first equals sign splits", func() {
				So(attrs["expr"], ShouldEqual, "a=b")
				So(attrs["k"], ShouldEqual, "v")
			})
		})

		Convey("When the JSON is malformed but key-value pairs are present", func() {
			p := normalize.Parse(`{"broken": |A=1`)

			Convey("Then key-value parsing should be the fallback", func() {
				So(p.Kind, ShouldEqual, normalize.KindKeyValue)
				So(p.Attributes()["A"], ShouldEqual, "1")
			})
		})

		Convey("When the blob is empty or unrecognised", func() {
			for _, blob := range []string{"", "   ", "just text", `{"unterminated"`, "|||"} {
				p := normalize.Parse(blob)
				So(p.Kind, ShouldEqual, normalize.KindEmpty)
				So(p.Attributes(), ShouldNotBeNil)
				So(p.Attributes(), ShouldBeEmpty)
			}
		})
	})
}

func TestAttributeLookups(t *testing.T) {
	Convey("Given attributes with legacy and current names", t, func() {
		attrs := normalize.Attributes{
			"work_time_sec":      "310",
			"error_count":        "2.0",
			"has_error_or_reset": "Y",
			"is_test":            "maybe",
			"is_test_tray":       "1",
			"CLC":                "",
			"item_code":          "LEGACY",
			"idle_time":          "n/a",
			"total_idle_seconds": "12.5",
		}

		Convey("Then the first present parseable alias should win", func() {
			So(attrs.Float([]string{"work_time", "work_time_sec"}, 0), ShouldEqual, 310)
			So(attrs.Int([]string{"process_errors", "error_count"}, 0), ShouldEqual, 2)
			So(attrs.Bool([]string{"had_error", "has_error_or_reset"}, false), ShouldBeTrue)
			So(attrs.Bool([]string{"is_test", "is_test_tray"}, false), ShouldBeTrue)
			So(attrs.Float([]string{"idle_time", "total_idle_seconds"}, 0), ShouldEqual, 12.5)
		})

		Convey("Then a present string alias wins even when empty", func() {
			So(attrs.String([]string{"CLC", "item_code"}, "N/A"), ShouldEqual, "")
		})

		Convey("Then missing aliases fall back to the default", func() {
			So(attrs.String([]string{"WID"}, "N/A"), ShouldEqual, "N/A")
			So(attrs.Int([]string{"defective_count"}, 0), ShouldEqual, 0)
			So(attrs.Bool([]string{"is_restored_session"}, false), ShouldBeFalse)
			So(attrs.Has("WID", "PHS"), ShouldBeFalse)
			So(attrs.Has("CLC"), ShouldBeTrue)
		})
	})

	Convey("Given integer counters written as floats", t, func() {
		attrs := normalize.Attributes{
			"whole": "3.0",
			"huge":  "1e30",
			"tiny":  "-1e30",
		}

		Convey("Then whole floats should convert", func() {
			So(attrs.Int([]string{"whole"}, 0), ShouldEqual, 3)
		})

		Convey("Then out of range values should saturate", func() {
			So(attrs.Int([]string{"huge"}, 0), ShouldEqual, math.MaxInt)
			So(attrs.Int([]string{"tiny"}, 0), ShouldEqual, math.MinInt)
		})
	})
}
