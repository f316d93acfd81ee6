package timeparse_test

import (
	"testing"
	"time"

	"github.com/okian/linepulse/internal/timeparse"
	"github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	convey.Convey("Given collector timestamps", t, func() {
		loc := time.FixedZone("KST", 9*3600)

		convey.Convey("Then every known layout should parse in the given location", func() {
			for _, s := range []string{
				"2025-03-10 09:15:30",
				"2025-03-10 09:15:30.250",
				"2025-03-10T09:15:30",
				"2025/03/10 09:15:30",
			} {
				got, err := timeparse.Parse(s, loc)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Location(), convey.ShouldEqual, loc)
				convey.So(got.Hour(), convey.ShouldEqual, 9)
				convey.So(got.Minute(), convey.ShouldEqual, 15)
			}
		})

		convey.Convey("Then an explicit offset should be kept", func() {
			got, err := timeparse.Parse("2025-03-10T00:15:30Z", loc)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.UTC().Hour(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then garbage should fail", func() {
			for _, s := range []string{"", "yesterday", "10/03/2025"} {
				_, err := timeparse.Parse(s, loc)
				convey.So(err, convey.ShouldEqual, timeparse.ErrUnparsable)
			}
		})
	})
}
