package simulate

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBindStrengths(t *testing.T) {
	Convey("Given a generated roster and the ids the server inserted", t, func() {
		roster := []Contestant{
			{Name: "sim-000", Strength: 2.0},
			{Name: "sim-001", Strength: 0.5},
			{Name: "sim-002", Strength: 1.5},
		}
		ids := map[string]int64{"sim-000": 7, "sim-002": 9}

		strength, unseeded := bindStrengths(roster, ids)

		Convey("Then inserted rows carry their server ids", func() {
			So(roster[0].ID, ShouldEqual, int64(7))
			So(roster[2].ID, ShouldEqual, int64(9))
			So(strength[7], ShouldEqual, 2.0)
			So(strength[9], ShouldEqual, 1.5)
		})

		Convey("Then the skipped row is counted and never keyed by id 0", func() {
			So(unseeded, ShouldEqual, 1)
			So(roster[1].ID, ShouldEqual, int64(0))
			So(strength, ShouldHaveLength, 2)
			_, ok := strength[0]
			So(ok, ShouldBeFalse)
		})
	})
}
