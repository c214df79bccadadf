package rating_test

import (
	"math"
	"testing"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpectedScore(t *testing.T) {
	Convey("Given pairs of ratings", t, func() {
		pairs := [][2]int{{1200, 1200}, {1000, 1600}, {1850, 1420}, {-50, 3000}, {1500, 1499}}

		Convey("Then expected scores of both sides sum to one", func() {
			for _, p := range pairs {
				sum := rating.ExpectedScore(p[0], p[1]) + rating.ExpectedScore(p[1], p[0])
				So(sum, ShouldAlmostEqual, 1.0, 1e-12)
			}
		})

		Convey("Then equal ratings are a coin flip", func() {
			So(rating.ExpectedScore(1200, 1200), ShouldEqual, 0.5)
		})

		Convey("Then a 400 point edge is 10-to-1 odds", func() {
			So(rating.ExpectedScore(1600, 1200), ShouldAlmostEqual, 10.0/11.0, 1e-12)
		})
	})
}

func TestKFactor(t *testing.T) {
	Convey("Given match counts", t, func() {
		Convey("Then K stays within bounds and never increases", func() {
			prev := rating.MaxK
			for m := 0; m <= 500; m++ {
				k := rating.KFactor(m)
				So(k, ShouldBeBetweenOrEqual, rating.MinK, rating.MaxK)
				So(k, ShouldBeLessThanOrEqualTo, prev)
				prev = k
			}
		})

		Convey("Then known points match the curve", func() {
			So(rating.KFactor(0), ShouldEqual, 32)
			So(rating.KFactor(1), ShouldEqual, 23)
			So(rating.KFactor(3), ShouldEqual, 16)
			So(rating.KFactor(15), ShouldEqual, 8)
			So(rating.KFactor(1000), ShouldEqual, 8)
		})

		Convey("Then negative counts behave like zero", func() {
			So(rating.KFactor(-4), ShouldEqual, rating.MaxK)
		})
	})
}

func TestUpdateElo(t *testing.T) {
	Convey("Given two fresh contestants at 1200", t, func() {
		in := rating.UpdateInput{RatingA: 1200, RatingB: 1200}

		Convey("When A wins", func() {
			in.Outcome = model.OutcomeA
			res := rating.UpdateElo(in)

			Convey("Then A gains 16 and B loses 16", func() {
				So(res.RatingA, ShouldEqual, 1216)
				So(res.RatingB, ShouldEqual, 1184)
				So(res.DeltaA, ShouldEqual, 16)
				So(res.DeltaB, ShouldEqual, -16)
			})
		})

		Convey("When B wins", func() {
			in.Outcome = model.OutcomeB
			res := rating.UpdateElo(in)
			So(res.DeltaA, ShouldEqual, -16)
			So(res.DeltaB, ShouldEqual, 16)
		})

		Convey("When they tie", func() {
			in.Outcome = model.OutcomeTie
			res := rating.UpdateElo(in)
			So(res.DeltaA, ShouldEqual, 0)
			So(res.DeltaB, ShouldEqual, 0)
		})
	})

	Convey("Given sides with different experience", t, func() {
		in := rating.UpdateInput{RatingA: 1200, RatingB: 1200, MatchesA: 0, MatchesB: 15, Outcome: model.OutcomeA}

		Convey("Then the exchange is not zero-sum", func() {
			res := rating.UpdateElo(in)
			So(res.DeltaA, ShouldEqual, 16)
			So(res.DeltaB, ShouldEqual, -4)
		})
	})

	Convey("Given a huge upset", t, func() {
		in := rating.UpdateInput{RatingA: 1000, RatingB: 1600, Outcome: model.OutcomeA}

		Convey("Then the raw delta exceeds the swing cap", func() {
			res := rating.UpdateElo(in)
			So(res.DeltaA, ShouldEqual, 31)
			So(res.DeltaB, ShouldEqual, -31)
		})
	})
}

func TestClampMovement(t *testing.T) {
	Convey("Given arbitrary deltas", t, func() {
		Convey("Then the result never exceeds the swing", func() {
			for _, d := range []float64{-1000, -25, -24, -3.5, 0, 7, 24, 24.01, 1e9} {
				So(math.Abs(rating.ClampMovement(d, 24)), ShouldBeLessThanOrEqualTo, 24)
			}
			So(rating.ClampMovement(-7, 24), ShouldEqual, -7)
			So(rating.ClampMovement(40, 10), ShouldEqual, 10)
		})

		Convey("Then a non-positive swing uses the default", func() {
			So(rating.ClampMovement(100, 0), ShouldEqual, rating.DefaultMaxSwing)
			So(rating.ClampMovement(-100, -3), ShouldEqual, -rating.DefaultMaxSwing)
		})
	})
}

func TestApplyClampedUpdate(t *testing.T) {
	Convey("Given a delta within the cap", t, func() {
		So(rating.ApplyClampedUpdate(1200, 16, 24), ShouldResemble, rating.ClampedUpdate{Rating: 1216, Delta: 16})
	})

	Convey("Given a delta beyond the cap", t, func() {
		So(rating.ApplyClampedUpdate(1600, -31, 24), ShouldResemble, rating.ClampedUpdate{Rating: 1576, Delta: -24})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given the end-to-end example", t, func() {
		a := model.Contestant{ID: 1, Rating: 1200}
		b := model.Contestant{ID: 2, Rating: 1200}

		res := rating.Resolve(a, b, model.OutcomeA, rating.DefaultMaxSwing)

		Convey("Then final ratings are 1216 and 1184", func() {
			So(res.A, ShouldResemble, model.DuelSide{ID: 1, Rating: 1216, Delta: 16, Matches: 1})
			So(res.B, ShouldResemble, model.DuelSide{ID: 2, Rating: 1184, Delta: -16, Matches: 1})
			So(res.Clamped, ShouldBeFalse)
		})
	})

	Convey("Given an upset beyond the cap", t, func() {
		a := model.Contestant{ID: 1, Rating: 1000}
		b := model.Contestant{ID: 2, Rating: 1600}

		res := rating.Resolve(a, b, model.OutcomeA, 24)

		Convey("Then the clamped delta is authoritative", func() {
			So(res.Raw.RatingA, ShouldEqual, 1031)
			So(res.A.Rating, ShouldEqual, 1024)
			So(res.A.Delta, ShouldEqual, 24)
			So(res.B.Rating, ShouldEqual, 1576)
			So(res.B.Delta, ShouldEqual, -24)
			So(res.Clamped, ShouldBeTrue)
		})
	})
}

func TestConservativeScore(t *testing.T) {
	Convey("Given a rating of 1500", t, func() {
		Convey("Then the score never exceeds the rating", func() {
			for m := 0; m < 2000; m += 7 {
				So(rating.ConservativeScore(1500, m), ShouldBeLessThanOrEqualTo, 1500)
			}
		})

		Convey("Then it approaches the rating as matches grow", func() {
			So(rating.ConservativeScore(1500, 0), ShouldEqual, 1460)
			So(rating.ConservativeScore(1500, 3), ShouldEqual, 1480)
			So(1500-rating.ConservativeScore(1500, 1_000_000), ShouldBeLessThan, 0.05)
		})
	})
}

func TestSortByConservativeScore(t *testing.T) {
	Convey("Given a roster with ties", t, func() {
		roster := []model.Contestant{
			{ID: 1, Rating: 1200, Matches: 0},
			{ID: 2, Rating: 1300, Matches: 3},
			{ID: 3, Rating: 1200, Matches: 0},
			{ID: 4, Rating: 1250, Matches: 24},
		}

		sorted := rating.SortByConservativeScore(roster)

		Convey("Then it orders best first and keeps input order on ties", func() {
			ids := make([]int64, len(sorted))
			for i, c := range sorted {
				ids[i] = c.ID
			}
			So(ids, ShouldResemble, []int64{2, 4, 1, 3})
		})

		Convey("Then the input is left untouched", func() {
			So(roster[0].ID, ShouldEqual, int64(1))
			So(roster[1].ID, ShouldEqual, int64(2))
		})
	})
}
