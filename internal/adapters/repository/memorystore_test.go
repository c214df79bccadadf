package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/okian/duelwall/internal/adapters/repository"
	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func resolver(a, b model.Contestant, o model.DuelOutcome) rating.Result {
	return rating.Resolve(a, b, o, rating.DefaultMaxSwing)
}

func seed(ctx context.Context, s repository.Store, n int) []model.Contestant {
	entries := make([]model.NewContestant, n)
	for i := range entries {
		entries[i] = model.NewContestant{Name: fmt.Sprintf("c%d", i+1), ImageRef: fmt.Sprintf("https://img.example/%d.png", i+1)}
	}
	out, err := s.Insert(ctx, entries)
	So(err, ShouldBeNil)
	return out
}

func TestMemoryStoreRoster(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	Convey("Given a memory store", t, func() {
		s := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixed }), repository.WithPrioritySeed(1))
		inserted := seed(ctx, s, 3)

		Convey("Then new contestants start at the default rating", func() {
			So(inserted, ShouldHaveLength, 3)
			for i, c := range inserted {
				So(c.ID, ShouldEqual, int64(i+1))
				So(c.Rating, ShouldEqual, model.DefaultRating)
				So(c.Matches, ShouldEqual, 0)
				So(c.CreatedAt, ShouldEqual, fixed)
			}
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("Then List returns contestants by id", func() {
			list, err := s.List(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldResemble, inserted)
		})

		Convey("When an entry has no image", func() {
			_, err := s.Insert(ctx, []model.NewContestant{{Name: "x"}})

			Convey("Then nothing is inserted", func() {
				So(err, ShouldEqual, repository.ErrEmptyField)
				n, _ := s.Count(ctx)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When a contestant is renamed", func() {
			c, err := s.Update(ctx, 2, "  renamed ", "")

			Convey("Then only the given field changes", func() {
				So(err, ShouldBeNil)
				So(c.Name, ShouldEqual, "renamed")
				So(c.ImageRef, ShouldEqual, inserted[1].ImageRef)
				got, _ := s.Get(ctx, 2)
				So(got, ShouldResemble, c)
			})
		})

		Convey("When unknown ids are used", func() {
			_, getErr := s.Get(ctx, 99)
			_, updErr := s.Update(ctx, 99, "x", "")
			delErr := s.Delete(ctx, 99)
			_, rankErr := s.Rank(ctx, 99)

			Convey("Then every call reports not found", func() {
				So(getErr, ShouldEqual, repository.ErrNotFound)
				So(updErr, ShouldEqual, repository.ErrNotFound)
				So(delErr, ShouldEqual, repository.ErrNotFound)
				So(rankErr, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When a contestant with history is deleted", func() {
			_, err := s.RecordDuel(ctx, repository.DuelCommand{SubmissionID: "s1", AID: 1, BID: 2, Outcome: model.OutcomeA}, resolver)
			So(err, ShouldBeNil)
			So(s.Delete(ctx, 2), ShouldBeNil)

			Convey("Then its duels go with it", func() {
				So(s.Duels(), ShouldBeEmpty)
				_, err := s.Get(ctx, 2)
				So(err, ShouldEqual, repository.ErrNotFound)
				top, _ := s.TopN(ctx, 10)
				So(top, ShouldHaveLength, 2)
			})
		})
	})
}

func TestMemoryStoreRecordDuel(t *testing.T) {
	ctx := context.Background()

	Convey("Given two fresh contestants", t, func() {
		s := repository.NewMemoryStore(repository.WithPrioritySeed(2))
		seed(ctx, s, 2)

		Convey("When A wins", func() {
			rec, err := s.RecordDuel(ctx, repository.DuelCommand{SubmissionID: "s1", AID: 1, BID: 2, Outcome: model.OutcomeA}, resolver)

			Convey("Then both sides are persisted with the clamped update", func() {
				So(err, ShouldBeNil)
				So(rec.ID, ShouldEqual, int64(1))
				So(*rec.WinnerID, ShouldEqual, int64(1))
				So(rec.A, ShouldResemble, model.DuelSide{ID: 1, Rating: 1216, Delta: 16, Matches: 1})
				So(rec.B, ShouldResemble, model.DuelSide{ID: 2, Rating: 1184, Delta: -16, Matches: 1})

				a, _ := s.Get(ctx, 1)
				b, _ := s.Get(ctx, 2)
				So(a.Rating, ShouldEqual, 1216)
				So(b.Rating, ShouldEqual, 1184)
				So(a.Matches, ShouldEqual, 1)
			})

			Convey("Then the leaderboard reorders", func() {
				top, err := s.TopN(ctx, 2)
				So(err, ShouldBeNil)
				So(top[0].ContestantID, ShouldEqual, int64(1))
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].ContestantID, ShouldEqual, int64(2))
			})

			Convey("Then replaying the submission is rejected", func() {
				_, err := s.RecordDuel(ctx, repository.DuelCommand{SubmissionID: "s1", AID: 1, BID: 2, Outcome: model.OutcomeB}, resolver)
				So(err, ShouldEqual, repository.ErrDuplicateSubmission)
				So(s.Duels(), ShouldHaveLength, 1)
			})
		})

		Convey("When the duel is a tie", func() {
			rec, err := s.RecordDuel(ctx, repository.DuelCommand{AID: 2, BID: 1, Outcome: model.OutcomeTie}, resolver)

			Convey("Then there is no winner and matches still grow", func() {
				So(err, ShouldBeNil)
				So(rec.WinnerID, ShouldBeNil)
				So(rec.A.Delta, ShouldEqual, 0)
				So(rec.A.Matches, ShouldEqual, 1)
			})
		})

		Convey("When a side is missing or repeated", func() {
			_, missing := s.RecordDuel(ctx, repository.DuelCommand{AID: 1, BID: 9, Outcome: model.OutcomeA}, resolver)
			_, same := s.RecordDuel(ctx, repository.DuelCommand{AID: 1, BID: 1, Outcome: model.OutcomeA}, resolver)

			Convey("Then nothing is written", func() {
				So(missing, ShouldEqual, repository.ErrNotFound)
				So(same, ShouldEqual, repository.ErrSameSide)
				So(s.Duels(), ShouldBeEmpty)
			})
		})
	})
}

func TestMemoryStoreRanking(t *testing.T) {
	ctx := context.Background()

	Convey("Given a roster after many random duels", t, func() {
		s := repository.NewMemoryStore(repository.WithPrioritySeed(3))
		seed(ctx, s, 40)
		r := rand.New(rand.NewSource(9))
		outcomes := []model.DuelOutcome{model.OutcomeA, model.OutcomeB, model.OutcomeTie}
		for i := 0; i < 400; i++ {
			a := int64(r.Intn(40) + 1)
			b := int64(r.Intn(40) + 1)
			if a == b {
				continue
			}
			_, err := s.RecordDuel(ctx, repository.DuelCommand{AID: a, BID: b, Outcome: outcomes[r.Intn(3)]}, resolver)
			So(err, ShouldBeNil)
		}

		Convey("Then TopN matches a full sort by conservative score then id", func() {
			list, _ := s.List(ctx)
			want := slices.Clone(list)
			slices.SortStableFunc(want, func(a, b model.Contestant) int {
				sa, sb := rating.ContestantScore(a), rating.ContestantScore(b)
				switch {
				case sa > sb:
					return -1
				case sa < sb:
					return 1
				}
				return int(a.ID - b.ID)
			})

			top, err := s.TopN(ctx, 100)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 40)
			for i, e := range top {
				So(e.ContestantID, ShouldEqual, want[i].ID)
				So(e.Rank, ShouldEqual, i+1)

				ranked, err := s.Rank(ctx, e.ContestantID)
				So(err, ShouldBeNil)
				So(ranked, ShouldResemble, e)
			}
		})

		Convey("Then a non-positive limit is rejected", func() {
			_, err := s.TopN(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})
}
