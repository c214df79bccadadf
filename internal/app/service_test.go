package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/duelwall/internal/adapters/mq/publisher"
	repository "github.com/okian/duelwall/internal/adapters/repository"
	service "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/domain/layout"
	"github.com/okian/duelwall/internal/domain/matchmaking"
	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/roster"
	"github.com/okian/duelwall/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const threeContestants = `name,image_url
Ada,https://img.example/ada.png
Grace,https://img.example/grace.png
Linus,https://img.example/linus.png
broken row
`

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

func newStarted(opts ...service.Option) (*service.Service, context.Context) {
	ctx := context.Background()
	opts = append([]service.Option{
		service.WithWorkerCount(2),
		service.WithMatchmakingSeed(7),
		service.WithStore(repository.NewMemoryStore(repository.WithPrioritySeed(1))),
	}, opts...)
	svc := service.New(opts...)
	So(svc.Start(ctx), ShouldBeNil)
	Reset(func() { _ = svc.Stop(ctx) })
	return svc, ctx
}

func waitForWall(ctx context.Context, svc *service.Service, count int) service.Wall {
	deadline := time.Now().Add(2 * time.Second)
	for {
		w, err := svc.Wall(ctx, service.WallQuery{})
		So(err, ShouldBeNil)
		if w.Count == count || time.Now().After(deadline) {
			return w
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))

		Convey("Operations fail before Start", func() {
			_, err := svc.NextDuel(ctx)
			So(err, ShouldEqual, service.ErrNotStarted)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
		})

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			Reset(func() { _ = svc.Stop(ctx) })

			Convey("Then it reports itself as started", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
				So(stats["worker_count"], ShouldEqual, 2)
				So(stats["contestants"], ShouldEqual, 0)
				So(stats["wall_instances"], ShouldEqual, 0)
			})

			Convey("Then a second Start is rejected", func() {
				So(svc.Start(ctx), ShouldEqual, service.ErrAlreadyStarted)
			})

			Convey("Then Stop marks it stopped and is idempotent", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_SeedRoster(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := newStarted()

		Convey("When a CSV with one bad row is imported", func() {
			report, err := svc.SeedRoster(ctx, threeContestants)

			Convey("Then valid rows are inserted and the bad one reported", func() {
				So(err, ShouldBeNil)
				So(report.Inserted, ShouldEqual, 3)
				So(report.Skipped, ShouldEqual, 1)
				So(report.Warnings, ShouldResemble, []string{`Row 5: expected "name,image_url"`})
				So(report.Contestants[0].Rating, ShouldEqual, model.DefaultRating)
			})

			Convey("Then the wall snapshot catches up", func() {
				w := waitForWall(ctx, svc, 3)
				So(w.Count, ShouldEqual, 3)
				So(w.Mode, ShouldEqual, layout.ModeCurated)
			})
		})

		Convey("When the CSV is empty", func() {
			_, err := svc.SeedRoster(ctx, "\n")
			So(err, ShouldEqual, roster.ErrEmpty)
		})

		Convey("When no row is valid", func() {
			report, err := svc.SeedRoster(ctx, "a\nb\n")
			So(err, ShouldEqual, roster.ErrNoValidRows)
			So(report.Skipped, ShouldEqual, 2)
		})
	})
}

func TestService_Duels(t *testing.T) {
	Convey("Given a service with a roster of three", t, func() {
		svc, ctx := newStarted()
		report, err := svc.SeedRoster(ctx, threeContestants)
		So(err, ShouldBeNil)
		ada, grace, linus := report.Contestants[0], report.Contestants[1], report.Contestants[2]

		Convey("NextDuel returns a ticket with two distinct contestants", func() {
			ticket, err := svc.NextDuel(ctx)
			So(err, ShouldBeNil)
			So(ticket.Ticket, ShouldNotBeEmpty)
			So(ticket.Pair.A.ID, ShouldNotEqual, ticket.Pair.B.ID)
		})

		Convey("Malformed submissions are rejected", func() {
			for _, sub := range []service.DuelSubmission{
				{AID: 0, BID: grace.ID, Outcome: model.OutcomeA},
				{AID: ada.ID, BID: ada.ID, Outcome: model.OutcomeA},
				{AID: ada.ID, BID: grace.ID, Outcome: "draw"},
			} {
				_, err := svc.SubmitDuel(ctx, sub)
				So(errors.Is(err, service.ErrInvalidDuel), ShouldBeTrue)
			}
		})

		Convey("When Ada beats Grace", func() {
			res, err := svc.SubmitDuel(ctx, service.DuelSubmission{
				SubmissionID: "vote-1",
				AID:          ada.ID,
				BID:          grace.ID,
				Outcome:      model.OutcomeA,
			})

			Convey("Then both ratings move by sixteen", func() {
				So(err, ShouldBeNil)
				So(res.Clamped, ShouldBeFalse)
				So(res.Duel.A.Rating, ShouldEqual, 1216)
				So(res.Duel.B.Rating, ShouldEqual, 1184)
				So(res.Duel.A.Delta, ShouldEqual, 16)
				So(res.Duel.B.Delta, ShouldEqual, -16)
				So(*res.Duel.WinnerID, ShouldEqual, ada.ID)
			})

			Convey("Then replaying the submission is a duplicate", func() {
				_, err := svc.SubmitDuel(ctx, service.DuelSubmission{
					SubmissionID: "vote-1",
					AID:          ada.ID,
					BID:          grace.ID,
					Outcome:      model.OutcomeA,
				})
				So(errors.Is(err, service.ErrDuplicateSubmission), ShouldBeTrue)
			})

			Convey("Then the leaderboard orders by conservative score", func() {
				entries, err := svc.Leaderboard(ctx, 3)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].ContestantID, ShouldEqual, ada.ID)
				So(entries[1].ContestantID, ShouldEqual, linus.ID)
				So(entries[2].ContestantID, ShouldEqual, grace.ID)

				entry, err := svc.Rank(ctx, grace.ID)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 3)
			})
		})

		Convey("A small max swing clamps the movement", func() {
			clamped, ctx := newStarted(service.WithMaxSwing(10))
			rep, err := clamped.SeedRoster(ctx, threeContestants)
			So(err, ShouldBeNil)

			res, err := clamped.SubmitDuel(ctx, service.DuelSubmission{
				AID:     rep.Contestants[0].ID,
				BID:     rep.Contestants[1].ID,
				Outcome: model.OutcomeB,
			})
			So(err, ShouldBeNil)
			So(res.Clamped, ShouldBeTrue)
			So(res.Raw.DeltaB, ShouldEqual, 16)
			So(res.Duel.B.Delta, ShouldEqual, 10)
			So(res.Duel.A.Delta, ShouldEqual, -10)
		})

		Convey("An unknown contestant releases the submission id", func() {
			sub := service.DuelSubmission{SubmissionID: "vote-2", AID: ada.ID, BID: 999, Outcome: model.OutcomeTie}
			_, err := svc.SubmitDuel(ctx, sub)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			sub.BID = linus.ID
			res, err := svc.SubmitDuel(ctx, sub)
			So(err, ShouldBeNil)
			So(res.Duel.WinnerID, ShouldBeNil)
		})
	})

	Convey("Given a service with a single contestant", t, func() {
		svc, ctx := newStarted()
		_, err := svc.SeedRoster(ctx, "Solo,https://img.example/solo.png")
		So(err, ShouldBeNil)

		Convey("NextDuel reports an insufficient roster", func() {
			_, err := svc.NextDuel(ctx)
			So(err, ShouldEqual, matchmaking.ErrInsufficientRoster)
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given a service capped at five entries", t, func() {
		svc, ctx := newStarted(service.WithMaxLeaderboardLimit(5))

		Convey("Limits outside 1..5 are rejected", func() {
			for _, n := range []int{0, -1, 6} {
				_, err := svc.Leaderboard(ctx, n)
				So(errors.Is(err, service.ErrInvalidLimit), ShouldBeTrue)
			}
		})

		Convey("An empty roster yields an empty page", func() {
			entries, err := svc.Leaderboard(ctx, 5)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})
}

func TestService_Wall(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc, ctx := newStarted()
		_, err := svc.SeedRoster(ctx, threeContestants)
		So(err, ShouldBeNil)
		def := waitForWall(ctx, svc, 3)

		Convey("A seed override computes a fresh wall", func() {
			seed := uint32(42)
			w, err := svc.Wall(ctx, service.WallQuery{Seed: &seed})
			So(err, ShouldBeNil)
			So(w.Count, ShouldEqual, 3)
			So(w.Seed, ShouldEqual, def.Seed^42)
		})

		Convey("A forced mode is honoured", func() {
			w, err := svc.Wall(ctx, service.WallQuery{Mode: layout.ModeRadial})
			So(err, ShouldBeNil)
			So(w.Mode, ShouldEqual, layout.ModeRadial)
			So(w.Count, ShouldEqual, 3)
		})

		Convey("The default wall is stable between changes", func() {
			again, err := svc.Wall(ctx, service.WallQuery{})
			So(err, ShouldBeNil)
			So(again.Instances, ShouldResemble, def.Instances)
		})
	})
}

func TestService_RosterEdits(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc, ctx := newStarted()
		report, err := svc.SeedRoster(ctx, threeContestants)
		So(err, ShouldBeNil)
		ada := report.Contestants[0]

		Convey("Renaming keeps the image", func() {
			c, err := svc.UpdateContestant(ctx, ada.ID, "Ada L.", "")
			So(err, ShouldBeNil)
			So(c.Name, ShouldEqual, "Ada L.")
			So(c.ImageRef, ShouldEqual, ada.ImageRef)
		})

		Convey("Empty and invalid edits are rejected", func() {
			_, err := svc.UpdateContestant(ctx, ada.ID, " ", "")
			So(errors.Is(err, service.ErrInvalidContestant), ShouldBeTrue)
			_, err = svc.UpdateContestant(ctx, ada.ID, "", "ftp://img.example/x.png")
			So(errors.Is(err, service.ErrInvalidContestant), ShouldBeTrue)
		})

		Convey("Unknown contestants are not found", func() {
			_, err := svc.UpdateContestant(ctx, 999, "Nobody", "")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.DeleteContestant(ctx, 999), repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Deleting removes the contestant from ranks and the wall", func() {
			So(svc.DeleteContestant(ctx, ada.ID), ShouldBeNil)
			_, err := svc.Rank(ctx, ada.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(waitForWall(ctx, svc, 2).Count, ShouldEqual, 2)
		})
	})
}

func TestService_Handle(t *testing.T) {
	Convey("Given a started service with a recording publisher", t, func() {
		pub := &recordingPublisher{}
		svc, ctx := newStarted(service.WithPublisher(pub))

		Convey("A duel event publishes the duel and the refreshed wall", func() {
			err := svc.Handle(ctx, model.RosterEvent{
				EventID: "e-1",
				Kind:    model.EventDuelRecorded,
				Duel:    &model.DuelRecord{ID: 12},
			})
			So(err, ShouldBeNil)
			So(pub.Subjects(), ShouldResemble, []string{
				publisher.SubjectDuelRecorded(12),
				publisher.SubjectWallRefreshed,
			})
		})

		Convey("A roster event publishes a roster change", func() {
			err := svc.Handle(ctx, model.RosterEvent{EventID: "e-2", Kind: model.EventRosterChanged, Reason: "seed"})
			So(err, ShouldBeNil)
			So(pub.Subjects(), ShouldResemble, []string{
				publisher.SubjectRosterChanged,
				publisher.SubjectWallRefreshed,
			})
		})

		Convey("An unknown event kind is an error", func() {
			So(svc.Handle(ctx, model.RosterEvent{Kind: "bogus"}), ShouldNotBeNil)
			So(pub.Subjects(), ShouldBeEmpty)
		})
	})
}
