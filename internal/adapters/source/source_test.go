package source

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/casewatch/internal/domain/model"
)

func TestStaticSource(t *testing.T) {
	Convey("Given a static source", t, func() {
		src := NewStaticSource([]model.Record{{Name: "A", Metric: 1}})

		Convey("Fetch returns a copy of the records", func() {
			got, err := src.Fetch(context.Background())
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			got[0].Name = "changed"

			again, _ := src.Fetch(context.Background())
			So(again[0].Name, ShouldEqual, "A")
		})

		Convey("Fail turns fetches into fetch errors until Set", func() {
			boom := errors.New("boom")
			src.Fail(boom)
			_, err := src.Fetch(context.Background())
			So(errors.Is(err, ErrFetch), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)

			src.Set([]model.Record{{Name: "B", Metric: 2}})
			got, err := src.Fetch(context.Background())
			So(err, ShouldBeNil)
			So(got[0].Name, ShouldEqual, "B")
		})

		Convey("A cancelled context fails the fetch", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := src.Fetch(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("FuncSource calls through", t, func() {
		calls := 0
		src := FuncSource(func(ctx context.Context) ([]model.Record, error) {
			calls++
			return nil, nil
		})
		_, err := src.Fetch(context.Background())
		So(err, ShouldBeNil)
		So(calls, ShouldEqual, 1)
	})
}
