package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/casewatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	convey.Convey("Given records of varying quality", t, func() {
		convey.Convey("When the record is complete", func() {
			r := model.Record{Name: "Vietnam", Metric: 10, Fields: map[string]int64{"deaths": 1}}

			convey.Convey("Then it should be valid", func() {
				convey.So(model.Validate(r), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the name is blank", func() {
			err := model.Validate(model.Record{Name: "  ", Metric: 10})

			convey.Convey("Then it should be malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the metric is missing", func() {
			err := model.Validate(model.Record{Name: "A", Metric: model.MissingValue})

			convey.Convey("Then it should be malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a secondary field is invalid", func() {
			err := model.Validate(model.Record{Name: "A", Metric: 1, Fields: map[string]int64{"deaths": model.MissingValue}})

			convey.Convey("Then it should be malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a zero metric is supplied", func() {
			convey.Convey("Then it should still be valid", func() {
				convey.So(model.Validate(model.Record{Name: "A"}), convey.ShouldBeNil)
			})
		})
	})
}

func TestSanitize(t *testing.T) {
	convey.Convey("Given a fetch with malformed and duplicate rows", t, func() {
		in := []model.Record{
			{Name: "A", Metric: 100},
			{Name: "", Metric: 90},
			{Name: "B", Metric: model.MissingValue},
			{Name: "C", Metric: 80},
			{Name: "A", Metric: 5},
		}

		kept, dropped := model.Sanitize(in)

		convey.Convey("Then only valid first occurrences remain, in order", func() {
			convey.So(dropped, convey.ShouldEqual, 3)
			convey.So(len(kept), convey.ShouldEqual, 2)
			convey.So(kept[0].Name, convey.ShouldEqual, "A")
			convey.So(kept[0].Metric, convey.ShouldEqual, int64(100))
			convey.So(kept[1].Name, convey.ShouldEqual, "C")
		})

		convey.Convey("And the input should be untouched", func() {
			convey.So(len(in), convey.ShouldEqual, 5)
			convey.So(in[4].Metric, convey.ShouldEqual, int64(5))
		})
	})

	convey.Convey("Given an empty fetch", t, func() {
		kept, dropped := model.Sanitize(nil)

		convey.Convey("Then nothing is kept or dropped", func() {
			convey.So(kept, convey.ShouldBeEmpty)
			convey.So(dropped, convey.ShouldEqual, 0)
		})
	})
}

func TestRecordField(t *testing.T) {
	r := model.Record{Name: "A", Fields: map[string]int64{"deaths": 3}}
	if got := r.Field("deaths"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := r.Field("recovered"); got != 0 {
		t.Errorf("expected 0 for missing field, got %d", got)
	}
	var s *model.Snapshot
	if s.Len() != 0 {
		t.Errorf("expected nil snapshot length 0")
	}
}
