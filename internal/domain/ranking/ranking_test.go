package ranking_test

import (
	"testing"

	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(name string, metric int64) model.Record {
	return model.Record{Name: name, Metric: metric}
}

func names(rs []model.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestRank(t *testing.T) {
	Convey("Given selector output", t, func() {
		in := []model.Record{rec("C", 80), rec("A", 100), rec("X", 80), rec("B", 90), rec("Y", 80)}

		Convey("When ranking", func() {
			out := ranking.Rank(in)

			Convey("Then metrics should be non-increasing", func() {
				for i := 1; i < len(out); i++ {
					So(out[i-1].Metric, ShouldBeGreaterThanOrEqualTo, out[i].Metric)
				}
			})

			Convey("And ties should keep their input order", func() {
				So(names(out), ShouldResemble, []string{"A", "B", "C", "X", "Y"})
			})

			Convey("And the input should be untouched", func() {
				So(names(in), ShouldResemble, []string{"C", "A", "X", "B", "Y"})
			})
		})

		Convey("When ranking nothing", func() {
			out := ranking.Rank(nil)

			Convey("Then it should return an empty slice", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestPin(t *testing.T) {
	Convey("Given raw records A=100, B=90, C=80, D=70 and ranked top-2", t, func() {
		raw := []model.Record{rec("A", 100), rec("B", 90), rec("C", 80), rec("D", 70)}
		ranked := []model.Record{rec("A", 100), rec("B", 90)}

		Convey("When pinning an entity outside the top-2", func() {
			out := ranking.Pin(ranked, raw, "D")

			Convey("Then it should be prepended without evicting anyone", func() {
				So(names(out), ShouldResemble, []string{"D", "A", "B"})
				So(out[0].Metric, ShouldEqual, int64(70))
			})
		})

		Convey("When pinning an entity already in the top-2", func() {
			out := ranking.Pin(ranked, raw, "A")

			Convey("Then the length should not change", func() {
				So(names(out), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When pinning the second-ranked entity", func() {
			out := ranking.Pin(ranked, raw, "B")

			Convey("Then it should move to the front", func() {
				So(names(out), ShouldResemble, []string{"B", "A"})
			})
		})

		Convey("When the pinned key is not in the raw set", func() {
			out := ranking.Pin(ranked, raw, "Z")

			Convey("Then the ranked sequence should be returned unchanged", func() {
				So(names(out), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When no key is configured", func() {
			out := ranking.Pin(ranked, raw, "")

			Convey("Then nothing should be pinned", func() {
				So(names(out), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When the key differs only in case", func() {
			out := ranking.Pin(ranked, raw, "d")

			Convey("Then it should not match", func() {
				So(len(out), ShouldEqual, 2)
			})
		})

		Convey("When pinning", func() {
			_ = ranking.Pin(ranked, raw, "B")

			Convey("Then the ranked input should not be modified", func() {
				So(names(ranked), ShouldResemble, []string{"A", "B"})
			})
		})
	})
}
