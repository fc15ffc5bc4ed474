package scorealg

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default(3, -1, 2)
	assert.Equal(t, 4.0, s.Combined)
	assert.Equal(t, 3.0, s.Categories["ATK"])
	assert.Equal(t, -1.0, s.Categories["DEF"])
	assert.Equal(t, 2.0, s.Categories["SLA"])
}

func TestAddUnionsDisjointCategories(t *testing.T) {
	t.Parallel()

	a := Score{Combined: 1, Categories: map[string]float64{"ATK": 1}}
	b := Score{Combined: 2, Categories: map[string]float64{"DEF": 2}}
	sum := a.Add(b)

	assert.Equal(t, 3.0, sum.Combined)
	assert.Equal(t, 1.0, sum.Categories["ATK"])
	assert.Equal(t, 2.0, sum.Categories["DEF"])
}

func TestScoreAlgebraLaws(t *testing.T) {
	Convey("Given two scores with overlapping and disjoint categories", t, func() {
		a := Default(1, 2, 3)
		b := Default(4, -1, 0)

		Convey("Adding them sums combined and every category", func() {
			sum := a.Add(b)
			So(sum.Combined, ShouldEqual, a.Combined+b.Combined)
			So(sum.Categories["ATK"], ShouldEqual, 5.0)
			So(sum.Categories["DEF"], ShouldEqual, 1.0)
			So(sum.Categories["SLA"], ShouldEqual, 3.0)
		})

		Convey("Subtracting a score from its sum with another recovers the other", func() {
			sum := a.Add(b)
			recovered := sum.Sub(a)
			So(recovered.Combined, ShouldAlmostEqual, b.Combined)
			So(recovered.Categories["ATK"], ShouldAlmostEqual, b.Categories["ATK"])
		})

		Convey("Zero is the additive identity", func() {
			sum := a.Add(Zero())
			So(sum.Combined, ShouldEqual, a.Combined)
		})
	})
}
