package search

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	name   string
	dept   string
	cgpa   *float64
	joined time.Time
	skills []string
}

func (r row) Value(field string) (any, bool) {
	switch field {
	case "name":
		return r.name, true
	case "department":
		return r.dept, true
	case "cgpa":
		if r.cgpa == nil {
			return nil, false
		}
		return *r.cgpa, true
	case "joined":
		return r.joined, !r.joined.IsZero()
	case "skills":
		return r.skills, true
	}
	return nil, false
}

func (r row) SearchText() []string {
	return append([]string{r.name, r.dept}, r.skills...)
}

func f(v float64) *float64 { return &v }

func fixture() []row {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []row{
		{name: "Asha", dept: "CSE", cgpa: f(8.9), joined: day, skills: []string{"Go", "SQL"}},
		{name: "Bilal", dept: "ECE", cgpa: f(7.1), joined: day.AddDate(0, 1, 0), skills: []string{"Verilog"}},
		{name: "chen", dept: "CSE", cgpa: nil, joined: day.AddDate(0, 2, 0), skills: []string{"Python"}},
		{name: "Dana", dept: "ME", cgpa: f(6.4), skills: nil},
	}
}

func TestFilter_ZeroCriteriaReturnsEverything(t *testing.T) {
	items := fixture()
	out := Filter(items, Criteria{})
	assert.Equal(t, items, out)

	out = Filter(items, Criteria{Equals: map[string]string{"department": "all", "name": ""}})
	assert.Equal(t, items, out)
}

func TestFilter_EmptyInput(t *testing.T) {
	out := Filter[row](nil, Criteria{Query: "x"})
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFilter_IsSubsetInOrder(t *testing.T) {
	items := fixture()
	cases := []Criteria{
		{Query: "c"},
		{Equals: map[string]string{"department": "cse"}},
		{Ranges: []NumberRange{{Field: "cgpa", Min: f(7)}}},
		{Query: "go", Equals: map[string]string{"department": "CSE"}},
	}
	for _, c := range cases {
		out := Filter(items, c)
		assert.LessOrEqual(t, len(out), len(items))

		// every result appears in the input, in the same relative order
		pos := -1
		for _, o := range out {
			found := false
			for i := pos + 1; i < len(items); i++ {
				if items[i].name == o.name {
					pos = i
					found = true
					break
				}
			}
			assert.True(t, found, "%s out of order or missing", o.name)
		}
	}
}

func TestFilter_QueryIsCaseInsensitive(t *testing.T) {
	out := Filter(fixture(), Criteria{Query: "PYTHON"})
	require.Len(t, out, 1)
	assert.Equal(t, "chen", out[0].name)
}

func TestFilter_EqualsMatchesSliceElements(t *testing.T) {
	out := Filter(fixture(), Criteria{Equals: map[string]string{"skills": "sql"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Asha", out[0].name)
}

func TestFilter_RangesExcludeMissingValues(t *testing.T) {
	out := Filter(fixture(), Criteria{Ranges: []NumberRange{{Field: "cgpa", Min: f(6), Max: f(8)}}})
	names := []string{}
	for _, o := range out {
		names = append(names, o.name)
	}
	assert.Equal(t, []string{"Bilal", "Dana"}, names)
}

func TestFilter_DateRange(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	out := Filter(fixture(), Criteria{Dates: []DateRange{{Field: "joined", From: &from}}})
	require.Len(t, out, 2)
	assert.Equal(t, "Bilal", out[0].name)
	assert.Equal(t, "chen", out[1].name)
}

func TestSort_IsPermutationAndOrdered(t *testing.T) {
	items := fixture()
	out := Sort(items, "name", Asc)
	require.Len(t, out, len(items))
	assert.ElementsMatch(t, items, out)
	assert.Equal(t, []string{"Asha", "Bilal", "chen", "Dana"}, names(out))

	// input untouched
	assert.Equal(t, "Asha", items[0].name)
	assert.Equal(t, "Dana", items[3].name)
}

func TestSort_MissingValuesLastInBothDirections(t *testing.T) {
	asc := Sort(fixture(), "cgpa", Asc)
	assert.Equal(t, []string{"Dana", "Bilal", "Asha", "chen"}, names(asc))

	desc := Sort(fixture(), "cgpa", Desc)
	assert.Equal(t, []string{"Asha", "Bilal", "Dana", "chen"}, names(desc))
}

func TestSort_Stable(t *testing.T) {
	out := Sort(fixture(), "department", Asc)
	assert.Equal(t, []string{"Asha", "chen", "Bilal", "Dana"}, names(out))
}

func TestSort_EmptyKey(t *testing.T) {
	items := fixture()
	assert.Equal(t, items, Sort(items, "", Desc))
	assert.NotNil(t, Sort[row](nil, "name", Asc))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection("sideways"))
}

func TestPaginate_Length(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	for size := 1; size <= 30; size++ {
		for page := 1; page <= 30; page++ {
			want := len(items) - (page-1)*size
			if want < 0 {
				want = 0
			}
			if want > size {
				want = size
			}
			got := Paginate(items, page, size)
			require.Len(t, got, want, "page=%d size=%d", page, size)
			if want > 0 {
				assert.Equal(t, (page-1)*size, got[0])
			}
		}
	}
}

func TestPaginate_EdgeCases(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Empty(t, Paginate(items, 1, 0))
	assert.Empty(t, Paginate(items, 1, -5))
	assert.Equal(t, []int{1, 2}, Paginate(items, 0, 2))
	assert.Empty(t, Paginate([]int{}, 1, 10))
	assert.Empty(t, Paginate(items, math.MaxInt, 10))
	assert.Empty(t, Paginate(items, math.MaxInt/2, 3))
	assert.Equal(t, []int{3}, Paginate(items, 2, 2))
	assert.Equal(t, items, Paginate(items, 1, math.MaxInt))
}

func TestRun_HugePageIsEmpty(t *testing.T) {
	var p Page[row]
	require.NotPanics(t, func() {
		p = Run(fixture(), Options{Page: math.MaxInt, Size: 10})
	})
	assert.Empty(t, p.Items)
	assert.Equal(t, math.MaxInt, p.Page)
	assert.Equal(t, len(fixture()), p.Total)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
}

func TestRun(t *testing.T) {
	p := Run(fixture(), Options{
		Criteria:  Criteria{Equals: map[string]string{"department": "CSE"}},
		SortBy:    "name",
		Direction: Desc,
		Page:      1,
		Size:      1,
	})
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 2, p.TotalPages)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "chen", p.Items[0].name)

	p = Run(fixture(), Options{Size: 1000})
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 1, p.Page)
}

func names(rs []row) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.name
	}
	return out
}

// noted hands out its optional note as a raw pointer.
type noted struct {
	id   int
	note *string
}

func (n noted) Value(field string) (any, bool) {
	if field == "note" {
		return n.note, n.note != nil
	}
	return nil, false
}

func (n noted) SearchText() []string { return nil }

func TestStringPointersCompareByText(t *testing.T) {
	s := func(v string) *string { return &v }
	items := []noted{{1, s("zeta")}, {2, nil}, {3, s("Alpha")}, {4, s("mid")}}

	ids := func(ns []noted) []int {
		out := []int{}
		for _, n := range ns {
			out = append(out, n.id)
		}
		return out
	}
	assert.Equal(t, []int{3, 4, 1, 2}, ids(Sort(items, "note", Asc)))
	assert.Equal(t, []int{1, 4, 3, 2}, ids(Sort(items, "note", Desc)))
	assert.Equal(t, []int{3}, ids(Filter(items, Criteria{Equals: map[string]string{"note": "alpha"}})))
}
