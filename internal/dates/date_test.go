package dates

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDate_AddDays(t *testing.T) {
	t.Run("crosses month end", func(t *testing.T) {
		is := is.New(t)
		is.Equal(New(2024, time.January, 31).AddDays(1), New(2024, time.February, 1))
	})
	t.Run("leap day", func(t *testing.T) {
		is := is.New(t)
		is.Equal(New(2024, time.February, 28).AddDays(1).String(), "2024-02-29")
	})
	t.Run("backwards", func(t *testing.T) {
		is := is.New(t)
		is.Equal(New(2025, time.January, 1).AddDays(-1).String(), "2024-12-31")
	})
	t.Run("large interval", func(t *testing.T) {
		is := is.New(t)
		is.Equal(New(2025, time.January, 1).AddDays(180).String(), "2025-06-30")
	})
}

func TestDate_Compare(t *testing.T) {
	is := is.New(t)
	a := New(2024, time.March, 9)
	b := New(2024, time.March, 10)
	is.True(a.Before(b))
	is.True(b.After(a))
	is.Equal(a.Compare(a), 0)
	is.True(!a.Before(a))
}

func TestDate_CompareMatchesLexicalOrder(t *testing.T) {
	is := is.New(t)
	days := []Date{
		New(2025, time.October, 2),
		New(2024, time.December, 31),
		New(2025, time.February, 10),
		New(2025, time.January, 9),
	}
	byCompare := append([]Date(nil), days...)
	sort.Slice(byCompare, func(i, j int) bool { return byCompare[i].Before(byCompare[j]) })
	byString := append([]Date(nil), days...)
	sort.Slice(byString, func(i, j int) bool { return byString[i].String() < byString[j].String() })
	is.Equal(byCompare, byString)
}

func TestDate_DaysUntil(t *testing.T) {
	is := is.New(t)
	is.Equal(New(2024, time.March, 1).DaysUntil(New(2024, time.March, 31)), 30)
	is.Equal(New(2024, time.March, 31).DaysUntil(New(2024, time.March, 1)), -30)
}

func TestDate_JSON(t *testing.T) {
	is := is.New(t)
	type record struct {
		Day  Date  `json:"day"`
		Next *Date `json:"next,omitempty"`
	}

	data, err := json.Marshal(record{Day: New(2024, time.May, 4)})
	is.NoErr(err)
	is.Equal(string(data), `{"day":"2024-05-04"}`)

	var decoded record
	is.NoErr(json.Unmarshal([]byte(`{"day":"2023-11-30","next":"2023-12-01"}`), &decoded))
	is.Equal(decoded.Day, New(2023, time.November, 30))
	is.Equal(*decoded.Next, New(2023, time.December, 1))

	is.True(json.Unmarshal([]byte(`{"day":"30/11/2023"}`), &decoded) != nil)
}

func TestParseInput(t *testing.T) {
	now := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.Local)
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "today", want: "2024-06-15"},
		{input: "Tomorrow", want: "2024-06-16"},
		{input: "yesterday", want: "2024-06-14"},
		{input: "+3", want: "2024-06-18"},
		{input: "+3d", want: "2024-06-18"},
		{input: "+2w", want: "2024-06-29"},
		{input: "-1", want: "2024-06-14"},
		{input: "2024-01-02", want: "2024-01-02"},
		{input: "", wantErr: true},
		{input: "+", wantErr: true},
		{input: "+2y", wantErr: true},
		{input: "next tuesday", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseInput(tc.input, now)
			if tc.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(got.String(), tc.want)
		})
	}
}
