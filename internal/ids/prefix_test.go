package ids

import (
	"errors"
	"testing"
)

func TestUniquePrefixLengths(t *testing.T) {
	ids := []string{"2u3iutfd", "2a9k1111", "abc12345"}
	lengths := UniquePrefixLengths(ids)

	if got := lengths["2u3iutfd"]; got != 2 {
		t.Fatalf("expected 2u3iutfd prefix length 2, got %d", got)
	}
	if got := lengths["2a9k1111"]; got != 2 {
		t.Fatalf("expected 2a9k1111 prefix length 2, got %d", got)
	}
	if got := lengths["abc12345"]; got != 1 {
		t.Fatalf("expected abc12345 prefix length 1, got %d", got)
	}
}

func TestUniquePrefixLengthsIsCaseInsensitive(t *testing.T) {
	ids := []string{"Abc", "aBD"}
	lengths := UniquePrefixLengths(ids)

	if got := lengths["abc"]; got != 3 {
		t.Fatalf("expected abc prefix length 3, got %d", got)
	}
	if got := lengths["abd"]; got != 3 {
		t.Fatalf("expected abd prefix length 3, got %d", got)
	}
}

func TestUniquePrefixLengthsSkipsDuplicatesAndEmpty(t *testing.T) {
	ids := []string{"abc", "", "ABC"}
	lengths := UniquePrefixLengths(ids)

	if len(lengths) != 1 {
		t.Fatalf("expected 1 unique ID, got %d", len(lengths))
	}
	if got := lengths["abc"]; got != 1 {
		t.Fatalf("expected abc prefix length 1, got %d", got)
	}
}

func TestMatchPrefix(t *testing.T) {
	ids := []string{"3f2a-one", "3f9c-two", "b71e-three", "b71"}

	cases := []struct {
		name    string
		prefix  string
		want    string
		wantErr error
	}{
		{name: "unique prefix", prefix: "3f2", want: "3f2a-one"},
		{name: "case insensitive", prefix: "3F9", want: "3f9c-two"},
		{name: "exact match beats longer id", prefix: "b71", want: "b71"},
		{name: "full id", prefix: "b71e-three", want: "b71e-three"},
		{name: "ambiguous", prefix: "3f", wantErr: ErrAmbiguousPrefix},
		{name: "missing", prefix: "zz", wantErr: ErrNoMatch},
		{name: "empty", prefix: "  ", wantErr: ErrNoMatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MatchPrefix(ids, tc.prefix)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
