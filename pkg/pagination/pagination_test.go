package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{25, 25},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParamsNormalize(t *testing.T) {
	params := Params{Limit: -1, Offset: -10}.Normalize()
	if params.Limit != DefaultLimit || params.Offset != 0 {
		t.Fatalf("unexpected normalization: %+v", params)
	}
}
