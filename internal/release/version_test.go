package release

import "testing"

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"7.4.6", "7.4.6", 0},
		{"7.4.10", "7.4.9", 1},
		{"7.4.2", "7.10.0", -1},
		{"20240727", "20231026", 1},
		{"20231026", "20240727", -1},
		{"2.46.0", "2.46", 0},
		{"1.22.5", "1.22", 1},
		{"v1.2.3", "1.2.3", 0},
		{"8.2-22", "8.2-7", 1},
	}

	for _, tc := range cases {
		got := CompareVersions(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareVersionsNeverStringSort(t *testing.T) {
	// "10" must beat "9" even though it sorts lower as a string.
	if CompareVersions("10.0", "9.9") != 1 {
		t.Fatalf("expected 10.0 > 9.9")
	}
}
