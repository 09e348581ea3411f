package sentiment

import "testing"

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		value int
		want  string
	}{
		{0, "Extreme Fear"},
		{20, "Extreme Fear"},
		{21, "Fear"},
		{40, "Fear"},
		{50, "Neutral"},
		{60, "Neutral"},
		{61, "Greed"},
		{80, "Greed"},
		{81, "Extreme Greed"},
		{100, "Extreme Greed"},
	}
	for _, tc := range cases {
		if got := Classify(tc.value); got != tc.want {
			t.Errorf("Classify(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestScoreIsNeutral(t *testing.T) {
	s := &Service{}
	if got := s.Score("bitcoin to the moon"); got != 0 {
		t.Fatalf("score = %v, want neutral 0", got)
	}
}
