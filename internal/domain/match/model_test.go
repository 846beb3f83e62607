package match

import "testing"

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"uppercases and trims", "  live ", StatusLive},
		{"empty defaults to scheduled", "", StatusScheduled},
		{"whitespace defaults to scheduled", "   ", StatusScheduled},
		{"unknown passes through", "Half-Time", "HALF-TIME"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeStatus(tc.in); got != tc.want {
				t.Fatalf("NormalizeStatus(%q)=%q want=%q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	t.Parallel()

	t.Run("live statuses", func(t *testing.T) {
		for _, s := range []string{"LIVE", "in_play", "In_Progress"} {
			if !IsLiveStatus(s) {
				t.Fatalf("expected %q to be live", s)
			}
		}
		if IsLiveStatus("FINISHED") {
			t.Fatalf("finished must not be live")
		}
	})

	t.Run("terminal statuses", func(t *testing.T) {
		for _, s := range []string{"finished", "COMPLETED", "ended", "RETIRED", "walkover"} {
			if !IsFinishedStatus(s) {
				t.Fatalf("expected %q to be terminal", s)
			}
		}
		if IsFinishedStatus("LIVE") {
			t.Fatalf("live must not be terminal")
		}
	})

	t.Run("cancelled-like statuses", func(t *testing.T) {
		for _, s := range []string{"cancelled", "POSTPONED", "abandoned"} {
			if !IsCancelledLikeStatus(s) {
				t.Fatalf("expected %q to be cancelled-like", s)
			}
		}
		if IsCancelledLikeStatus("SCHEDULED") {
			t.Fatalf("scheduled must not be cancelled-like")
		}
	})
}
