package daynav

import (
	"reflect"
	"testing"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

func metaWith(key, value string) common.Meta {
	m := common.NewMeta()
	m.Append(key, value)
	return m
}

func TestParseDayGIDs(t *testing.T) {
	tests := []struct {
		name string
		meta common.Meta
		want []string
	}{
		{"comma separated", metaWith("日程表", "100, 200, 300"), []string{"100", "200", "300"}},
		{"mixed delimiters", metaWith("日程表", "100，200、300;400\n500"), []string{"100", "200", "300", "400", "500"}},
		{"non numeric dropped", metaWith("日程表", "100 abc 200 d3f"), []string{"100", "200"}},
		{"english alias", metaWith("days", "7 8"), []string{"7", "8"}},
		{"行程表 alias", metaWith("行程表", "42"), []string{"42"}},
		{"absent", common.NewMeta(), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDayGIDs(tc.meta)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseDayGIDs = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCurrentIndex(t *testing.T) {
	gids := []string{"10", "20", "30"}
	if got := CurrentIndex(gids, "20"); got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
	if got := CurrentIndex(gids, "999"); got != 0 {
		t.Errorf("CurrentIndex(absent) = %d, want 0", got)
	}
}

func TestNavigate_Clamps(t *testing.T) {
	gids := []string{"10", "20", "30"}

	// Idempotence: navigating by 0 from the current position stays put.
	if got := Navigate(gids, CurrentIndex(gids, gids[0]), 0); got != gids[0] {
		t.Errorf("Navigate(0) = %q, want %q", got, gids[0])
	}
	// No underflow.
	if got := Navigate(gids, 0, -1); got != gids[0] {
		t.Errorf("Navigate(-1 from 0) = %q, want %q", got, gids[0])
	}
	// No overflow.
	if got := Navigate(gids, 2, 5); got != gids[2] {
		t.Errorf("Navigate(+5 from 2) = %q, want %q", got, gids[2])
	}
	if got := Navigate(nil, 0, 1); got != "" {
		t.Errorf("Navigate(empty) = %q, want empty", got)
	}
}

func TestDerive(t *testing.T) {
	s := Derive(metaWith("日程表", "10 20 30"), "30")
	if s.Index != 2 {
		t.Errorf("index = %d, want 2", s.Index)
	}
	if !reflect.DeepEqual(s.GIDs, []string{"10", "20", "30"}) {
		t.Errorf("gids = %v", s.GIDs)
	}
}
