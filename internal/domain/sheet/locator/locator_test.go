package locator

import (
	"reflect"
	"testing"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

func TestExtractMeta_Contiguity(t *testing.T) {
	rows := []common.Row{
		{"模式", "行程"},
		{"備註", "x"},
		{"時刻表", "地點"},
		{"09:00", "A"},
	}

	meta, cursor := ExtractMeta(rows)
	if cursor != 2 {
		t.Errorf("cursor = %d, want 2", cursor)
	}
	if got := meta.Get("模式"); got != "行程" {
		t.Errorf("meta[模式] = %q, want 行程", got)
	}
	if got := meta.Get("備註"); got != "x" {
		t.Errorf("meta[備註] = %q, want x", got)
	}
}

func TestExtractMeta_StopsAtFirstNonMetaRow(t *testing.T) {
	rows := []common.Row{
		{"名稱", "類型"},
		{"模式", "行程"}, // looks meta-like but is below a data row
	}

	meta, cursor := ExtractMeta(rows)
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
	if len(meta.Values) != 0 {
		t.Errorf("meta = %v, want empty", meta.Values)
	}
}

func TestExtractMeta_RepeatedKeyAppends(t *testing.T) {
	rows := []common.Row{
		{"備註", "first"},
		{"備註", "second", "third"},
	}

	meta, cursor := ExtractMeta(rows)
	if cursor != 2 {
		t.Errorf("cursor = %d, want 2", cursor)
	}
	want := "first\nsecond\nthird"
	if got := meta.Get("備註"); got != want {
		t.Errorf("meta[備註] = %q, want %q", got, want)
	}
}

func TestExtractMeta_RetainsRawAgendaCells(t *testing.T) {
	rows := []common.Row{
		{"相關議程", "123", "", "https://example.com/a"},
	}

	meta, _ := ExtractMeta(rows)
	want := common.Row{"123", "", "https://example.com/a"}
	if got := meta.RawRows["相關議程"]; !reflect.DeepEqual(got, want) {
		t.Errorf("RawRows[相關議程] = %v, want %v", got, want)
	}
	// The joined value still filters empties.
	if got := meta.Get("相關議程"); got != "123\nhttps://example.com/a" {
		t.Errorf("meta[相關議程] = %q", got)
	}
}

func TestLookupMeta_CaseFoldedDuplicatesUseSheetOrder(t *testing.T) {
	rows := []common.Row{
		{"Mode", "行程"},
		{"MODE", "採購清單"},
		{"Related Agenda", "111"},
		{"相關議程", "222"},
	}

	meta, cursor := ExtractMeta(rows)
	if cursor != 4 {
		t.Fatalf("cursor = %d, want 4", cursor)
	}

	// Two stored keys fold to the same alias; the one seen first wins,
	// on every run.
	for i := 0; i < 50; i++ {
		if got := LookupMeta(meta, KeyMode); got != "行程" {
			t.Fatalf("LookupMeta(mode) = %q, want 行程", got)
		}
	}

	// Alias preference still outranks sheet order across distinct aliases.
	want := common.Row{"222", "111"}
	for i := 0; i < 50; i++ {
		if got := AgendaCells(meta); !reflect.DeepEqual(got, want) {
			t.Fatalf("AgendaCells = %v, want %v", got, want)
		}
	}
}

func TestAgendaCells_MasterBeforeRelated(t *testing.T) {
	rows := []common.Row{
		{"相關議程", "456"},
		{"總議程", "123", "789"},
	}

	meta, _ := ExtractMeta(rows)
	want := common.Row{"123", "789", "456"}
	if got := AgendaCells(meta); !reflect.DeepEqual(got, want) {
		t.Errorf("AgendaCells = %v, want %v", got, want)
	}

	if got := AgendaCells(common.NewMeta()); got != nil {
		t.Errorf("AgendaCells(empty) = %v, want nil", got)
	}
}

func TestLookupMeta_AliasAndCase(t *testing.T) {
	meta := common.NewMeta()
	meta.Append("Mode", "採購清單")

	if got := LookupMeta(meta, KeyMode); got != "採購清單" {
		t.Errorf("LookupMeta(mode) = %q, want 採購清單", got)
	}
	if got := LookupMeta(meta, KeyTitle); got != "" {
		t.Errorf("LookupMeta(title) = %q, want empty", got)
	}
}

func TestLocateHeader_ScheduleMode(t *testing.T) {
	rows := []common.Row{
		{"模式", "行程"},
		{"備註", "x"},
		{"時刻表", "地點"},
		{"09:00", "A"},
	}

	if got := LocateHeader(rows, 2, "行程"); got != 2 {
		t.Errorf("LocateHeader = %d, want 2", got)
	}
	// English alias works too.
	if got := LocateHeader(rows, 2, "Schedule"); got != 2 {
		t.Errorf("LocateHeader = %d, want 2", got)
	}
}

func TestLocateHeader_ScheduleModeFallsBackToHeuristic(t *testing.T) {
	rows := []common.Row{
		{"x", "1", "2"},
		{"名稱", "類型", "備註"},
		{"地點A", "餐廳", "好吃"},
	}

	// No 時刻表 cell anywhere: heuristic from index 0 picks the text row.
	if got := LocateHeader(rows, 0, "行程"); got != 1 {
		t.Errorf("LocateHeader = %d, want 1", got)
	}
}

func TestLocateHeader_Heuristic(t *testing.T) {
	rows := []common.Row{
		{"A", "B", "http://x.com/img.png"},
		{"名稱", "類型", "備註"},
		{"地點A", "餐廳", "好吃"},
	}

	// The URL-laden row is skipped outright; the text-only header row wins.
	if got := LocateHeader(rows, 0, ""); got != 1 {
		t.Errorf("LocateHeader = %d, want 1", got)
	}
}

func TestLocateHeader_HeuristicPenalties(t *testing.T) {
	rows := []common.Row{
		{"09:00", "123", "456"},
		{"時間", "名稱", "金額"},
	}

	if got := LocateHeader(rows, 0, ""); got != 1 {
		t.Errorf("LocateHeader = %d, want 1", got)
	}
}

func TestLocateHeader_NoScoreableRow(t *testing.T) {
	rows := []common.Row{
		{"only-one"},
		{""},
	}

	if got := LocateHeader(rows, 1, ""); got != 1 {
		t.Errorf("LocateHeader = %d, want cursor 1", got)
	}
}

func TestLocateHeader_TieKeepsFirst(t *testing.T) {
	rows := []common.Row{
		{"名稱", "類型"},
		{"名稱", "類型"},
	}

	if got := LocateHeader(rows, 0, ""); got != 0 {
		t.Errorf("LocateHeader = %d, want 0", got)
	}
}

func TestSplitTokenList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"123, 456", []string{"123", "456"}},
		{"123，456、789;0；1\n2", []string{"123", "456", "789", "0", "1", "2"}},
		{"  ", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := SplitTokenList(tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitTokenList(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
