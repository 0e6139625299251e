package cloudsync

import (
	"reflect"
	"strings"
	"testing"

	"github.com/zenithflow/zenithflow/internal/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	st := models.NewAppState()
	st.Tasks = []models.Task{
		{ID: "t1", Title: "Deep work", Date: "2026-03-02", Category: models.TaskCategorySelfStudy, DurationMinutes: 90, ScheduledTime: "09:00", Status: models.TaskStatusPlanned, Origin: models.TaskOriginPlanning},
		{ID: "t2", Title: "Review PRs", Date: "2026-03-02", Category: models.TaskCategoryOther, DurationMinutes: 30, Status: models.TaskStatusCompleted, Origin: models.TaskOriginDaily, GoogleEventID: "gev-1"},
	}
	st.Transactions = []models.Transaction{
		{ID: "tx1", Date: "2026-03-01", Amount: 42.50, Currency: models.CurrencyEUR, Category: "Groceries"},
	}
	st.Goals = []string{"Ship v2", "", ""}
	st.TotalFocusMinutes = 125

	chunks, err := EncodeState(st)
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("EncodeState returned no chunks")
	}
	for i, chunk := range chunks {
		if len(chunk) > ChunkSize {
			t.Fatalf("chunk %d has length %d, exceeds ChunkSize %d", i, len(chunk), ChunkSize)
		}
	}

	got, ok := DecodeState(chunks)
	if !ok {
		t.Fatal("DecodeState reported no remote state")
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, st)
	}
}

func TestSplitChunksBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		length  int
		wantLen []int
	}{
		{"empty", 0, nil},
		{"one below", ChunkSize - 1, []int{ChunkSize - 1}},
		{"exact", ChunkSize, []int{ChunkSize}},
		{"one above", ChunkSize + 1, []int{ChunkSize, 1}},
		{"two exact", 2 * ChunkSize, []int{ChunkSize, ChunkSize}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			chunks := splitChunks(strings.Repeat("a", tc.length), ChunkSize)
			if len(chunks) != len(tc.wantLen) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tc.wantLen))
			}
			for i, want := range tc.wantLen {
				if len(chunks[i]) != want {
					t.Errorf("chunk %d has length %d, want %d", i, len(chunks[i]), want)
				}
			}
		})
	}
}

func TestDecodeStateLegacyUncompressed(t *testing.T) {
	t.Parallel()

	payload := `{"tasks":[{"id":"old","title":"Legacy task","date":"2025-01-01","category":"Work","durationMinutes":60,"status":"planned","origin":"daily"}],"goals":["","",""]}`

	st, ok := DecodeState([]string{payload})
	if !ok {
		t.Fatal("legacy payload not accepted")
	}
	if len(st.Tasks) != 1 || st.Tasks[0].ID != "old" {
		t.Fatalf("unexpected decoded tasks: %+v", st.Tasks)
	}
}

func TestDecodeStateGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		chunks []string
	}{
		{"empty", nil},
		{"blank cell", []string{""}},
		{"not base64 not json", []string{"%%%%not-a-payload%%%%"}},
		{"valid base64 not gzip", []string{"aGVsbG8gd29ybGQ="}},
		{"json prefix but invalid", []string{"{broken"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, ok := DecodeState(tc.chunks); ok {
				t.Fatal("expected ok=false for undecodable payload")
			}
		})
	}
}
