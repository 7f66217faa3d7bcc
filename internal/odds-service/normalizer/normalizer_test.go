package normalizer

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture %s: %v", s, err)
	}
	return v
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantIDs []string
		shape   Shape
	}{
		{
			name:    "bare array filters scalars and nulls",
			payload: `[{"id":"a"}, 1, null, "x", {"id":"b"}]`,
			wantIDs: []string{"a", "b"},
			shape:   ShapeArray,
		},
		{
			name:    "wrapped under data",
			payload: `{"data":[{"id":"a"},{"id":"b"}]}`,
			wantIDs: []string{"a", "b"},
			shape:   ShapeWrapped,
		},
		{
			name:    "wrapper priority data before events",
			payload: `{"events":[{"id":"e"}],"data":[{"id":"d"}]}`,
			wantIDs: []string{"d"},
			shape:   ShapeWrapped,
		},
		{
			name:    "non-array wrapper key is skipped",
			payload: `{"data":{"id":"x"},"games":[{"id":"g"}]}`,
			wantIDs: []string{"g"},
			shape:   ShapeWrapped,
		},
		{
			name:    "response wrapper",
			payload: `{"response":[{"id":"r"}, false]}`,
			wantIDs: []string{"r"},
			shape:   ShapeWrapped,
		},
		{
			name:    "single game with bookmakers",
			payload: `{"id":"solo","bookmakers":[]}`,
			wantIDs: []string{"solo"},
			shape:   ShapeSingleGame,
		},
		{
			name:    "single game with sites",
			payload: `{"id":"solo","sites":[{"site_nice":"A"}]}`,
			wantIDs: []string{"solo"},
			shape:   ShapeSingleGame,
		},
		{
			name:    "object without id or bookmakers",
			payload: `{"message":"rate limited"}`,
			wantIDs: nil,
			shape:   ShapeUnknown,
		},
		{
			name:    "object with id but no bookmakers",
			payload: `{"id":"x","home_team":"A"}`,
			wantIDs: nil,
			shape:   ShapeUnknown,
		},
		{
			name:    "scalar",
			payload: `42`,
			wantIDs: nil,
			shape:   ShapeUnknown,
		},
		{
			name:    "null",
			payload: `null`,
			wantIDs: nil,
			shape:   ShapeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := decode(t, tt.payload)

			if shape, _ := Classify(payload); shape != tt.shape {
				t.Errorf("Classify() = %s, want %s", shape, tt.shape)
			}

			got := Normalize(payload)
			if got == nil {
				t.Fatal("Normalize() = nil, want non-nil slice")
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len(Normalize()) = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i]["id"] != id {
					t.Errorf("Normalize()[%d].id = %v, want %s", i, got[i]["id"], id)
				}
			}
		})
	}
}

func TestClassify_WrapperKey(t *testing.T) {
	_, key := Classify(decode(t, `{"matches":[]}`))
	if key != "matches" {
		t.Errorf("Classify() key = %q, want matches", key)
	}
}
