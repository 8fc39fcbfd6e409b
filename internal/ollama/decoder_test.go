// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestDecodeIncrement(t *testing.T) {
	line := `{"model":"llama3","created_at":"2024-05-01T10:00:00Z","response":"Hi","done":false}`

	inc, err := DecodeIncrement(line)
	if err != nil {
		t.Fatalf("DecodeIncrement() error = %v", err)
	}
	if inc.Model != "llama3" || inc.Response != "Hi" || inc.Done {
		t.Errorf("unexpected increment: %+v", inc)
	}
	if inc.CreatedAt.Year() != 2024 {
		t.Errorf("CreatedAt = %v", inc.CreatedAt)
	}
}

func TestDecodeIncrement_DoneRecord(t *testing.T) {
	line := `{"model":"m","response":"","done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":40,"total_duration":2500000000,"load_duration":100000000,"eval_duration":2000000000}`

	inc, err := DecodeIncrement(line)
	if err != nil {
		t.Fatalf("DecodeIncrement() error = %v", err)
	}
	if !inc.Done || inc.DoneReason != "stop" {
		t.Errorf("Done = %v, DoneReason = %q", inc.Done, inc.DoneReason)
	}
	if inc.PromptEvalCount != 12 || inc.EvalCount != 40 {
		t.Errorf("counts = %d/%d", inc.PromptEvalCount, inc.EvalCount)
	}
	if inc.TotalDuration != 2500000000 || inc.LoadDuration != 100000000 {
		t.Errorf("durations = %d/%d", inc.TotalDuration, inc.LoadDuration)
	}
}

func TestDecodeIncrement_Malformed(t *testing.T) {
	for _, line := range []string{"{not json", "[1,2]", `"text"`, `{"response": 5}`} {
		_, err := DecodeIncrement(line)
		if err == nil {
			t.Errorf("DecodeIncrement(%q) expected error", line)
			continue
		}
		var clientErr *ClientError
		if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeDecode {
			t.Errorf("DecodeIncrement(%q) error = %v, want ErrTypeDecode", line, err)
		}
	}
}

func TestDecodeIncrement_RoundTrip(t *testing.T) {
	for _, in := range []GenerationIncrement{
		{Response: "hello", Done: false},
		{Response: "<think>x</think>", Done: false},
		{Response: "", Done: true},
		{Response: "ünïcode \"quoted\"\n", Done: true},
	} {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		out, err := DecodeIncrement(string(data))
		if err != nil {
			t.Fatalf("DecodeIncrement(%s) error = %v", data, err)
		}
		if out.Response != in.Response || out.Done != in.Done {
			t.Errorf("round trip = %q/%v, want %q/%v", out.Response, out.Done, in.Response, in.Done)
		}
	}
}

func TestChunkDecoder(t *testing.T) {
	var observed []GenerationIncrement
	d := chunkDecoder{
		logger:  slog.New(slog.DiscardHandler),
		observe: func(inc GenerationIncrement) { observed = append(observed, inc) },
	}

	tests := []struct {
		line    string
		want    string
		forward bool
	}{
		{`{"response":"a"}`, "a", true},
		{"{not json", "", false},
		{`{"response":""}`, "", false},
		{`{"done":true,"eval_count":3}`, "", false},
		{`{"response":" "}`, " ", true},
	}

	for _, tt := range tests {
		inc, ok := d.decode(tt.line)
		if ok != tt.forward {
			t.Errorf("decode(%q) forwarded = %v, want %v", tt.line, ok, tt.forward)
		}
		if ok && inc.Response != tt.want {
			t.Errorf("decode(%q).Response = %q, want %q", tt.line, inc.Response, tt.want)
		}
	}

	if d.dropped != 1 {
		t.Errorf("dropped = %d, want 1", d.dropped)
	}
	if len(observed) != 4 {
		t.Errorf("observed %d increments, want 4", len(observed))
	}
}

func TestTruncateForLog(t *testing.T) {
	short := "abc"
	if got := truncateForLog(short); got != short {
		t.Errorf("truncateForLog(%q) = %q", short, got)
	}

	long := string(make([]byte, 300))
	if got := truncateForLog(long); len(got) != 203 {
		t.Errorf("len(truncateForLog(300 bytes)) = %d, want 203", len(got))
	}
}
