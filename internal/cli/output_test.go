package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	resp := &models.QueryResponse{
		Answer:  "The sky is blue.",
		Sources: []models.SourceSnippet{{DocName: "sky.txt", Content: "The sky is blue.", ChunkIndex: 0, Score: 0.25}},
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.QueryResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Answer != resp.Answer || len(decoded.Sources) != 1 || decoded.Sources[0].Score != 0.25 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	resp := &models.QueryResponse{
		Answer: "The sky is blue.",
		Sources: []models.SourceSnippet{
			{DocName: "sky.txt", Content: "The sky\nis blue.", ChunkIndex: 2, Score: 0.5},
		},
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"The sky is blue.\n", "Sources:", "[1] sky.txt #2 (score 0.5000)", "      The sky is blue."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAnswer_TextRefused(t *testing.T) {
	resp := &models.QueryResponse{Answer: "Information not found in provided documents.", Sources: []models.SourceSnippet{}, Refused: true}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Information not found in provided documents.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteFiles(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFiles(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("json of no files = %q", buf.String())
	}
	buf.Reset()
	_ = WriteFiles(&buf, nil, OutputText)
	if buf.String() != "No documents indexed.\n" {
		t.Errorf("text of no files = %q", buf.String())
	}
	buf.Reset()
	_ = WriteFiles(&buf, []string{"a.txt", "b.pdf"}, OutputText)
	if buf.String() != "a.txt\nb.pdf\n" {
		t.Errorf("text = %q", buf.String())
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"sky"}, "sky"},
		{[]string{"What", "color", "is", "the", "sky?"}, "What color is the sky?"},
		{[]string{"What color is the sky?"}, "What color is the sky?"},
		{[]string{" padded "}, "padded"},
	}
	for _, tt := range tests {
		if got := buildQuery(tt.args); got != tt.want {
			t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
