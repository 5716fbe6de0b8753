package commands

import (
	"testing"

	"github.com/danhoward/aio-engine/pkg/types"
)

func TestNewStore(t *testing.T) {
	cfg := &types.ProjectConfig{
		DynamoDB: &types.DynamoDBConfig{TableName: "aio-test", Region: "us-east-1"},
	}
	st, err := newStore(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if st == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestSiteHost(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
		wantErr bool
	}{
		{"https://example.com", "example.com", false},
		{"https://example.com/blog/", "example.com", false},
		{"http://localhost:8080", "localhost:8080", false},
		{"example.com", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := siteHost(tt.baseURL)
		if tt.wantErr {
			if err == nil {
				t.Errorf("siteHost(%q): expected error", tt.baseURL)
			}
			continue
		}
		if err != nil {
			t.Errorf("siteHost(%q): unexpected error: %v", tt.baseURL, err)
			continue
		}
		if got != tt.want {
			t.Errorf("siteHost(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}

func TestNewReportStore_File(t *testing.T) {
	dir := t.TempDir()
	cfg := &types.ProjectConfig{Reports: types.ReportConfig{Dir: dir}}
	rs, err := newReportStore(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rs == nil {
		t.Fatal("expected non-nil report store")
	}
}
