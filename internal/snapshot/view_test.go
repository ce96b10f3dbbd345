package snapshot

import (
	"testing"

	"github.com/procdash/procdash/internal/manager"
)

func intp(i int) *int { return &i }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		execMode string
		instance *int
		want     string
	}{
		{"api", "cluster_mode", intp(2), "api-2"},
		{"api", "cluster", intp(0), "api-0"},
		{"worker", "fork_mode", nil, "worker"},
		{"worker", "fork", nil, "worker"},
		// Cluster mode without a reported index keeps the plain name.
		{"api", "cluster_mode", nil, "api"},
		// An index outside cluster mode is ignored.
		{"worker", "fork_mode", intp(1), "worker"},
	}

	for _, tt := range tests {
		e := manager.ProcessEntry{Name: tt.name, ExecMode: tt.execMode, Instance: tt.instance}
		if got := DisplayName(e); got != tt.want {
			t.Errorf("DisplayName(%q, %q, %v) = %q, want %q",
				tt.name, tt.execMode, tt.instance, got, tt.want)
		}
	}
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{12958000, "12.36 MB"},
		{0, "0.00 MB"},
		{1048576, "1.00 MB"},
		{52428800, "50.00 MB"},
	}

	for _, tt := range tests {
		if got := FormatMemory(tt.bytes); got != tt.want {
			t.Errorf("FormatMemory(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
