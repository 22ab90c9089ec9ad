package fetch

import (
	"errors"
	"testing"
)

func TestRepodataURL(t *testing.T) {
	r := NewResolver("https://conda-web.anaconda.org/")

	tests := []struct {
		channel string
		subdir  string
		want    string
		wantErr bool
	}{
		{"conda-forge", "win-64", "https://conda-web.anaconda.org/conda-forge/win-64/repodata.json", false},
		{"conda-forge/label/archive", "noarch", "https://conda-web.anaconda.org/conda-forge/label/archive/noarch/repodata.json", false},
		{"/bioconda/", "/linux-64/", "https://conda-web.anaconda.org/bioconda/linux-64/repodata.json", false},
		{"https://repo.example.com/main/", "osx-64", "https://repo.example.com/main/osx-64/repodata.json", false},
		{"", "win-64", "", true},
		{"conda-forge", "", "", true},
	}

	for _, tt := range tests {
		got, err := r.RepodataURL(tt.channel, tt.subdir)
		if (err != nil) != tt.wantErr {
			t.Errorf("RepodataURL(%q, %q) error = %v, wantErr %v", tt.channel, tt.subdir, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidChannel) {
				t.Errorf("RepodataURL(%q, %q) = %v, want ErrInvalidChannel", tt.channel, tt.subdir, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("RepodataURL(%q, %q) = %q, want %q", tt.channel, tt.subdir, got, tt.want)
		}
	}
}

func TestChannelAlias(t *testing.T) {
	r := NewResolver("https://conda.anaconda.org/")
	if got := r.ChannelAlias(); got != "https://conda.anaconda.org" {
		t.Errorf("ChannelAlias() = %q", got)
	}
}
