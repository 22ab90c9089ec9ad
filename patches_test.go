package patches_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/git-pkgs/repodata-patches"
	_ "github.com/git-pkgs/repodata-patches/all"
)

const winRepodata = `{
  "packages": {
    "python-2.7.15-h2880e7c_0.tar.bz2": {
      "name": "python",
      "version": "2.7.15",
      "depends": [],
      "track_features": "vc9"
    },
    "vs2015_runtime-14.0.25420-0.tar.bz2": {
      "name": "vs2015_runtime",
      "version": "14.0.25420",
      "depends": []
    }
  }
}`

func TestSupportedPlatforms(t *testing.T) {
	platforms := patches.SupportedPlatforms()
	if len(platforms) != 1 || platforms[0] != "win-" {
		t.Errorf("SupportedPlatforms() = %v, want [win-]", platforms)
	}
}

func TestGenerateAndEncode(t *testing.T) {
	rd, err := patches.DecodeRepodata(strings.NewReader(winRepodata))
	if err != nil {
		t.Fatalf("DecodeRepodata failed: %v", err)
	}

	ins, err := patches.Generate(rd, "win-32")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := patches.Encode(ins)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `{
  "packages": {
    "python-2.7.15-h2880e7c_0.tar.bz2": {
      "depends": [
        "vc 9.*"
      ],
      "name": "python",
      "version": "2.7.15"
    }
  },
  "patch_instructions_version": 1,
  "remove": [],
  "revoke": []
}`
	if string(data) != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", data, want)
	}
}

func TestGenerateNonWindows(t *testing.T) {
	rd, err := patches.DecodeRepodata(strings.NewReader(winRepodata))
	if err != nil {
		t.Fatalf("DecodeRepodata failed: %v", err)
	}

	for _, subdir := range []string{"linux-64", "osx-64", "noarch", "windows-64"} {
		ins, err := patches.Generate(rd, subdir)
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", subdir, err)
		}
		if len(ins.Packages) != 0 {
			t.Errorf("Generate(%s) patched %v, want nothing", subdir, ins.Packages)
		}
		if ins.InstructionsVersion != patches.InstructionsVersion {
			t.Errorf("Generate(%s) version = %d", subdir, ins.InstructionsVersion)
		}
	}
}

func TestGenerateUnknownPython(t *testing.T) {
	rd := &patches.Repodata{Packages: map[string]patches.Record{
		"python-3.11.0-0.tar.bz2": {"name": "python", "version": "3.11.0", "depends": []any{}},
	}}

	_, err := patches.Generate(rd, "win-64")
	if !errors.Is(err, patches.ErrUnknownPythonVersion) {
		t.Errorf("Generate = %v, want ErrUnknownPythonVersion", err)
	}
}
