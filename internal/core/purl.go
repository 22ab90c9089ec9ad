package core

import (
	"strings"

	packageurl "github.com/git-pkgs/packageurl-go"
)

const purlType = "conda"

// RecordPURL returns the conda Package URL for a repodata record, e.g.
// pkg:conda/python@3.6.9?build=h5500b2f_0&channel=conda-forge&subdir=win-64&type=tar.bz2
func RecordPURL(channel, subdir, filename string, rec Record) string {
	qualifiers := map[string]string{
		"channel": channel,
		"subdir":  subdir,
	}
	if build := rec.str("build"); build != "" {
		qualifiers["build"] = build
	}
	if ext := archiveType(filename); ext != "" {
		qualifiers["type"] = ext
	}

	p := packageurl.NewPackageURL(purlType, "", rec.Name(), rec.Version(),
		packageurl.QualifiersFromMap(qualifiers), "")
	return p.ToString()
}

func archiveType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".tar.bz2"):
		return "tar.bz2"
	case strings.HasSuffix(filename, ".conda"):
		return "conda"
	}
	return ""
}
