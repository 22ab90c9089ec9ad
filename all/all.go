// Package all imports every platform patcher.
//
// Import this package for its side effects to register all platforms:
//
//	import (
//		"github.com/git-pkgs/repodata-patches"
//		_ "github.com/git-pkgs/repodata-patches/all"
//	)
//
//	platforms := patches.SupportedPlatforms()
//	// ["win-"]
package all

import (
	_ "github.com/git-pkgs/repodata-patches/internal/windows"
)
