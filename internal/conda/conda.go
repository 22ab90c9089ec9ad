// Package conda loads repodata.json documents from conda channels.
package conda

import (
	"context"
	"fmt"

	"github.com/git-pkgs/repodata-patches/fetch"
	"github.com/git-pkgs/repodata-patches/internal/core"
)

const (
	DefaultChannelAlias = "https://conda-web.anaconda.org"
	DefaultChannel      = "conda-forge"
)

// Source fetches and decodes channel repodata.
type Source struct {
	fetcher  fetch.FetcherInterface
	resolver *fetch.Resolver
}

// New creates a Source reading channels behind channelAlias. If
// channelAlias is empty, DefaultChannelAlias is used.
func New(channelAlias string, fetcher fetch.FetcherInterface) *Source {
	if channelAlias == "" {
		channelAlias = DefaultChannelAlias
	}
	return &Source{
		fetcher:  fetcher,
		resolver: fetch.NewResolver(channelAlias),
	}
}

// RepodataURL returns the URL FetchRepodata reads for a channel subdir.
func (s *Source) RepodataURL(channel, subdir string) (string, error) {
	return s.resolver.RepodataURL(channel, subdir)
}

// FetchRepodata downloads and decodes repodata.json for channel/subdir.
func (s *Source) FetchRepodata(ctx context.Context, channel, subdir string) (*core.Repodata, error) {
	url, err := s.RepodataURL(channel, subdir)
	if err != nil {
		return nil, err
	}

	artifact, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = artifact.Body.Close() }()

	rd, err := core.DecodeRepodata(artifact.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return rd, nil
}
