package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// RepodataFilename is the document fetched for every channel subdir.
const RepodataFilename = "repodata.json"

var ErrInvalidChannel = errors.New("invalid channel")

// Resolver builds repodata URLs for channels hosted behind a channel alias.
type Resolver struct {
	channelAlias string
}

// NewResolver creates a resolver for the given channel alias, e.g.
// "https://conda-web.anaconda.org".
func NewResolver(channelAlias string) *Resolver {
	return &Resolver{channelAlias: strings.TrimSuffix(channelAlias, "/")}
}

// ChannelAlias returns the alias the resolver was created with.
func (r *Resolver) ChannelAlias() string {
	return r.channelAlias
}

// ChannelURL returns the base URL of a channel. Channel names may contain
// labels ("conda-forge/label/archive"); a channel given as an absolute URL is
// used as is.
func (r *Resolver) ChannelURL(channel string) (string, error) {
	channel = strings.Trim(channel, "/")
	if channel == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidChannel)
	}
	if strings.Contains(channel, "://") {
		u, err := url.Parse(channel)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidChannel, err)
		}
		return strings.TrimSuffix(u.String(), "/"), nil
	}
	return r.channelAlias + "/" + channel, nil
}

// RepodataURL returns <alias>/<channel>/<subdir>/repodata.json.
func (r *Resolver) RepodataURL(channel, subdir string) (string, error) {
	base, err := r.ChannelURL(channel)
	if err != nil {
		return "", err
	}
	subdir = strings.Trim(subdir, "/")
	if subdir == "" {
		return "", fmt.Errorf("%w: empty subdir for %s", ErrInvalidChannel, channel)
	}
	return strings.Join([]string{base, subdir, RepodataFilename}, "/"), nil
}
