// Package fetcher retrieves and parses published sanction lists. Lists are
// distributed as CSV or XLSX files over HTTP(S) and the occasional FTP
// mirror; retrieval returns a stream and parsing maps rows onto records.
package fetcher

import (
	"context"
	"io"
	"net/url"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a remote list file. The caller owns the returned body.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// ForURL picks a fetcher by URL scheme.
func ForURL(rawURL string, opts HTTPOptions) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(opts), nil
	case "ftp":
		return NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}
