package mesh

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// A readable mesh source; either a local file or a remote http/https URL.
type resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *resource) Path() string {
	return r.url.String()
}

// Open a mesh resource. URLs with an http or https scheme are fetched using
// the net/http package; anything else is treated as a local file path. The
// caller must close the returned resource.
func openResource(pathToResource string) (*resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	u, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, errors.Wrapf(err, "mesh: invalid resource path %q", pathToResource)
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, errors.Wrap(err, "mesh")
		}
	case "http", "https":
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, errors.Wrapf(err, "mesh: could not fetch '%s'", u.String())
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, errors.Errorf("mesh: could not fetch '%s': status %d", u.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, errors.Errorf("mesh: unsupported scheme '%s'", u.Scheme)
	}

	return &resource{
		ReadCloser: reader,
		url:        u,
	}, nil
}
