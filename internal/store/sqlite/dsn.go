package sqlite

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	dsnScheme = "sqlite://"
	memoryDSN = ":memory:"
)

var errDSNScheme = errors.New("invalid sqlite DSN scheme, expected sqlite://")

// parseDSN turns a sqlite:// URL into the path modernc expects. Relative
// paths are anchored at the working directory; a query string is kept.
func parseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, dsnScheme)
	if !ok {
		return "", errDSNScheme
	}
	if rest == memoryDSN || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "./") {
		return rest, nil
	}

	path, query, hasQuery := strings.Cut(rest, "?")
	path, err := url.PathUnescape(path)
	if err != nil {
		return "", errors.Wrapf(err, "unescaping sqlite path %q", rest)
	}
	if !filepath.IsAbs(path) {
		path = "./" + path
	}
	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}
