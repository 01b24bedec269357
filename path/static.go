package path

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ararog/vetis/auth"
	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/fdcache"
	"github.com/ararog/vetis/httpdate"
	"github.com/ararog/vetis/mimetable"
	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/vetiserr"
)

// StaticPath serves files from a directory, implementing range
// requests, index-file fallback, conditional HEAD, MIME inference and
// descriptor caching, ported from caddyhttp/staticfiles/fileserver.go
// and the explicit range algorithm of the original static_files engine.
type StaticPath struct {
	uri        string
	directory  string
	extensions *regexp.Regexp
	indexFiles []string
	auth       *auth.BasicAuth
	cache      *fdcache.Cache
}

// NewStaticPath builds a StaticPath from its configuration. An empty
// Extensions pattern matches nothing, which is valid: the regex is
// only consulted as a gate before falling back to index files. A
// pattern that does not compile is rejected with a config error.
func NewStaticPath(cfg config.StaticPathConfig, cache *fdcache.Cache) (*StaticPath, error) {
	var ext *regexp.Regexp
	if cfg.Extensions != "" {
		re, err := regexp.Compile(cfg.Extensions)
		if err != nil {
			return nil, vetiserr.Config("invalid static path extensions regex", err)
		}
		ext = re
	}
	sp := &StaticPath{
		uri:        cfg.URI,
		directory:  cfg.Directory,
		extensions: ext,
		indexFiles: cfg.IndexFiles,
		cache:      cache,
	}
	if cfg.Auth != nil {
		sp.auth = auth.New(cfg.Auth.Realm, cfg.Auth.Users)
	}
	return sp, nil
}

func (s *StaticPath) URI() string { return s.uri }

func (s *StaticPath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	if s.auth != nil {
		ok, err := s.auth.Authenticate(req.Header)
		if err != nil || !ok {
			return reqres.Text(http.StatusUnauthorized, "Unauthorized"), nil
		}
	}

	cleanTail := strings.TrimPrefix(tail, "/")
	file := filepath.Join(s.directory, filepath.FromSlash(cleanTail))

	target, err := s.resolveTarget(file, cleanTail)
	if err != nil {
		if fe, ok := asFileError(err); ok {
			return reqres.Text(fe.Status, fe.Message), nil
		}
		return nil, err
	}

	if req.Method == http.MethodHead {
		return s.serveMetadata(target)
	}

	rangeHeader := req.Header.Get("Range")
	if rangeHeader != "" {
		return s.serveRange(target, rangeHeader)
	}

	return s.serveWhole(target)
}

// resolveTarget implements the §4.8 step-3/4 precedence: the
// extensions regex is a gate, and index files are only consulted when
// the target doesn't exist and the regex doesn't match the tail (or
// when the target is a directory).
func (s *StaticPath) resolveTarget(file, tail string) (string, error) {
	info, statErr := os.Stat(file)

	if len(s.indexFiles) > 0 {
		switch {
		case statErr != nil:
			if s.extensions == nil || !s.extensions.MatchString(tail) {
				if idx, ok := s.firstExistingIndex(s.directory); ok {
					return idx, nil
				}
			}
			return "", vetiserr.File(http.StatusNotFound, "Not Found", statErr)
		case info.IsDir():
			if idx, ok := s.firstExistingIndex(file); ok {
				return idx, nil
			}
			return "", vetiserr.File(http.StatusNotFound, "Not Found", nil)
		default:
			return file, nil
		}
	}

	if statErr != nil {
		return "", vetiserr.File(http.StatusNotFound, "Not Found", statErr)
	}
	if info.IsDir() {
		return "", vetiserr.File(http.StatusNotFound, "Not Found", nil)
	}
	return file, nil
}

func (s *StaticPath) firstExistingIndex(dir string) (string, bool) {
	for _, idx := range s.indexFiles {
		candidate := filepath.Join(dir, idx)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func (s *StaticPath) serveMetadata(file string) (*reqres.Response, error) {
	info, err := os.Stat(file)
	if err != nil {
		return reqres.Text(http.StatusNotFound, "Not Found"), nil
	}
	resp := reqres.NewResponse(http.StatusOK)
	resp.Header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	resp.Header.Set("Last-Modified", httpdate.Format(info.ModTime()))
	resp.Header.Set("Content-Type", mimetable.ByFilename(file))
	return resp, nil
}

func (s *StaticPath) serveWhole(file string) (*reqres.Response, error) {
	handle, size, err := s.openCached(file)
	if err != nil {
		return nil, err
	}
	info, statErr := handle.Stat()
	if statErr != nil {
		handle.Close()
		return nil, vetiserr.File(http.StatusInternalServerError, "invalid metadata", statErr)
	}

	resp := reqres.NewResponse(http.StatusOK)
	resp.Header.Set("Accept-Ranges", "bytes")
	resp.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	resp.Header.Set("Last-Modified", httpdate.Format(info.ModTime()))
	resp.Header.Set("Content-Type", mimetable.ByFilename(file))
	resp.Body = withClose(io.NewSectionReader(handle, 0, size), handle)
	return resp, nil
}

func (s *StaticPath) serveRange(file, rangeHeader string) (*reqres.Response, error) {
	handle, size, err := s.openCached(file)
	if err != nil {
		return nil, err
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		handle.Close()
		return reqres.Text(http.StatusRequestedRangeNotSatisfiable, ""), nil
	}

	info, statErr := handle.Stat()
	if statErr != nil {
		handle.Close()
		return nil, vetiserr.File(http.StatusInternalServerError, "invalid metadata", statErr)
	}

	length := end - start + 1
	resp := reqres.NewResponse(http.StatusPartialContent)
	resp.Header.Set("Content-Range", contentRange(start, end, size))
	resp.Header.Set("Content-Length", strconv.FormatInt(length, 10))
	resp.Header.Set("Last-Modified", httpdate.Format(info.ModTime()))
	resp.Header.Set("Content-Type", mimetable.ByFilename(file))
	resp.Body = withClose(io.NewSectionReader(handle, start, length), handle)
	return resp, nil
}

func (s *StaticPath) openCached(file string) (*fdcache.Handle, int64, error) {
	handle, err := s.cache.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, vetiserr.File(http.StatusNotFound, "Not Found", err)
		}
		return nil, 0, vetiserr.File(http.StatusInternalServerError, "invalid metadata", err)
	}
	info, err := handle.Stat()
	if err != nil {
		handle.Close()
		return nil, 0, vetiserr.File(http.StatusInternalServerError, "invalid metadata", err)
	}
	return handle, info.Size(), nil
}

// parseRange parses a "bytes=start-end" header per §4.8 step 6. Open
// ranges ("bytes=100-") stream to end-of-file. Returns ok=false for
// any syntax error, wrong unit, start>end, or start>=size.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	unit, spec, found := strings.Cut(header, "=")
	if !found || unit != "bytes" {
		return 0, 0, false
	}
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}
	if endStr == "" {
		end = size - 1
	} else {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}
	if start > end || start >= size {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}

func contentRange(start, end, size int64) string {
	return "bytes " + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10) + "/" + strconv.FormatInt(size, 10)
}

type fileError struct {
	Status  int
	Message string
}

func asFileError(err error) (*fileError, bool) {
	ve, ok := err.(interface {
		HTTPStatus() int
		Error() string
	})
	if !ok {
		return nil, false
	}
	return &fileError{Status: ve.HTTPStatus(), Message: "Not Found"}, true
}

// closeAfterRead wraps an io.Reader so Close also closes the backing
// cached descriptor once the body has been fully drained by the
// caller's io.ReadCloser contract.
type closeAfterRead struct {
	io.Reader
	closer io.Closer
}

func (c *closeAfterRead) Close() error { return c.closer.Close() }

func withClose(r io.Reader, closer io.Closer) io.ReadCloser {
	return &closeAfterRead{Reader: r, closer: closer}
}

var _ HostPath = (*StaticPath)(nil)
