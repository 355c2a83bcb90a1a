package handler

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/koblas/ftpserve/pkg/challenge"
	"github.com/koblas/ftpserve/pkg/sanitize"
	"github.com/pkg/errors"
)

const incidentSupportFile = "incident-support.kdbx"

var allowlistedFileTypes = []string{".md", ".pdf"}

// ErrorHandler receives every error that ends a request. The status code is
// carried by *HTTPError when one is wrapped in err.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// FileSender writes the file at the absolute path name to w.
type FileSender func(w http.ResponseWriter, r *http.Request, name string) error

// PublicFiles hands out single files from a base directory. A file name has
// to pass the allowlist and resolve inside the base directory before it is
// sent; which file was sent feeds the challenge registry.
type PublicFiles struct {
	baseDir    string
	challenges challenge.Registry
	sanitize   func(string) string
	send       FileSender
	logger     Logger
}

type Option func(*PublicFiles)

func WithSanitizer(fn func(string) string) Option {
	return func(p *PublicFiles) {
		p.sanitize = fn
	}
}

func WithFileSender(fn FileSender) Option {
	return func(p *PublicFiles) {
		p.send = fn
	}
}

func WithLogger(logger Logger) Option {
	return func(p *PublicFiles) {
		p.logger = logger
	}
}

func NewPublicFiles(baseDir string, challenges challenge.Registry, opts ...Option) (*PublicFiles, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrap(err, "base directory")
	}

	p := &PublicFiles{
		baseDir:    abs,
		challenges: challenges,
		sanitize:   sanitize.CutOffPoisonNullByte,
		send:       serveFile,
		logger:     NewLogger(false),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *PublicFiles) BaseDir() string {
	return p.baseDir
}

// Resolve checks file and returns the absolute path that should be sent.
func (p *PublicFiles) Resolve(file string) (string, error) {
	if strings.Contains(file, "/") {
		return "", forbidden(ErrSlashInFilename)
	}

	return p.verify(file)
}

func (p *PublicFiles) verify(file string) (string, error) {
	if file == "" || !(endsWithAllowlistedFileType(file) || file == incidentSupportFile) {
		return "", forbidden(ErrNotAllowlisted)
	}

	// The allowlist above sees the raw name, the filesystem sees the
	// truncated one.
	file = p.sanitize(file)

	resolvedPath := filepath.Join(p.baseDir, file)

	// Plain prefix test: a sibling such as <base>-evil passes as well.
	if !strings.HasPrefix(resolvedPath, p.baseDir) {
		return "", forbidden(ErrPathEscape)
	}

	p.solveChallenges(file)

	return resolvedPath, nil
}

func (p *PublicFiles) solveChallenges(file string) {
	name := strings.ToLower(file)
	is := func(literal string) func() bool {
		return func() bool { return name == literal }
	}

	p.challenges.SolveIf(challenge.DirectoryListing, is("acquisitions.md"))
	p.challenges.SolveIf(challenge.EasterEggLevelOne, is("eastere.gg"))
	p.challenges.SolveIf(challenge.ForgottenDevBackup, is("package.json.bak"))
	p.challenges.SolveIf(challenge.ForgottenBackup, is("coupons_2013.md.bak"))
	p.challenges.SolveIf(challenge.MisplacedSignatureFile, is("suspicious_errors.yml"))

	// Reads the flags set just above.
	p.challenges.SolveIf(challenge.NullByte, func() bool {
		return p.challenges.IsSolved(challenge.EasterEggLevelOne) ||
			p.challenges.IsSolved(challenge.ForgottenDevBackup) ||
			p.challenges.IsSolved(challenge.ForgottenBackup) ||
			p.challenges.IsSolved(challenge.MisplacedSignatureFile) ||
			name == "encrypt.pyc"
	})
}

func endsWithAllowlistedFileType(file string) bool {
	for _, ext := range allowlistedFileTypes {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

// Handler serves the route parameter "file". Every failure goes to next.
func (p *PublicFiles) Handler(next ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := routeParam(r, "file")
		if err != nil {
			next(w, r, err)
			return
		}

		p.logger.Debug("public file requested", "file", file)

		resolvedPath, err := p.Resolve(file)
		if err != nil {
			p.logger.Debug("public file rejected", "file", file, "error", err)
			next(w, r, err)
			return
		}

		if err := p.send(w, r, resolvedPath); err != nil {
			next(w, r, err)
		}
	}
}

// routeParam returns a decoded URL parameter. chi matches against the raw
// path when the request carried escapes, in which case the parameter still
// needs one round of decoding.
func routeParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", &HTTPError{StatusCode: http.StatusBadRequest, Err: errors.Wrap(err, "decode "+key)}
	}
	return decoded, nil
}

func serveFile(w http.ResponseWriter, r *http.Request, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return toHTTPError(err)
	}
	defer f.Close()

	d, err := f.Stat()
	if err != nil {
		return toHTTPError(err)
	}
	if d.IsDir() {
		return &HTTPError{StatusCode: http.StatusNotFound, Err: errors.Errorf("%s is a directory", d.Name())}
	}

	http.ServeContent(w, r, d.Name(), d.ModTime(), f)
	return nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &HTTPError{StatusCode: http.StatusNotFound, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &HTTPError{StatusCode: http.StatusForbidden, Err: err}
	}
	return &HTTPError{StatusCode: http.StatusInternalServerError, Err: err}
}
