package handler

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/koblas/ftpserve/pkg/challenge"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry records the order challenges are checked in.
type fakeRegistry struct {
	solved  map[challenge.Key]bool
	checked []challenge.Key
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{solved: map[challenge.Key]bool{}}
}

func (f *fakeRegistry) SolveIf(key challenge.Key, predicate func() bool) {
	f.checked = append(f.checked, key)
	if !f.solved[key] && predicate() {
		f.solved[key] = true
	}
}

func (f *fakeRegistry) IsSolved(key challenge.Key) bool {
	return f.solved[key]
}

func (f *fakeRegistry) solvedKeys() []challenge.Key {
	keys := []challenge.Key{}
	for _, key := range challenge.All() {
		if f.solved[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

func newTestFiles(t *testing.T, registry challenge.Registry, opts ...Option) *PublicFiles {
	t.Helper()

	opts = append([]Option{WithLogger(newLogger(&bytes.Buffer{}, true))}, opts...)
	files, err := NewPublicFiles(t.TempDir(), registry, opts...)
	require.NoError(t, err)
	return files
}

func assertForbidden(t *testing.T, expect error, err error) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, expect, errors.Cause(err))
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestResolveRejectsSlash(t *testing.T) {
	registry := newFakeRegistry()
	sanitized := 0
	files := newTestFiles(t, registry, WithSanitizer(func(s string) string {
		sanitized++
		return s
	}))

	for _, name := range []string{"/", "../acquisitions.md", "a/b.md", "x.txt/", "/etc/passwd", "ok.md/"} {
		_, err := files.Resolve(name)
		assertForbidden(t, ErrSlashInFilename, err)
		assert.Equal(t, "File names cannot contain forward slashes!", err.Error())
	}

	assert.Equal(t, 0, sanitized)
	assert.Empty(t, registry.checked)
}

func TestResolveAllowlist(t *testing.T) {
	registry := newFakeRegistry()
	files := newTestFiles(t, registry)

	for _, name := range []string{"", "notes.txt", "README.MD", "report.PDF", "x.mdx", "incident-support.KDBX", "other.kdbx", "md", "eastere.gg%00"} {
		_, err := files.Resolve(name)
		assertForbidden(t, ErrNotAllowlisted, err)
		assert.Equal(t, "Only .md and .pdf files are allowed!", err.Error())
	}
	assert.Empty(t, registry.checked)

	for _, name := range []string{"acquisitions.md", "legal.pdf", "incident-support.kdbx", ".md"} {
		resolved, err := files.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, filepath.Join(files.BaseDir(), name), resolved)
	}
}

func TestResolveRejectsEscape(t *testing.T) {
	files := newTestFiles(t, newFakeRegistry())

	for _, name := range []string{"..%00.md", "..\x00.md", "..%00.pdf"} {
		_, err := files.Resolve(name)
		assertForbidden(t, ErrPathEscape, err)
		assert.Equal(t, "Invalid file path!", err.Error())
	}
}

func TestResolveUsesSanitizer(t *testing.T) {
	registry := newFakeRegistry()
	files := newTestFiles(t, registry, WithSanitizer(func(string) string {
		return "../../etc/passwd"
	}))

	_, err := files.Resolve("passwd.md")
	assertForbidden(t, ErrPathEscape, err)
	assert.Empty(t, registry.checked)
}

func TestResolveSiblingPrefixIsAccepted(t *testing.T) {
	base := filepath.Join(t.TempDir(), "ftp")
	files, err := NewPublicFiles(base, newFakeRegistry(), WithSanitizer(func(string) string {
		return "../ftp-evil/secret.md"
	}))
	require.NoError(t, err)

	resolved, err := files.Resolve("secret.md")

	require.NoError(t, err)
	assert.Equal(t, base+"-evil"+string(filepath.Separator)+"secret.md", resolved)
}

func TestResolveSanitizesAfterAllowlist(t *testing.T) {
	registry := newFakeRegistry()
	files := newTestFiles(t, registry)

	resolved, err := files.Resolve("encrypt.pyc\x00.md")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(files.BaseDir(), "encrypt.pyc"), resolved)
	assert.Equal(t, []challenge.Key{challenge.NullByte}, registry.solvedKeys())
}

func TestResolveChallengeOrder(t *testing.T) {
	registry := newFakeRegistry()
	files := newTestFiles(t, registry)

	_, err := files.Resolve("legal.md")

	require.NoError(t, err)
	assert.Equal(t, []challenge.Key{
		challenge.DirectoryListing,
		challenge.EasterEggLevelOne,
		challenge.ForgottenDevBackup,
		challenge.ForgottenBackup,
		challenge.MisplacedSignatureFile,
		challenge.NullByte,
	}, registry.checked)
	assert.Empty(t, registry.solvedKeys())
}

func TestResolveSolvesChallenges(t *testing.T) {
	tests := []struct {
		name   string
		expect []challenge.Key
	}{
		{"acquisitions.md", []challenge.Key{challenge.DirectoryListing}},
		{"ACQUISITIONS.md", []challenge.Key{challenge.DirectoryListing}},
		{"eastere.gg%00.md", []challenge.Key{challenge.EasterEggLevelOne, challenge.NullByte}},
		{"EasterE.GG%00.pdf", []challenge.Key{challenge.EasterEggLevelOne, challenge.NullByte}},
		{"package.json.bak%00.md", []challenge.Key{challenge.ForgottenDevBackup, challenge.NullByte}},
		{"Package.JSON.bak\x00.md", []challenge.Key{challenge.ForgottenDevBackup, challenge.NullByte}},
		{"coupons_2013.md.bak%00.md", []challenge.Key{challenge.ForgottenBackup, challenge.NullByte}},
		{"COUPONS_2013.MD.BAK%00.md", []challenge.Key{challenge.ForgottenBackup, challenge.NullByte}},
		{"suspicious_errors.yml%00.md", []challenge.Key{challenge.MisplacedSignatureFile, challenge.NullByte}},
		{"Suspicious_Errors.YML%00.md", []challenge.Key{challenge.MisplacedSignatureFile, challenge.NullByte}},
		{"encrypt.pyc%00.md", []challenge.Key{challenge.NullByte}},
		{"ENCRYPT.PYC%00.md", []challenge.Key{challenge.NullByte}},
		{"incident-support.kdbx", []challenge.Key{}},
	}

	for _, item := range tests {
		t.Run(item.name, func(t *testing.T) {
			registry := newFakeRegistry()
			files := newTestFiles(t, registry)

			_, err := files.Resolve(item.name)

			require.NoError(t, err)
			assert.Equal(t, item.expect, registry.solvedKeys())
		})
	}
}

func TestResolveNullByteSeesEarlierSolves(t *testing.T) {
	registry := newFakeRegistry()
	registry.solved[challenge.ForgottenBackup] = true
	files := newTestFiles(t, registry)

	_, err := files.Resolve("legal.md")

	require.NoError(t, err)
	assert.True(t, registry.IsSolved(challenge.NullByte))
}

func TestResolveIsIdempotent(t *testing.T) {
	registry := challenge.NewMemory()
	solves := 0
	registry.OnSolved = func(challenge.Key) { solves++ }
	files := newTestFiles(t, registry)

	for i := 0; i < 2; i++ {
		_, err := files.Resolve("acquisitions.md")
		require.NoError(t, err)
		assert.True(t, registry.IsSolved(challenge.DirectoryListing))
	}
	assert.Equal(t, 1, solves)
}

func TestEndsWithAllowlistedFileType(t *testing.T) {
	assert.True(t, endsWithAllowlistedFileType("a.md"))
	assert.True(t, endsWithAllowlistedFileType("a.pdf"))
	assert.True(t, endsWithAllowlistedFileType("a.txt.md"))
	assert.False(t, endsWithAllowlistedFileType("a.md.txt"))
	assert.False(t, endsWithAllowlistedFileType(strings.ToUpper("a.md")))
}
