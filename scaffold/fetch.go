package scaffold

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v6/osfs"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/storage/memory"
)

type (
	// TemplateRef points at a branch or tag of a GitHub repository.
	// A branch wins over a tag of the same name.
	TemplateRef struct {
		Owner string
		Repo  string
		Ref   string
	}

	// Fetcher places the file tree of a template into dest.
	Fetcher interface {
		Fetch(ctx context.Context, ref TemplateRef, dest string) error
	}

	// ArchiveFetcher downloads the zip archive GitHub serves for a ref and extracts it.
	ArchiveFetcher struct {
		Client  *http.Client
		BaseURL string
	}

	// GitFetcher clones the ref. Git metadata is kept in memory only.
	GitFetcher struct {
		BaseURL string
		// Depth limits the fetched history. Zero fetches all of it.
		Depth int
	}
)

const defaultTemplateRef = "master"

var (
	templateRefRegex = regexp.MustCompile(`^(?:github:)?([\w.-]+)/([\w.-]+)(?:#(.+))?$`)

	maxArchiveBytes int64 = 256 << 20
)

func ParseTemplateRef(s string) (TemplateRef, error) {
	m := templateRefRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TemplateRef{}, fmt.Errorf("%w: template %q is not of the [github:]owner/repo[#ref] format", ErrConfig, s)
	}

	ref := TemplateRef{Owner: m[1], Repo: m[2], Ref: m[3]}
	if ref.Ref == "" {
		ref.Ref = defaultTemplateRef
	}

	return ref, nil
}

func (r TemplateRef) String() string {
	return fmt.Sprintf("%s/%s#%s", r.Owner, r.Repo, r.Ref)
}

func baseURLOrDefault(u string) string {
	if u == "" {
		return "https://github.com"
	}

	return strings.TrimSuffix(u, "/")
}

// Non-nil returned error wraps [ErrFetch].
func (f ArchiveFetcher) Fetch(ctx context.Context, ref TemplateRef, dest string) error {
	url := fmt.Sprintf("%s/%s/%s/archive/%s.zip", baseURLOrDefault(f.BaseURL), ref.Owner, ref.Repo, ref.Ref)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare GET request to %s: %w", ErrFetch, url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to GET %q: %w", ErrFetch, url, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if rc := resp.StatusCode; rc != http.StatusOK {
		return fmt.Errorf("%w: failed to GET %q, status code %d", ErrFetch, url, rc)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return fmt.Errorf("%w: failed to read archive from %q: %w", ErrFetch, url, err)
	}

	if int64(len(body)) > maxArchiveBytes {
		return fmt.Errorf("%w: archive from %q exceeds %d bytes", ErrFetch, url, maxArchiveBytes)
	}

	if err = extractZip(body, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return nil
}

// extractZip writes the archive into dest, dropping the single top-level directory GitHub wraps it in.
func extractZip(body []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("template archive is not a zip file: %w", err)
	}

	for _, f := range zr.File {
		_, rel, found := strings.Cut(strings.TrimPrefix(f.Name, "/"), "/")
		if !found || rel == "" {
			continue
		}

		rel = path.Clean(rel)
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("archive entry %q escapes the destination directory", f.Name)
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))

		switch mode := f.Mode(); {
		case mode.IsDir():
			if err = os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", rel, err)
			}
		case mode&fs.ModeSymlink != 0:
			continue
		default:
			if err = extractFile(f, target, mode.Perm()); err != nil {
				return fmt.Errorf("failed to extract %q: %w", rel, err)
			}
		}
	}

	return nil
}

func extractFile(f *zip.File, target string, perm fs.FileMode) (err error) {
	if perm == 0 {
		perm = 0644
	}

	if err = os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	fd, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(fd, src); err != nil {
		_ = fd.Close()

		return err
	}

	return fd.Close()
}

// Fetch clones ref.Ref as a branch, then as a tag when no such branch exists.
// Non-nil returned error wraps [ErrFetch].
func (f GitFetcher) Fetch(ctx context.Context, ref TemplateRef, dest string) error {
	url := fmt.Sprintf("%s/%s/%s.git", baseURLOrDefault(f.BaseURL), ref.Owner, ref.Repo)

	var errs []error

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref.Ref),
		plumbing.NewTagReferenceName(ref.Ref),
	} {
		_, err := gogit.CloneContext(ctx, memory.NewStorage(), osfs.New(dest), &gogit.CloneOptions{
			URL:           url,
			ReferenceName: name,
			SingleBranch:  true,
			Depth:         f.Depth,
		})
		if err == nil {
			return nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", name, err))

		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("%w: failed to clone %s at %q: %w", ErrFetch, url, ref.Ref, errors.Join(errs...))
}
