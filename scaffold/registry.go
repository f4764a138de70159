package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/kxue43/compact-react/jsonstream"
)

type (
	// versionSetter resolves one "LATEST" entry of a dependency map.
	versionSetter struct {
		deps map[string]string
		name string
	}
)

// Latest marks a dependency whose version is looked up on the NPM registry.
const Latest = "LATEST"

const latestDistTag = ".dist-tags.latest"

var npmURLPrefix = "https://registry.npmjs.org"

// NPMPackageLatestVersion returns the version the "latest" dist-tag of the package points at.
// Only the dist-tags member of the packument is decoded.
func NPMPackageLatestVersion(ctx context.Context, name string) (string, error) {
	packument := fmt.Sprintf("%s/%s", npmURLPrefix, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, packument, nil)
	if err != nil {
		return "", fmt.Errorf("invalid packument URL %s: %w", packument, err)
	}

	// the abbreviated packument is enough and much smaller
	req.Header.Set("Accept", "application/vnd.npm.install-v1+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to GET %q: %w", packument, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %q answered with status code %d", packument, resp.StatusCode)
	}

	angler, err := jsonstream.NewAngler(resp.Body, latestDistTag)
	if err != nil {
		return "", err
	}

	version, err := angler.LandString(ctx)
	if err != nil {
		return "", fmt.Errorf("no %s in the packument of %s: %w", latestDistTag, name, err)
	}

	return version, nil
}

func (vs versionSetter) resolve(ctx context.Context) (string, error) {
	v, err := NPMPackageLatestVersion(ctx, vs.name)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch the latest version of %s from NPM: %w", ErrRegistry, vs.name, err)
	}

	v = strings.TrimPrefix(v, "v")

	if !semver.IsValid("v" + v) {
		return "", fmt.Errorf("%w: NPM returned %q for %s, which is not a semantic version", ErrRegistry, v, vs.name)
	}

	return "^" + v, nil
}

func getVersionSetters(bundles ...*Bundle) []versionSetter {
	var vss []versionSetter

	for _, b := range bundles {
		for _, deps := range []map[string]string{b.Dependencies, b.DevDependencies} {
			for name, v := range deps {
				if strings.EqualFold(v, Latest) {
					vss = append(vss, versionSetter{deps: deps, name: name})
				}
			}
		}
	}

	return vss
}

// ResolveLatest replaces every "LATEST" dependency version in cfg with a caret range on the current NPM release.
// Non-nil returned error wraps [ErrRegistry].
func ResolveLatest(ctx context.Context, cfg *Config) error {
	vss := getVersionSetters(&cfg.TypeScript, &cfg.GraphQL)
	if len(vss) == 0 {
		return nil
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, 5)
	versions := make([]string, len(vss))
	errs := make([]error, len(vss))

	for i, vs := range vss {
		wg.Add(1)

		go func() {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			versions[i], errs[i] = vs.resolve(ctx)
		}()
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	for i, vs := range vss {
		vs.deps[vs.name] = versions[i]
	}

	return nil
}
