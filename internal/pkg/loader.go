package pkg

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCacheSize is the number of downloaded documents a Loader keeps.
	DefaultCacheSize = 32

	maxParallelDownloads = 4
)

// Loader downloads documents and remembers them, so a source named twice in one run is only
// fetched once. Stdin is never cached.
type Loader struct {
	opts     DocumentOptions
	cache    *lru.Cache[string, []byte]
	download func(ctx context.Context, source string, opts DocumentOptions) ([]byte, error)
}

// NewLoader creates a Loader caching up to cacheSize documents. cacheSize <= 0 uses
// DefaultCacheSize.
func NewLoader(opts DocumentOptions, cacheSize int) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Loader{
		opts:     opts.withDefaults(),
		cache:    cache,
		download: DownloadDocument,
	}, nil
}

func (l *Loader) cacheKey(source string) string {
	return fmt.Sprintf("%s@%s:%s", source, l.opts.Ref, l.opts.Path)
}

// Load returns the bytes of one document.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	if source == "-" {
		return l.download(ctx, source, l.opts)
	}

	key := l.cacheKey(source)
	if body, ok := l.cache.Get(key); ok {
		logging.V(7).Infof("document cache hit for %s", key)
		return body, nil
	}

	body, err := l.download(ctx, source, l.opts)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, body)
	return body, nil
}

// LoadAll downloads every source concurrently. The result is in source order. If any source
// fails, the error lists every failure and the slots of failed sources are nil. Stdin is read
// once, however often "-" is named.
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([][]byte, error) {
	bodies := make([][]byte, len(sources))
	errs := make([]error, len(sources))
	readStdin := sync.OnceValues(func() ([]byte, error) {
		return l.Load(ctx, "-")
	})

	var g errgroup.Group
	g.SetLimit(maxParallelDownloads)
	for i, source := range sources {
		g.Go(func() error {
			load := l.Load
			if source == "-" {
				load = func(context.Context, string) ([]byte, error) { return readStdin() }
			}
			body, err := load(ctx, source)
			if err != nil {
				errs[i] = fmt.Errorf("load %s: %w", source, err)
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return bodies, merr.ErrorOrNil()
}
