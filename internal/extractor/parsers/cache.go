package parsers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// DefaultCacheCapacity is the number of parsed files kept by a CachingParser.
const DefaultCacheCapacity = 4096

type cachedFile struct {
	hash string
	file *syntax.File
}

// CachingParser wraps a SourceParser and reuses the parse result of a file
// as long as its content hash is unchanged. Parsed files are shared between
// callers and must be treated as read-only.
type CachingParser struct {
	next  SourceParser
	cache otter.Cache[string, cachedFile]
	hits  atomic.Int64
}

// NewCachingParser creates a caching parser holding up to capacity files.
func NewCachingParser(next SourceParser, capacity int) (*CachingParser, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	cache, err := otter.MustBuilder[string, cachedFile](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}

	return &CachingParser{
		next:  next,
		cache: cache,
	}, nil
}

// ParseFile returns the cached parse of filePath when its content has not changed.
func (p *CachingParser) ParseFile(ctx context.Context, filePath string) (*syntax.File, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	hash := hex.EncodeToString(sum[:])

	if cached, ok := p.cache.Get(filePath); ok && cached.hash == hash {
		p.hits.Add(1)
		return cached.file, nil
	}

	file, err := p.next.ParseSource(ctx, filePath, source)
	if err != nil {
		return nil, err
	}

	p.cache.Set(filePath, cachedFile{hash: hash, file: file})
	return file, nil
}

// Invalidate drops the cached parse of a file.
func (p *CachingParser) Invalidate(filePath string) {
	p.cache.Delete(filePath)
}

// Hits returns how many parses were served from the cache. Entries whose
// content changed are re-parsed and do not count.
func (p *CachingParser) Hits() int64 {
	return p.hits.Load()
}

// Close releases the cache.
func (p *CachingParser) Close() {
	p.cache.Close()
}
