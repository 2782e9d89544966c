package registry

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/oneconcern/pkgreg/pkg/metrics"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/storage"
	"go.uber.org/zap"
)

// Store is a registry of versioned packages
type Store struct {
	store       storage.Store
	l           *zap.Logger
	metrics     *metrics.Metrics
	cacheSize   int
	cache       *lru.Cache
	limits      model.Limits
	concurrency int
	now         func() time.Time

	// publications serializes version assignment
	publications sync.Mutex
}

type cacheKey struct {
	packageName string
	version     uint
}

// New registry on top of a blob store
func New(store storage.Store, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("a registry requires a storage backend")
	}

	s := &Store{
		store:       store,
		l:           zap.NewNop(),
		cacheSize:   defaultCacheSize,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, apply := range opts {
		apply(s)
	}

	if s.cacheSize > 0 {
		cache, err := lru.New(s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating manifests cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Store) String() string {
	return "registry@" + s.store.String()
}

// Storage exposes the underlying blob store
func (s *Store) Storage() storage.Store {
	return s.store
}

func (s *Store) cached(packageName string, version uint) (*model.Manifest, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(cacheKey{packageName: packageName, version: version})
	if !ok {
		return nil, false
	}
	return v.(*model.Manifest), true
}

func (s *Store) remember(manifest *model.Manifest) {
	if s.cache == nil {
		return
	}
	s.cache.Add(cacheKey{packageName: manifest.PackageName, version: manifest.PackageVersion}, manifest)
}
