package asset

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/assets"
	"github.com/Faultbox/warg/internal/logger"
)

// Cache parses each asset path at most once.
type Cache struct {
	importer Importer
	scenes   map[string]*Scene
	mu       sync.Mutex

	hits   int
	misses int
	log    *zap.Logger
}

// NewCache creates a parse cache in front of importer.
func NewCache(importer Importer) *Cache {
	return &Cache{
		importer: importer,
		scenes:   make(map[string]*Scene),
		log:      logger.Named("asset"),
	}
}

// Load returns the parsed scene for path, importing it on first use.
// Every imported scene is checked with Validate whatever importer produced
// it. Failed imports are not cached.
func (c *Cache) Load(path string, flags Flags) (*Scene, error) {
	key := assets.NormalizePath(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scenes[key]; ok {
		c.hits++
		return s, nil
	}
	c.misses++

	s, err := c.importer.Import(key, flags)
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	c.log.Info("parsed asset from disk",
		zap.String("path", key),
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("materials", len(s.Materials)),
		zap.Int("nodes", s.NodeCount()),
	)
	c.scenes[key] = s
	return s, nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached scenes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scenes)
}

// Clear drops all parsed scenes.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes = make(map[string]*Scene)
	c.hits = 0
	c.misses = 0
}
