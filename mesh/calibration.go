package mesh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DefaultPoseCachePath is the default path for the computed pose cache
const DefaultPoseCachePath = ".pose-cache.json"

// PoseCache stores solved poses for one scanner report so a rerun on the
// same input can skip the pairwise search.
type PoseCache struct {
	InputDigest string `json:"inputDigest"`
	Root        int    `json:"root"`
	MinOverlap  int    `json:"minOverlap"`
	Poses       []Pose `json:"poses"`
	LastUpdated int64  `json:"lastUpdated"`
}

// InputDigest returns a SHA-256 over the canonical text of scanners.
func InputDigest(scanners []Scanner) string {
	h := sha256.New()
	// hash.Hash writes never fail
	_ = FormatScanners(h, scanners)
	return hex.EncodeToString(h.Sum(nil))
}

// LoadPoseCache loads cached poses from a JSON file. A missing file is not
// an error and returns nil.
func LoadPoseCache(path string) (*PoseCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pose cache: %w", err)
	}

	var cache PoseCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing pose cache: %w", err)
	}
	return &cache, nil
}

// SavePoseCache writes cached poses to a JSON file
func SavePoseCache(path string, cache *PoseCache) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating pose cache directory: %w", err)
	}

	cache.LastUpdated = time.Now().Unix()

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pose cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing pose cache: %w", err)
	}
	return nil
}

// NewPoseCache captures the poses of an alignment
func NewPoseCache(al *Alignment) *PoseCache {
	return &PoseCache{
		InputDigest: InputDigest(al.Scanners),
		Root:        al.Root,
		MinOverlap:  al.MinOverlap,
		Poses:       append([]Pose(nil), al.Poses...),
		LastUpdated: time.Now().Unix(),
	}
}

// Matches reports whether the cache was computed for these scanners with
// the same root and overlap threshold.
func (c *PoseCache) Matches(scanners []Scanner, root, minOverlap int) bool {
	if c == nil || len(c.Poses) != len(scanners) {
		return false
	}
	if c.Root != root || c.MinOverlap != minOverlap {
		return false
	}
	for i, p := range c.Poses {
		if p.ScannerID != i || !p.Transform.Rotation.IsProper() {
			return false
		}
	}
	return c.InputDigest == InputDigest(scanners)
}

// NeedsRefresh checks if the cache is older than maxAge
func (c *PoseCache) NeedsRefresh(maxAge time.Duration) bool {
	if c == nil || c.LastUpdated == 0 {
		return true
	}
	return time.Since(time.Unix(c.LastUpdated, 0)) > maxAge
}

// AlignWithCache reuses the poses stored at cachePath when they match the
// input and are younger than CacheMaxAge (when set), and otherwise runs
// Align and rewrites the cache. Candidate pairs
// and edges are not cached and stay empty on a cache hit.
func (a *Aligner) AlignWithCache(ctx context.Context, scanners []Scanner, cachePath string) (*Alignment, bool, error) {
	cache, err := LoadPoseCache(cachePath)
	if err != nil {
		log.Printf("[ALIGN] ignoring unreadable pose cache %s: %v", cachePath, err)
		cache = nil
	}
	if a.CacheMaxAge > 0 && cache != nil && cache.NeedsRefresh(a.CacheMaxAge) {
		log.Printf("[ALIGN] pose cache %s is older than %v, recomputing", cachePath, a.CacheMaxAge)
		cache = nil
	}
	if cache.Matches(scanners, a.Root, a.MinOverlap) {
		log.Printf("[ALIGN] reusing %d cached poses from %s", len(cache.Poses), cachePath)
		return &Alignment{
			Root:       a.Root,
			MinOverlap: a.MinOverlap,
			Scanners:   scanners,
			Poses:      cache.Poses,
		}, true, nil
	}

	al, err := a.Align(ctx, scanners)
	if err != nil {
		return nil, false, err
	}
	if err := SavePoseCache(cachePath, NewPoseCache(al)); err != nil {
		return al, false, fmt.Errorf("saving pose cache: %w", err)
	}
	return al, false, nil
}
