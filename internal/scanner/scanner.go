package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wiredhikari/eix/internal/cache"
	"github.com/wiredhikari/eix/internal/keywords"
	"github.com/wiredhikari/eix/internal/mask"
	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/version"
)

const ebuildSuffix = ".ebuild"

// Options configures a scan. Trees[0] is the primary tree; a tree's ID is
// stamped on every version found in it.
type Options struct {
	Trees          []models.Overlay
	CacheDir       string
	Reader         cache.Reader
	Arch           string
	AcceptKeywords []string
	Masks          *mask.Set
	Workers        int
}

// Stats counts version outcomes of one scan
type Stats struct {
	Packages       int
	Versions       int
	Malformed      int
	CacheErrors    int
	MetadataErrors int
}

func (s *Stats) add(o Stats) {
	s.Packages += o.Packages
	s.Versions += o.Versions
	s.Malformed += o.Malformed
	s.CacheErrors += o.CacheErrors
	s.MetadataErrors += o.MetadataErrors
}

// Result is a finished index and how it was built
type Result struct {
	Index    *models.Index
	Stats    Stats
	Duration time.Duration
}

// Scanner walks package trees and builds an index
type Scanner struct {
	opts   Options
	logger *slog.Logger
}

// location is one package directory in one tree
type location struct {
	tree     models.Overlay
	category string
	name     string
	dir      string
}

// New creates a scanner
func New(opts Options, logger *slog.Logger) (*Scanner, error) {
	if len(opts.Trees) == 0 {
		return nil, fmt.Errorf("no trees to scan")
	}
	if opts.Reader == nil {
		return nil, fmt.Errorf("no cache reader")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scanner{opts: opts, logger: logger}, nil
}

// Scan enumerates every tree, then builds one package per category/name on
// a bounded worker group. Cancelling ctx abandons the scan.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	groups, err := s.enumerate()
	if err != nil {
		return nil, err
	}

	packages := make([]*models.Package, len(groups))
	stats := make([]Stats, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, locs := range groups {
		i, locs := i, locs
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			packages[i], stats[i] = s.buildPackage(locs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	idx := models.NewIndex(s.opts.Trees)
	idx.CreatedAt = time.Now().UTC()
	var total Stats
	for i, p := range packages {
		total.add(stats[i])
		if p.Len() > 0 {
			idx.Add(p)
		}
	}
	total.Packages = idx.Len()

	elapsed := time.Since(start)
	scanDuration.Observe(elapsed.Seconds())
	scanPackages.Set(float64(total.Packages))

	s.logger.Info("Scan completed",
		"trees", len(s.opts.Trees),
		"packages", total.Packages,
		"versions", total.Versions,
		"malformed", total.Malformed,
		"cache_errors", total.CacheErrors,
		"metadata_errors", total.MetadataErrors,
		"duration_ms", elapsed.Milliseconds())
	return &Result{Index: idx, Stats: total, Duration: elapsed}, nil
}

// enumerate groups the package directories of all trees by full name, in
// sorted order so the group order is stable.
func (s *Scanner) enumerate() ([][]location, error) {
	byName := make(map[string][]location)
	for _, tree := range s.opts.Trees {
		if _, err := os.Stat(tree.Path); err != nil {
			return nil, fmt.Errorf("cannot read tree %s: %w", tree.Path, err)
		}
		categories, err := Categories(tree.Path)
		if err != nil {
			return nil, err
		}
		for _, category := range categories {
			entries, err := os.ReadDir(filepath.Join(tree.Path, category))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("cannot read category %s in %s: %w", category, tree.Path, err)
			}
			for _, e := range entries {
				if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
					continue
				}
				full := category + "/" + e.Name()
				byName[full] = append(byName[full], location{
					tree:     tree,
					category: category,
					name:     e.Name(),
					dir:      filepath.Join(tree.Path, category, e.Name()),
				})
			}
		}
		s.logger.Debug("Tree enumerated", "tree", tree.Path, "overlay", tree.ID, "categories", len(categories))
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	groups := make([][]location, len(names))
	for i, n := range names {
		groups[i] = byName[n]
	}
	return groups, nil
}

// buildPackage runs on a worker and owns the package it returns
func (s *Scanner) buildPackage(locs []location) (*models.Package, Stats) {
	var st Stats
	p := models.NewPackage(locs[0].category, locs[0].name)
	for _, loc := range locs {
		entries, err := os.ReadDir(loc.dir)
		if err != nil {
			s.logger.Warn("Cannot read package directory", "dir", loc.dir, "error", err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ebuildSuffix) {
				continue
			}
			if v := s.buildVersion(loc, e.Name(), &st); v != nil {
				p.Insert(v)
			}
		}
	}
	return p, st
}

// buildVersion returns nil when the version has to be skipped
func (s *Scanner) buildVersion(loc location, file string, st *Stats) *models.Version {
	pv := strings.TrimSuffix(file, ebuildSuffix)
	text, ok := strings.CutPrefix(pv, loc.name+"-")
	if !ok {
		s.skip(st, ResultMalformed, loc, pv, fmt.Errorf("file name does not start with %s-", loc.name))
		return nil
	}
	key, err := version.Parse(text)
	if err != nil {
		s.skip(st, ResultMalformed, loc, pv, err)
		return nil
	}

	path := filepath.Join(loc.tree.Path, s.opts.CacheDir, loc.category, pv)
	slot, kw, err := s.opts.Reader.ReadSlotAndKeywords(path)
	if err != nil {
		s.skip(st, ResultCacheError, loc, pv, err)
		return nil
	}

	v := models.NewVersion(key.WithOverlay(loc.tree.ID))
	v.Slot = slot
	v.Keywords = kw
	if err := s.opts.Reader.ReadMetadata(path, v); err != nil {
		st.MetadataErrors++
		scanVersionsTotal.WithLabelValues(ResultMetadataError).Inc()
		s.logger.Warn("Metadata read failed, keeping fields read so far",
			"package", loc.category+"/"+pv,
			"overlay", loc.tree.ID,
			"error", err)
	}

	v.Stability = keywords.Evaluate(kw, s.opts.Arch, s.opts.AcceptKeywords)
	v.HardMasked = s.opts.Masks.IsHardMasked(loc.category, loc.name, v.Key, slot)
	v.System = s.opts.Masks.IsSystem(loc.category, loc.name, v.Key, slot)

	st.Versions++
	scanVersionsTotal.WithLabelValues(ResultIndexed).Inc()
	return v
}

func (s *Scanner) skip(st *Stats, result string, loc location, pv string, err error) {
	switch result {
	case ResultMalformed:
		st.Malformed++
	case ResultCacheError:
		st.CacheErrors++
	}
	scanVersionsTotal.WithLabelValues(result).Inc()
	s.logger.Warn("Skipping version",
		"package", loc.category+"/"+pv,
		"overlay", loc.tree.ID,
		"result", result,
		"error", err)
}

// Categories lists the categories of a tree: profiles/categories when it
// exists, otherwise every directory named like a category.
func Categories(tree string) ([]string, error) {
	f, err := os.Open(filepath.Join(tree, "profiles", "categories"))
	if err == nil {
		defer f.Close()
		var out []string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("cannot read categories of %s: %w", tree, err)
		}
		return out, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot read categories of %s: %w", tree, err)
	}

	entries, err := os.ReadDir(tree)
	if err != nil {
		return nil, fmt.Errorf("cannot read tree %s: %w", tree, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && (strings.Contains(e.Name(), "-") || e.Name() == "virtual") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
