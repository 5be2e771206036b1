package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tastebud-labs/recipedex/internal/db"
)

// CreateIndex issues FT.CREATE for a hash-backed HNSW vector index with the
// given tag and numeric payload fields. Creating an existing index is a no-op.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def.Name == "" || def.Prefix == "" {
		return fmt.Errorf("index name and prefix are required")
	}
	if def.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}

	m := def.HNSWM
	if m <= 0 {
		m = 32
	}
	ef := def.HNSWEFConstruct
	if ef <= 0 {
		ef = 400
	}

	args := []string{
		def.Name,
		"ON", "HASH",
		"PREFIX", "1", def.Prefix,
		"SCHEMA",
		"vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(def.Dimensions),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(m),
		"EF_CONSTRUCTION", strconv.Itoa(ef),
	}
	for _, f := range def.TagFields {
		args = append(args, f, "TAG")
	}
	for _, f := range def.NumericFields {
		args = append(args, f, "NUMERIC")
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// IndexExists probes the index via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndex, Err: err}
	}
	return true, nil
}
