// Package store provides SQLite-backed persistence for crate digests and
// inverted search indexes, replacing the distilled design's flat-file
// mtime-gated persistence with a WAL-mode database shared by every tracked
// crate.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rustdocmcp/internal/digest"
	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/search"
)

// Store is a SQLite-backed store for per-crate digests and search indexes.
type Store struct {
	mu sync.RWMutex

	db     *sql.DB
	dbPath string
}

// Open opens (creating if necessary) the SQLite database at dbPath in
// WAL mode and ensures its schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS crate_digests (
			crate_name TEXT PRIMARY KEY,
			rustc_version_hash INTEGER NOT NULL,
			variant_kind TEXT NOT NULL,
			manifest_hash INTEGER,
			source_hash INTEGER,
			features TEXT,
			version TEXT,
			checksum TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create crate_digests table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS crate_indexes (
			crate_name TEXT PRIMARY KEY,
			terms TEXT NOT NULL,
			ids TEXT NOT NULL,
			artifact_mtime INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create crate_indexes table: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDigest persists or replaces a crate's digest.
func (s *Store) SaveDigest(crateName string, d digest.CrateDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	featuresJSON, err := json.Marshal(d.Variant.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	var checksum string
	if d.Variant.Kind == digest.VariantDependency {
		checksum = d.Variant.Checksum.AsHex()
	}

	_, err = s.db.Exec(`
		INSERT INTO crate_digests (
			crate_name, rustc_version_hash, variant_kind,
			manifest_hash, source_hash, features, version, checksum
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(crate_name) DO UPDATE SET
			rustc_version_hash = excluded.rustc_version_hash,
			variant_kind = excluded.variant_kind,
			manifest_hash = excluded.manifest_hash,
			source_hash = excluded.source_hash,
			features = excluded.features,
			version = excluded.version,
			checksum = excluded.checksum,
			updated_at = CURRENT_TIMESTAMP
	`,
		crateName, d.RustcVersionHash, string(d.Variant.Kind),
		d.Variant.ManifestHash, d.Variant.SourceHash, string(featuresJSON),
		d.Variant.Version, checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to save digest for %s: %w", crateName, err)
	}

	logging.Get(logging.CategoryCache).Debug("saved digest for %s (kind=%s)", crateName, d.Variant.Kind)
	return nil
}

// LoadDigest retrieves a crate's saved digest. Returns ok=false if no
// digest has been saved for this crate.
func (s *Store) LoadDigest(crateName string) (d digest.CrateDigest, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var variantKind, featuresJSON, version, checksum string
	var manifestHash, sourceHash sql.NullInt64

	row := s.db.QueryRow(`
		SELECT rustc_version_hash, variant_kind, manifest_hash, source_hash, features, version, checksum
		FROM crate_digests WHERE crate_name = ?
	`, crateName)

	err = row.Scan(&d.RustcVersionHash, &variantKind, &manifestHash, &sourceHash, &featuresJSON, &version, &checksum)
	if err == sql.ErrNoRows {
		return digest.CrateDigest{}, false, nil
	}
	if err != nil {
		return digest.CrateDigest{}, false, fmt.Errorf("failed to load digest for %s: %w", crateName, err)
	}

	d.Variant.Kind = digest.VariantKind(variantKind)
	d.Variant.ManifestHash = uint64(manifestHash.Int64)
	d.Variant.SourceHash = uint64(sourceHash.Int64)
	d.Variant.Version = version

	if featuresJSON != "" {
		_ = json.Unmarshal([]byte(featuresJSON), &d.Variant.Features)
	}
	if checksum != "" {
		parsed, parseErr := digest.ParseHash(checksum)
		if parseErr != nil {
			return digest.CrateDigest{}, false, fmt.Errorf("stored checksum for %s is corrupt: %w", crateName, parseErr)
		}
		d.Variant.Checksum = parsed
	}

	return d, true, nil
}

// indexSnapshot is the JSON-serializable form of a search.InvertedIndex.
type indexSnapshot struct {
	Terms map[uint64][]search.Posting `json:"terms"`
	IDs   [][]uint32                  `json:"ids"`
}

// SaveIndex persists or replaces a crate's inverted search index.
// artifactMtime records the modification time of the rustdoc JSON the index
// was built from, so a later LoadIndex can tell whether the source artifact
// has since been regenerated out from under a stale cached index.
func (s *Store) SaveIndex(crateName string, idx *search.InvertedIndex, artifactMtime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	termsJSON, err := json.Marshal(idx.Terms())
	if err != nil {
		return fmt.Errorf("failed to marshal index terms: %w", err)
	}
	idsJSON, err := json.Marshal(idx.IDs())
	if err != nil {
		return fmt.Errorf("failed to marshal index ids: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO crate_indexes (crate_name, terms, ids, artifact_mtime)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(crate_name) DO UPDATE SET
			terms = excluded.terms,
			ids = excluded.ids,
			artifact_mtime = excluded.artifact_mtime,
			updated_at = CURRENT_TIMESTAMP
	`, crateName, string(termsJSON), string(idsJSON), artifactMtime.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save index for %s: %w", crateName, err)
	}

	logging.Get(logging.CategoryCache).Debug(
		"saved index for %s (%d terms, %d docs)", crateName, idx.TermCount(), idx.DocumentCount())
	return nil
}

// LoadIndex retrieves a crate's saved search index along with the artifact
// mtime it was built against. Returns ok=false if no index has been saved
// for this crate.
func (s *Store) LoadIndex(crateName string) (idx *search.InvertedIndex, artifactMtime time.Time, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var termsJSON, idsJSON string
	var mtimeNanos int64
	row := s.db.QueryRow(`SELECT terms, ids, artifact_mtime FROM crate_indexes WHERE crate_name = ?`, crateName)
	err = row.Scan(&termsJSON, &idsJSON, &mtimeNanos)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to load index for %s: %w", crateName, err)
	}

	var terms map[uint64][]search.Posting
	if err := json.Unmarshal([]byte(termsJSON), &terms); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("stored index terms for %s are corrupt: %w", crateName, err)
	}
	var ids [][]uint32
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("stored index ids for %s are corrupt: %w", crateName, err)
	}

	return search.NewInvertedIndex(terms, ids), time.Unix(0, mtimeNanos), true, nil
}

// DeleteCrate removes all persisted state for a crate, used when a
// digest mismatch forces a full regeneration.
func (s *Store) DeleteCrate(crateName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM crate_digests WHERE crate_name = ?`, crateName); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM crate_indexes WHERE crate_name = ?`, crateName); err != nil {
		return err
	}
	return nil
}
