package starnotify

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KnownSet holds the identity keys of stargazers that have already been
// processed. It only ever grows: identities are never removed, even if the
// star is later withdrawn.
type KnownSet map[string]struct{}

// Has reports whether key is in the set.
func (ks KnownSet) Has(key string) bool {
	_, ok := ks[key]
	return ok
}

// Add inserts key into the set.
func (ks KnownSet) Add(key string) {
	ks[key] = struct{}{}
}

// stateFile is the on-disk shape of the persisted state.
type stateFile struct {
	KnownStars []string `json:"known_stars"`
	LastCheck  string   `json:"last_check"`
}

// Store persists the known-set to a JSON file between runs.
type Store struct {
	// Path is the location of the state file.
	Path string

	log *zap.SugaredLogger
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, options ...func(*Store)) *Store {
	st := &Store{
		Path: path,
		log:  zap.NewNop().Sugar(),
	}
	for _, o := range options {
		o(st)
	}
	return st
}

// WithStoreLogger sets the *zap.SugaredLogger the store will use
// internally. Without it, a no-op log is used.
func WithStoreLogger(logger *zap.SugaredLogger) func(*Store) {
	return func(st *Store) {
		st.log = logger
	}
}

// Load reads the known-set from the state file. A missing or unreadable
// file means a first run: Load returns an empty set rather than an error.
func (st *Store) Load() KnownSet {
	known := make(KnownSet)
	data, err := os.ReadFile(st.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			st.log.Warnw("unable to read state file, starting fresh",
				"path", st.Path,
				"err", err.Error())
		}
		return known
	}
	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		st.log.Warnw("unable to parse state file, starting fresh",
			"path", st.Path,
			"err", err.Error())
		return known
	}
	for _, key := range sf.KnownStars {
		known.Add(key)
	}
	return known
}

// Save writes the full known-set and the last-check timestamp to the state
// file, replacing whatever was there. Keys are written sorted so the file
// is stable across runs.
func (st *Store) Save(known KnownSet, lastCheck time.Time) error {
	keys := make([]string, 0, len(known))
	for key := range known {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sf := stateFile{
		KnownStars: keys,
		LastCheck:  lastCheck.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}
	if err := os.WriteFile(st.Path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing state file %s", st.Path)
	}
	return nil
}
