package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Last activity timestamps by user id, in milliseconds since the epoch
type Records map[string]int64

// Store owns the last-activity mapping and its flat file on disk.
// Every update rewrites the whole file before returning, so the mapping
// in memory and the one on disk never diverge across a crash.
// Entries are never deleted; the mapping grows with the guild
type Store struct {
	mu       sync.Mutex
	filename string
	records  Records
}

func NewStore(filename string) *Store {
	return &Store{filename: filename, records: Records{}}
}

// Read the mapping from disk. A missing file is created empty right away.
// A file that cannot be read or parsed is logged and replaced with an
// empty mapping, so a broken record never takes the bot down
func (store *Store) Load() {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Msg(fmt.Sprintf("No activity file found at %s, creating a new one", store.filename))
		} else {
			log.Error().Msg(fmt.Sprintf("Could not read activity file %s, resetting to empty: %s", store.filename, err))
		}
		store.persist()
		return
	}

	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		log.Error().Msg(fmt.Sprintf("Activity file %s is corrupt, resetting to empty: %s", store.filename, err))
		store.persist()
		return
	}

	store.records = records
	log.Info().Msg(fmt.Sprintf("Loaded activity for %d users", len(records)))
}

// Overwrite the last activity of a user and save the whole mapping
func (store *Store) Record(userid string, t time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()

	log.Debug().Msg(fmt.Sprintf("Updating activity for user %s", userid))
	store.records[userid] = t.UnixMilli()
	store.persist()
}

// The last recorded activity of a user.
// Users never seen get the epoch, so they count as inactive since forever
func (store *Store) LastSeen(userid string) time.Time {
	store.mu.Lock()
	defer store.mu.Unlock()

	return time.UnixMilli(store.records[userid])
}

func (store *Store) Count() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	return len(store.records)
}

// Write the mapping to disk, pretty printed. The write goes through a
// temporary file and a rename so a crash cannot leave a half-written file.
// A failed write is logged and accepted; the in-memory mapping stays
// authoritative. Callers must hold the mutex
func (store *Store) persist() {
	data, err := json.MarshalIndent(store.records, "", "  ")
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not encode activity records: %s", err))
		return
	}

	dir := filepath.Dir(store.filename)
	base := filepath.Base(store.filename)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not create temporary activity file: %s", err))
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Error().Msg(fmt.Sprintf("Could not write activity file: %s", err))
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		log.Error().Msg(fmt.Sprintf("Could not close activity file: %s", err))
		return
	}
	if err := os.Rename(tmpName, store.filename); err != nil {
		os.Remove(tmpName)
		log.Error().Msg(fmt.Sprintf("Could not replace activity file: %s", err))
		return
	}
	log.Debug().Msg(fmt.Sprintf("Activity file updated with %d users", len(store.records)))
}
