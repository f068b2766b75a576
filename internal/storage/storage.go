// Package storage persists bot state in a JSON-backed datastore: command
// definition hashes used to skip redundant syncs, and a short invocation
// history per guild.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"

	"github.com/keshon/dtscommands/internal/core"
)

const historyLimit = 20

// Storage wraps a datastore.DataStore. Values are stored as plain JSON
// documents under prefixed keys.
type Storage struct {
	ds *datastore.DataStore
	// serializes read-modify-write cycles
	mu sync.Mutex
}

// Invocation is one launched handler as kept in the history.
type Invocation struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Datetime  time.Time `json:"datetime"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("open datastore %s: %w", filePath, err)
	}
	return &Storage{ds: ds}, nil
}

// Close flushes the datastore to disk.
func (s *Storage) Close() error {
	return s.ds.Close()
}

func commandsKey(scope string) string { return "commands:" + scope }

func historyKey(guildID string) string {
	if guildID == "" {
		guildID = "dm"
	}
	return "history:" + guildID
}

// load decodes the value under key into out. Values read back from disk are
// generic maps, so everything goes through a JSON round trip.
func (s *Storage) load(key string, out any) (bool, error) {
	raw, ok := s.ds.Get(key)
	if !ok {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("error marshalling %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("error unmarshalling %s: %w", key, err)
	}
	return true, nil
}

// CommandHashes returns the stored definition hashes for a sync scope
// ("global" or a guild ID), keyed by command name.
func (s *Storage) CommandHashes(scope string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := map[string]string{}
	if _, err := s.load(commandsKey(scope), &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}

// SetCommandHashes replaces the stored hashes of a sync scope.
func (s *Storage) SetCommandHashes(scope string, hashes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]string, len(hashes))
	for k, v := range hashes {
		cp[k] = v
	}
	s.ds.Add(commandsKey(scope), cp)
}

// RecordInvocation appends to the guild's history, keeping the newest entries.
func (s *Storage) RecordInvocation(rec core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []Invocation
	if _, err := s.load(historyKey(rec.GuildID), &list); err != nil {
		return err
	}
	list = append(list, Invocation{
		Kind:      rec.Kind.String(),
		Action:    rec.Action,
		ChannelID: rec.ChannelID,
		UserID:    rec.UserID,
		Datetime:  rec.At,
	})
	if len(list) > historyLimit {
		list = list[len(list)-historyLimit:]
	}
	s.ds.Add(historyKey(rec.GuildID), list)
	return nil
}

// Invocations returns the guild's history, oldest first. An empty guildID
// reads the history of direct messages.
func (s *Storage) Invocations(guildID string) ([]Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []Invocation
	if _, err := s.load(historyKey(guildID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ClearInvocations drops the guild's history.
func (s *Storage) ClearInvocations(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds.Delete(historyKey(guildID))
}

var _ core.Recorder = (*Storage)(nil)
