package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	ClassifierEnabled   bool                   `json:"classifier_enabled"`
	Warnings            map[string]int         `json:"warnings"` // key = userID
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
			Warnings:            map[string]int{},
		}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling data: %w", err)
	}
	if record.Warnings == nil {
		record.Warnings = map[string]int{}
	}
	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *Record) {
	s.ds.Add(guildID, record)
}

// SetCommand appends a command execution to the guild's bounded history.
func (s *Storage) SetCommand(guildID, channelID, channelName, guildName, userID, username, command string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, CommandHistoryRecord{
		ChannelID:   channelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      userID,
		Username:    username,
		Command:     command,
		Datetime:    time.Now(),
	})

	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	s.saveGuildRecord(guildID, record)
	return nil
}

// CommandHistory returns the recorded command executions for a guild.
func (s *Storage) CommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}

// SetClassifierEnabled toggles the message classifier for a guild.
func (s *Storage) SetClassifierEnabled(guildID string, enabled bool) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.ClassifierEnabled = enabled
	s.saveGuildRecord(guildID, record)
	return nil
}

// ClassifierEnabled reports whether the message classifier is on for a guild.
func (s *Storage) ClassifierEnabled(guildID string) (bool, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return false, err
	}
	return record.ClassifierEnabled, nil
}

// AddWarning increments a member's warning count and returns the new count.
func (s *Storage) AddWarning(guildID, userID string) (int, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return 0, err
	}
	record.Warnings[userID]++
	count := record.Warnings[userID]
	s.saveGuildRecord(guildID, record)
	return count, nil
}

// Warnings returns a copy of the guild's warning counts keyed by user ID.
func (s *Storage) Warnings(guildID string) (map[string]int, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(record.Warnings))
	for id, n := range record.Warnings {
		out[id] = n
	}
	return out, nil
}
