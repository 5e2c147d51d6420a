package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// Store persists the device state: app-group defaults, pending notification
// requests, the authorization decision and registered categories.
type Store struct {
	mu       sync.RWMutex
	saveMu   sync.Mutex // serializes snapshot + write
	filePath string
	Data     *model.AppSchema
}

func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
		Data:     emptySchema(),
	}
}

func emptySchema() *model.AppSchema {
	return &model.AppSchema{
		Authorization: model.StatusNotDetermined,
		Suites:        map[string]model.Defaults{},
		Notifications: []*model.PendingNotification{},
	}
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.Data = emptySchema()
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.Data = emptySchema()
		return nil
	}

	loaded := emptySchema()
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	// Set defaults
	if loaded.Suites == nil {
		loaded.Suites = map[string]model.Defaults{}
	}
	if loaded.Notifications == nil {
		loaded.Notifications = []*model.PendingNotification{}
	}
	s.Data = loaded

	return nil
}

func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.Data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (s *Store) Integer(suite, key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.Data.Suites[suite]
	if !ok {
		return 0, false
	}
	v, ok := values[key]
	return v, ok
}

func (s *Store) SetInteger(suite, key string, value int) error {
	s.mu.Lock()
	values, ok := s.Data.Suites[suite]
	if !ok {
		values = model.Defaults{}
		s.Data.Suites[suite] = values
	}
	values[key] = value
	s.mu.Unlock()
	return s.Save()
}

func (s *Store) AddNotification(n *model.PendingNotification) error {
	s.mu.Lock()
	s.Data.Notifications = append(s.Data.Notifications, n)
	s.mu.Unlock()
	return s.Save()
}

// AddNotificationLimited appends n unless max requests are already pending.
// It reports whether n was added.
func (s *Store) AddNotificationLimited(n *model.PendingNotification, max int) (bool, error) {
	s.mu.Lock()
	if len(s.Data.Notifications) >= max {
		s.mu.Unlock()
		return false, nil
	}
	s.Data.Notifications = append(s.Data.Notifications, n)
	s.mu.Unlock()
	return true, s.Save()
}

// RemoveNotification drops a pending request. It reports whether the id was
// present.
func (s *Store) RemoveNotification(id string) (bool, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.Data.Notifications, func(n *model.PendingNotification) bool {
		return n.ID == id
	})
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.Data.Notifications = slices.Delete(s.Data.Notifications, idx, idx+1)
	s.mu.Unlock()
	return true, s.Save()
}

func (s *Store) RemoveAllNotifications() (int, error) {
	s.mu.Lock()
	n := len(s.Data.Notifications)
	s.Data.Notifications = []*model.PendingNotification{}
	s.mu.Unlock()
	return n, s.Save()
}

func (s *Store) GetPending() []*model.PendingNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.PendingNotification, len(s.Data.Notifications))
	copy(result, s.Data.Notifications)
	return result
}

func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Data.Notifications)
}

func (s *Store) GetAuthorization() model.AuthorizationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Data.Authorization
}

func (s *Store) UpdateAuthorization(status model.AuthorizationStatus) error {
	s.mu.Lock()
	s.Data.Authorization = status
	s.mu.Unlock()
	return s.Save()
}

func (s *Store) GetCategories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Data.Categories)
}

func (s *Store) UpdateCategories(categories []model.Category) error {
	s.mu.Lock()
	s.Data.Categories = slices.Clone(categories)
	s.mu.Unlock()
	return s.Save()
}
