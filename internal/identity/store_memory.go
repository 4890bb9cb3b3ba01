package identity

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

// In-memory stores keep the default deployment and the tests lightweight.
// They intentionally favor clarity over performance.

type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]Account
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[id.UserID]Account)}
}

func (s *InMemoryAccountStore) Save(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return sentinel.ErrConflict
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *InMemoryAccountStore) Update(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.accounts {
		if existing.ID != account.ID && strings.EqualFold(existing.Email, account.Email) {
			return sentinel.ErrConflict
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, accountID id.UserID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[accountID]; ok {
		return account, nil
	}
	return Account{}, sentinel.ErrNotFound
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return Account{}, sentinel.ErrNotFound
}

func (s *InMemoryAccountStore) Delete(_ context.Context, accountID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.accounts, accountID)
	return nil
}

type InMemoryCitizenStore struct {
	mu       sync.RWMutex
	citizens map[id.CitizenID]Citizen
}

func NewInMemoryCitizenStore() *InMemoryCitizenStore {
	return &InMemoryCitizenStore{citizens: make(map[id.CitizenID]Citizen)}
}

func (s *InMemoryCitizenStore) Save(_ context.Context, citizen Citizen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.citizens {
		if existing.PESEL == citizen.PESEL {
			return sentinel.ErrConflict
		}
	}
	s.citizens[citizen.ID] = citizen
	return nil
}

func (s *InMemoryCitizenStore) Update(_ context.Context, citizen Citizen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.citizens[citizen.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.citizens {
		if existing.ID != citizen.ID && existing.PESEL == citizen.PESEL {
			return sentinel.ErrConflict
		}
	}
	s.citizens[citizen.ID] = citizen
	return nil
}

func (s *InMemoryCitizenStore) FindByID(_ context.Context, citizenID id.CitizenID) (Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if citizen, ok := s.citizens[citizenID]; ok {
		return citizen, nil
	}
	return Citizen{}, sentinel.ErrNotFound
}

func (s *InMemoryCitizenStore) FindByAccount(_ context.Context, accountID id.UserID) (Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, citizen := range s.citizens {
		if citizen.AccountID == accountID {
			return citizen, nil
		}
	}
	return Citizen{}, sentinel.ErrNotFound
}

func (s *InMemoryCitizenStore) FindByPESEL(_ context.Context, pesel string) (Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, citizen := range s.citizens {
		if citizen.PESEL == pesel {
			return citizen, nil
		}
	}
	return Citizen{}, sentinel.ErrNotFound
}

func (s *InMemoryCitizenStore) List(_ context.Context) ([]Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	citizens := make([]Citizen, 0, len(s.citizens))
	for _, citizen := range s.citizens {
		citizens = append(citizens, citizen)
	}
	sort.Slice(citizens, func(i, j int) bool {
		return citizens[i].PESEL < citizens[j].PESEL
	})
	return citizens, nil
}

func (s *InMemoryCitizenStore) Delete(_ context.Context, citizenID id.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.citizens[citizenID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.citizens, citizenID)
	return nil
}

type InMemoryOfficialStore struct {
	mu        sync.RWMutex
	officials map[id.OfficialID]Official
}

func NewInMemoryOfficialStore() *InMemoryOfficialStore {
	return &InMemoryOfficialStore{officials: make(map[id.OfficialID]Official)}
}

func (s *InMemoryOfficialStore) Save(_ context.Context, official Official) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.officials[official.ID] = official
	return nil
}

func (s *InMemoryOfficialStore) Update(_ context.Context, official Official) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officials[official.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.officials[official.ID] = official
	return nil
}

func (s *InMemoryOfficialStore) FindByID(_ context.Context, officialID id.OfficialID) (Official, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if official, ok := s.officials[officialID]; ok {
		return official, nil
	}
	return Official{}, sentinel.ErrNotFound
}

func (s *InMemoryOfficialStore) FindByAccount(_ context.Context, accountID id.UserID) (Official, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, official := range s.officials {
		if official.AccountID == accountID {
			return official, nil
		}
	}
	return Official{}, sentinel.ErrNotFound
}

func (s *InMemoryOfficialStore) List(_ context.Context) ([]Official, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	officials := make([]Official, 0, len(s.officials))
	for _, official := range s.officials {
		officials = append(officials, official)
	}
	sort.Slice(officials, func(i, j int) bool {
		return officials[i].LastName < officials[j].LastName
	})
	return officials, nil
}

func (s *InMemoryOfficialStore) Delete(_ context.Context, officialID id.OfficialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officials[officialID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.officials, officialID)
	return nil
}
