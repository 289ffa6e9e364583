package redis

import (
	"sort"

	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
)

// Storage bundles the redis DAOs behind the persistence.Storage interface.
type Storage struct {
	workflows *redisWorkflowDao
	logs      *redisLogDao
	mappings  *redisMappingDao
}

var _ persistence.Storage = new(Storage)

func NewStorage(conf Config) *Storage {
	return &Storage{
		workflows: NewRedisWorkflowDao(conf),
		logs:      NewRedisLogDao(conf),
		mappings:  NewRedisMappingDao(conf),
	}
}

func (s *Storage) Workflows() persistence.WorkflowStorage { return s.workflows }
func (s *Storage) Logs() persistence.LogStorage           { return s.logs }
func (s *Storage) Mappings() persistence.MappingStorage   { return s.mappings }

func sortByCreation(wfs []model.Workflow) {
	sort.SliceStable(wfs, func(i, j int) bool {
		if wfs[i].CreatedAt.Equal(wfs[j].CreatedAt) {
			return wfs[i].Id < wfs[j].Id
		}
		return wfs[i].CreatedAt.Before(wfs[j].CreatedAt)
	})
}
