package app

import (
	"fmt"

	groupHTTP "github.com/allisson/studygroups/internal/group/http"
	groupMySQL "github.com/allisson/studygroups/internal/group/repository/mysql"
	groupPostgreSQL "github.com/allisson/studygroups/internal/group/repository/postgresql"
	groupUsecase "github.com/allisson/studygroups/internal/group/usecase"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// groupRepository is the full group store: the saga writes through it and the group
// use case reads and sweeps it.
type groupRepository interface {
	sagaUsecase.GroupStore
	groupUsecase.GroupRepository
}

var (
	_ groupRepository = (*groupPostgreSQL.GroupRepository)(nil)
	_ groupRepository = (*groupMySQL.GroupRepository)(nil)
)

// GroupRepository returns the group repository based on database driver.
func (c *Container) GroupRepository() (groupRepository, error) {
	var err error
	c.groupRepoInit.Do(func() {
		c.groupRepo, err = c.initGroupRepository()
		if err != nil {
			c.initErrors["groupRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["groupRepo"]; exists {
		return nil, storedErr
	}
	return c.groupRepo, nil
}

// GroupUseCase returns the group read use case.
func (c *Container) GroupUseCase() (groupUsecase.UseCase, error) {
	var err error
	c.groupUseCaseInit.Do(func() {
		c.groupUseCase, err = c.initGroupUseCase()
		if err != nil {
			c.initErrors["groupUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["groupUseCase"]; exists {
		return nil, storedErr
	}
	return c.groupUseCase, nil
}

// GroupHandler returns a new group HTTP handler.
func (c *Container) GroupHandler() (*groupHTTP.GroupHandler, error) {
	groupUseCase, err := c.GroupUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get group use case for group handler: %w", err)
	}

	createGroupUseCase, err := c.CreateGroupUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get create group use case for group handler: %w", err)
	}

	return groupHTTP.NewGroupHandler(groupUseCase, createGroupUseCase, c.Logger()), nil
}

func (c *Container) initGroupRepository() (groupRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for group repository: %w", err)
	}

	switch c.config.DBDriver {
	case driverMySQL:
		return groupMySQL.NewGroupRepository(db), nil
	case driverPostgres:
		return groupPostgreSQL.NewGroupRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initGroupUseCase() (groupUsecase.UseCase, error) {
	groupRepo, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for group use case: %w", err)
	}
	return groupUsecase.NewGroupUseCase(groupRepo), nil
}
