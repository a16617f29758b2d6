package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/routine"
	"github.com/trezcool/ratiba/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	routineTable struct {
		mutex sync.RWMutex
		table map[string]*routine.Routine
	}

	DB struct {
		user    *userTable
		routine *routineTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		routine: &routineTable{table: make(map[string]*routine.Routine)},
	}
	return db, nil
}
