package dummydb

import (
	"sync"

	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
)

type (
	DB struct {
		user       *userTable
		invitation *invitationTable
		student    *studentTable
		schoolID   *schoolIDTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}

	invitationTable struct {
		sync.RWMutex
		table map[int]*user.AdminInvitation
	}

	studentTable struct {
		sync.RWMutex
		table map[int]*student.Student
	}

	schoolIDTable struct {
		sync.RWMutex
		table map[int]*student.SchoolID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		invitation: &invitationTable{table: make(map[int]*user.AdminInvitation)},
		student:    &studentTable{table: make(map[int]*student.Student)},
		schoolID:   &schoolIDTable{table: make(map[int]*student.SchoolID)},
	}
	return db, nil
}
