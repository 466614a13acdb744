package dummydb

import (
	"sort"

	"github.com/kwanjiru/eduid/core/user"
)

type userRepository struct {
	db   *userTable
	invs *invitationTable

	pkCount    int
	invPkCount int
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user, invs: db.invitation}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[int]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}

	for _, usr := range repo.query() {
		if excluded[usr.ID] {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.pkCount++
	usr.ID = repo.pkCount
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if (usr.Username == username) || (usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.IsActive = *isActive
	}
	origUsr.Name = usr.Name
	origUsr.Username = usr.Username
	origUsr.Email = usr.Email
	origUsr.Role = usr.Role
	origUsr.UpdatedAt = usr.UpdatedAt
	origUsr.LastLogin = usr.LastLogin

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *userRepository) CreateInvitation(inv user.AdminInvitation) (user.AdminInvitation, error) {
	repo.invs.Lock()
	defer repo.invs.Unlock()

	repo.invPkCount++
	inv.ID = repo.invPkCount
	repo.invs.table[inv.ID] = &inv
	return inv, nil
}

func (repo *userRepository) GetInvitationByToken(token string) (user.AdminInvitation, error) {
	repo.invs.RLock()
	defer repo.invs.RUnlock()

	for _, inv := range repo.invs.table {
		if inv.Token == token {
			return *inv, nil
		}
	}
	return user.AdminInvitation{}, user.ErrInviteNotFound
}

func (repo *userRepository) UpdateInvitation(inv user.AdminInvitation) (user.AdminInvitation, error) {
	repo.invs.Lock()
	defer repo.invs.Unlock()

	if _, ok := repo.invs.table[inv.ID]; !ok {
		return user.AdminInvitation{}, user.ErrInviteNotFound
	}
	repo.invs.table[inv.ID] = &inv
	return inv, nil
}
