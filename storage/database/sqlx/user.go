package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kwanjiru/eduid/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}
	if len(exclIDs) == 0 {
		exclIDs = append(exclIDs, 0) // keep NOT IN well-formed
	}

	check := func(column, value string, sentinel error) error {
		q, args, err := sqlx.In(
			`SELECT COUNT(*) FROM "user" WHERE `+column+` = ? AND id NOT IN (?)`, value, exclIDs)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		var count int
		if err = repo.db.Get(&count, repo.db.Rebind(q), args...); err != nil {
			return errors.Wrap(err, "checking uniqueness")
		}
		if count > 0 {
			return sentinel
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	const q = `
		INSERT INTO "user" (name, username, email, is_active, role, password_hash, created_at, updated_at, last_login)
		VALUES (:name, :username, :email, :is_active, :role, :password_hash, :created_at, :updated_at, :last_login)
		RETURNING id`
	rows, err := repo.db.NamedQuery(q, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "creating user")
		}
	}
	return usr, rows.Err()
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var users []user.User
	err := repo.db.Select(&users, `SELECT * FROM "user" ORDER BY id`)
	return users, err
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE username = $1 OR email = $1`, username)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	const q = `
		UPDATE "user"
		SET name = :name, username = :username, email = :email, is_active = :is_active,
		    role = :role, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExec(q, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(q), args...)
	return err
}

func (repo *userRepository) CreateInvitation(inv user.AdminInvitation) (user.AdminInvitation, error) {
	const q = `
		INSERT INTO admin_invitation (token, email, created_by, used_by, created_at, expires_at, used_at, is_used)
		VALUES (:token, :email, :created_by, :used_by, :created_at, :expires_at, :used_at, :is_used)
		RETURNING id`
	rows, err := repo.db.NamedQuery(q, inv)
	if err != nil {
		return user.AdminInvitation{}, errors.Wrap(err, "creating invitation")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&inv.ID); err != nil {
			return user.AdminInvitation{}, errors.Wrap(err, "creating invitation")
		}
	}
	return inv, rows.Err()
}

func (repo *userRepository) GetInvitationByToken(token string) (user.AdminInvitation, error) {
	var inv user.AdminInvitation
	err := repo.db.Get(&inv, `SELECT * FROM admin_invitation WHERE token = $1`, token)
	if err == sql.ErrNoRows {
		return user.AdminInvitation{}, user.ErrInviteNotFound
	}
	return inv, err
}

func (repo *userRepository) UpdateInvitation(inv user.AdminInvitation) (user.AdminInvitation, error) {
	const q = `
		UPDATE admin_invitation
		SET used_by = :used_by, used_at = :used_at, is_used = :is_used
		WHERE id = :id`
	res, err := repo.db.NamedExec(q, inv)
	if err != nil {
		return user.AdminInvitation{}, errors.Wrap(err, "updating invitation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.AdminInvitation{}, user.ErrInviteNotFound
	}
	return inv, nil
}
