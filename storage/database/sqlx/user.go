package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tshiala/kampus/core"
	"github.com/tshiala/kampus/core/user"
)

const pqUniqueViolation = "23505"

type userRow struct {
	ID           int            `db:"id"`
	Email        string         `db:"email"`
	FullName     string         `db:"full_name"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r userRow) unpack() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		IsActive:     r.IsActive,
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

const userSelect = `
SELECT u.id, u.email, u.full_name, u.is_active, u.password_hash, u.created_at, u.updated_at, u.last_login,
       COALESCE(array_agg(ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}') AS roles
FROM "user" u
LEFT JOIN user_role ur ON ur.user_id = u.id`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND NOT (id = ANY($2)))`
	ids := make(pq.Int64Array, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, int64(u.ID))
	}

	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, email, ids).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
INSERT INTO "user" (email, full_name, is_active, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		usr.Email, usr.FullName, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}

	if err = setRoles(ctx, tx, usr.ID, usr.Roles); err != nil {
		return user.User{}, err
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing user")
	}
	return usr, nil
}

func setRoles(ctx context.Context, tx *sqlx.Tx, userID int, roles []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_role WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "clearing roles")
	}
	for _, role := range roles {
		// ON CONFLICT guards against duplicate tags in the input
		query := `INSERT INTO user_role (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, userID, role); err != nil {
			return errors.Wrap(err, "assigning role")
		}
	}
	return nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	query := userSelect + ` WHERE u.id = $1 GROUP BY u.id`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return row.unpack(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := userSelect + ` WHERE u.email = $1 GROUP BY u.id`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	return row.unpack(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			p1, p2 := arg(val), arg(val)
			conds = append(conds, "(u.full_name ILIKE "+p1+" OR u.email ILIKE "+p2+")")
		}
		if len(filter.Roles) > 0 {
			p := arg(pq.StringArray(filter.Roles))
			conds = append(conds, "EXISTS (SELECT 1 FROM user_role r WHERE r.user_id = u.id AND r.role = ANY("+p+"))")
		}
		if filter.IsActive != nil {
			conds = append(conds, "u.is_active = "+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "u.created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "u.created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}

	query := userSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " GROUP BY u.id"
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, "u."+ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// only save set fields
	sets := []string{"updated_at = $1"}
	args := []interface{}{usr.UpdatedAt}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if usr.Email != "" {
		add("email", usr.Email)
	}
	if usr.FullName != "" {
		add("full_name", usr.FullName)
	}
	if usr.PasswordHash != nil {
		add("password_hash", usr.PasswordHash)
	}
	if !usr.LastLogin.IsZero() {
		add("last_login", usr.LastLogin)
	}
	if isActive != nil {
		add("is_active", *isActive)
	}
	args = append(args, usr.ID)

	query := `UPDATE "user" SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}

	if usr.Roles != nil {
		if err = setRoles(ctx, tx, usr.ID, usr.Roles); err != nil {
			return user.User{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing user update")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	pqIDs := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		pqIDs = append(pqIDs, int64(id))
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pqIDs); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
