package store

import (
	"context"
	"fmt"

	"farmacia/m/domain"
	"farmacia/m/internal/password"
)

// CreateClient stores a new client. The plaintext secret is hashed here,
// never by the caller.
func (q *Queries) CreateClient(ctx context.Context, c domain.Client, plain string) (domain.Client, error) {
	hashed, err := password.Hash(plain)
	if err != nil {
		return domain.Client{}, fmt.Errorf("hash client password: %w", err)
	}
	c.Email = normalizeEmail(c.Email)
	c.Password = hashed
	c.ID, err = q.insert(ctx, `INSERT INTO clients (first_name, last_name, tax_id, address, phone, email, password)
                VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.FirstName, c.LastName, c.TaxID, c.Address, c.Phone, c.Email, c.Password)
	if err != nil {
		return domain.Client{}, err
	}
	return q.GetClient(ctx, c.ID)
}

func (q *Queries) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	var c domain.Client
	err := q.get(ctx, &c, `SELECT id, first_name, last_name, tax_id, address, phone, email, password, created_at FROM clients WHERE id = ?`, id)
	return c, err
}

// UpdateClient overwrites profile fields. newSecret may be empty, in
// which case the stored hash is kept byte for byte.
func (q *Queries) UpdateClient(ctx context.Context, c domain.Client, newSecret string) (domain.Client, error) {
	current, err := q.GetClient(ctx, c.ID)
	if err != nil {
		return domain.Client{}, err
	}
	hashed, _, err := password.HashIfChanged(current.Password, newSecret)
	if err != nil {
		return domain.Client{}, fmt.Errorf("hash client password: %w", err)
	}
	_, err = q.exec(ctx, `UPDATE clients SET first_name = ?, last_name = ?, tax_id = ?, address = ?, phone = ?, email = ?, password = ? WHERE id = ?`,
		c.FirstName, c.LastName, c.TaxID, c.Address, c.Phone, normalizeEmail(c.Email), hashed, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Client{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return domain.Client{}, err
	}
	return q.GetClient(ctx, c.ID)
}

func (q *Queries) CreateEmployee(ctx context.Context, e domain.Employee, plain string) (domain.Employee, error) {
	hashed, err := password.Hash(plain)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("hash employee password: %w", err)
	}
	e.Email = normalizeEmail(e.Email)
	e.ID, err = q.insert(ctx, `INSERT INTO employees (name, email, password, position, phone, branch_id)
                VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		e.Name, e.Email, hashed, e.Position, e.Phone, e.BranchID)
	if err != nil {
		return domain.Employee{}, err
	}
	return q.GetEmployee(ctx, e.ID)
}

func (q *Queries) GetEmployee(ctx context.Context, id int64) (domain.Employee, error) {
	var e domain.Employee
	err := q.get(ctx, &e, `SELECT id, name, email, password, position, phone, branch_id, created_at FROM employees WHERE id = ?`, id)
	return e, err
}

// FindAccountByEmail looks the email up in the table owned by role.
func (q *Queries) FindAccountByEmail(ctx context.Context, role domain.Role, email string) (domain.Account, error) {
	email = normalizeEmail(email)
	switch role {
	case domain.RoleCustomer:
		var c domain.Client
		if err := q.get(ctx, &c, `SELECT id, first_name, email, password FROM clients WHERE email = ?`, email); err != nil {
			return domain.Account{}, err
		}
		return c.Account(), nil
	case domain.RoleEmployee:
		var e domain.Employee
		if err := q.get(ctx, &e, `SELECT id, name, email, password FROM employees WHERE email = ?`, email); err != nil {
			return domain.Account{}, err
		}
		return e.Account(), nil
	}
	return domain.Account{}, fmt.Errorf("unknown role %q: %w", role, ErrNotFound)
}

func (q *Queries) FindAccountByID(ctx context.Context, role domain.Role, id int64) (domain.Account, error) {
	switch role {
	case domain.RoleCustomer:
		c, err := q.GetClient(ctx, id)
		if err != nil {
			return domain.Account{}, err
		}
		return c.Account(), nil
	case domain.RoleEmployee:
		e, err := q.GetEmployee(ctx, id)
		if err != nil {
			return domain.Account{}, err
		}
		return e.Account(), nil
	}
	return domain.Account{}, fmt.Errorf("unknown role %q: %w", role, ErrNotFound)
}

// SetPassword replaces the secret of an account, hashing it on the way in.
func (q *Queries) SetPassword(ctx context.Context, role domain.Role, id int64, plain string) error {
	account, err := q.FindAccountByID(ctx, role, id)
	if err != nil {
		return err
	}
	hashed, changed, err := password.HashIfChanged(account.Password, plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if !changed {
		return nil
	}
	table := "clients"
	if role == domain.RoleEmployee {
		table = "employees"
	}
	_, err = q.exec(ctx, `UPDATE `+table+` SET password = ? WHERE id = ?`, hashed, id)
	return err
}
