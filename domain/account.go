package domain

// Role is the single role claim carried by a session token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleEmployee
}

type Client struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"nombre"`
	LastName  string `db:"last_name" json:"apellido"`
	TaxID     string `db:"tax_id" json:"nit"`
	Address   string `db:"address" json:"direccion"`
	Phone     string `db:"phone" json:"telefono"`
	Email     string `db:"email" json:"correo"`
	Password  string `db:"password" json:"-"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

type Employee struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"nombre"`
	Email     string `db:"email" json:"correo"`
	Password  string `db:"password" json:"-"`
	Position  string `db:"position" json:"puesto"`
	Phone     string `db:"phone" json:"telefono"`
	BranchID  *int64 `db:"branch_id" json:"id_sucursal,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

// Account is the role-independent view of a login subject.
type Account struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Role     Role
}

// Profile is the public part of an account returned after login.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

func (c Client) Account() Account {
	return Account{ID: c.ID, Name: c.FirstName, Email: c.Email, Password: c.Password, Role: RoleCustomer}
}

func (e Employee) Account() Account {
	return Account{ID: e.ID, Name: e.Name, Email: e.Email, Password: e.Password, Role: RoleEmployee}
}

func (a Account) Profile() Profile {
	return Profile{ID: a.ID, Name: a.Name, Email: a.Email}
}
