package domain

type Branch struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"nombre"`
	Address   string `db:"address" json:"direccion"`
	Phone     string `db:"phone" json:"telefono"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}
