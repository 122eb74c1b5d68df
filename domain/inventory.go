package domain

// InventoryRecord is the stock count of one product at one branch.
// Quantity never drops below zero once a write commits.
type InventoryRecord struct {
	ID          int64  `db:"id" json:"id"`
	ProductID   int64  `db:"product_id" json:"id_producto"`
	BranchID    int64  `db:"branch_id" json:"id_sucursal"`
	Quantity    int64  `db:"quantity" json:"cantidad"`
	ProductName string `db:"product_name" json:"producto,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

type MovementKind string

const (
	MovementReceipt MovementKind = "entrada"
	MovementSale    MovementKind = "venta"
)

type InventoryMovement struct {
	ID        int64        `db:"id" json:"id"`
	ProductID int64        `db:"product_id" json:"id_producto"`
	BranchID  int64        `db:"branch_id" json:"id_sucursal"`
	Kind      MovementKind `db:"kind" json:"tipo_movimiento"`
	Quantity  int64        `db:"quantity" json:"cantidad"`
	Reference string       `db:"reference" json:"referencia"`
	CreatedAt string       `db:"created_at" json:"fecha"`
}
