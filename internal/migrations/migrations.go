package migrations

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the pharmacy backend.
func Run(db *sqlx.DB) {
	if err := Apply(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

// Apply executes every schema statement for the connection's driver.
// Statements are idempotent, so Apply is safe to call on every start.
func Apply(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// Money columns are TEXT on SQLite so decimal values round-trip exactly.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS clients (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL DEFAULT '',
            tax_id TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS employees (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            position TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            branch_id INTEGER,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(branch_id) REFERENCES branches(id)
        );`,
	`CREATE TABLE IF NOT EXISTS products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            unit_price TEXT NOT NULL,
            image_url TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS inventory (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            product_id INTEGER NOT NULL,
            branch_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity >= 0),
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(product_id, branch_id),
            FOREIGN KEY(product_id) REFERENCES products(id),
            FOREIGN KEY(branch_id) REFERENCES branches(id)
        );`,
	`CREATE TABLE IF NOT EXISTS inventory_movements (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            product_id INTEGER NOT NULL,
            branch_id INTEGER NOT NULL,
            kind TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            reference TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(product_id) REFERENCES products(id),
            FOREIGN KEY(branch_id) REFERENCES branches(id)
        );`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            client_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(client_id, product_id),
            FOREIGN KEY(client_id) REFERENCES clients(id) ON DELETE CASCADE,
            FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            client_id INTEGER NOT NULL,
            agent_id INTEGER,
            branch_id INTEGER NOT NULL,
            total TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(client_id) REFERENCES clients(id),
            FOREIGN KEY(agent_id) REFERENCES employees(id),
            FOREIGN KEY(branch_id) REFERENCES branches(id)
        );`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            sale_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price TEXT NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id),
            FOREIGN KEY(product_id) REFERENCES products(id)
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            sale_id INTEGER NOT NULL UNIQUE,
            number TEXT NOT NULL UNIQUE,
            issued_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(sale_id) REFERENCES sales(id)
        );`,
	`CREATE TABLE IF NOT EXISTS payment_transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id INTEGER NOT NULL,
            method TEXT NOT NULL,
            amount TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(invoice_id) REFERENCES invoices(id)
        );`,
	`CREATE TABLE IF NOT EXISTS processed_events (
            event_id TEXT PRIMARY KEY,
            event_type TEXT NOT NULL,
            sale_id INTEGER,
            processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS clients (
			id SERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			tax_id TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS employees (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			position TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			branch_id INTEGER REFERENCES branches(id),
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			unit_price NUMERIC(10,2) NOT NULL,
			image_url TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS inventory (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL REFERENCES products(id),
			branch_id INTEGER NOT NULL REFERENCES branches(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(product_id, branch_id)
		);`,
	`CREATE TABLE IF NOT EXISTS inventory_movements (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL REFERENCES products(id),
			branch_id INTEGER NOT NULL REFERENCES branches(id),
			kind TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			reference TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
			id SERIAL PRIMARY KEY,
			client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			added_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(client_id, product_id)
		);`,
	`CREATE TABLE IF NOT EXISTS sales (
			id SERIAL PRIMARY KEY,
			client_id INTEGER NOT NULL REFERENCES clients(id),
			agent_id INTEGER REFERENCES employees(id),
			branch_id INTEGER NOT NULL REFERENCES branches(id),
			total NUMERIC(10,2) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
			id SERIAL PRIMARY KEY,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			unit_price NUMERIC(10,2) NOT NULL
		);`,
	`CREATE TABLE IF NOT EXISTS invoices (
			id SERIAL PRIMARY KEY,
			sale_id INTEGER NOT NULL UNIQUE REFERENCES sales(id),
			number TEXT NOT NULL UNIQUE,
			issued_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS payment_transactions (
			id SERIAL PRIMARY KEY,
			invoice_id INTEGER NOT NULL REFERENCES invoices(id),
			method TEXT NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS processed_events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			sale_id INTEGER,
			processed_at TIMESTAMPTZ DEFAULT NOW()
		);`,
}
