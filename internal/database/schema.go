// ABOUTME: SQLite schema and seed rows for the customers/orders demo database
// ABOUTME: Seed rows are the fixed literal INSERT statements loaded by Seed
package database

// Schema creates the demo tables. orders.customer_id is deliberately not a
// foreign key: the seed orders reference customers 4 and 5.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT
);

CREATE TABLE IF NOT EXISTS orders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id INTEGER,
    order_date TEXT,
    amount REAL,
    product TEXT
);
`

const insertCustomers = `
INSERT INTO customers (name, email)
VALUES
('Alice Smith', 'alice@example.com'),
('Bob Johnson', 'bob@example.com');
`

const insertOrders = `
INSERT INTO orders (customer_id, order_date, amount, product)
VALUES
(4, '2025-03-10', 250.50, 'Laptop'),
(4, '2025-03-12', 99.99, 'Wireless Mouse'),
(4, '2025-03-15', 450.75, 'Smartphone'),
(5, '2025-03-18', 75.00, 'Headphones'),
(5, '2025-03-22', 1200.00, 'Gaming Console');
`

// SeedCustomerCount and SeedOrderCount are the rows inserted by one Seed call
const (
	SeedCustomerCount = 2
	SeedOrderCount    = 5
)
