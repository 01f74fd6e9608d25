package storage

// Migration represents a database migration
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// GetSQLiteMigrations returns SQLite migration scripts
func GetSQLiteMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create contract_config table",
			SQL: `
				CREATE TABLE IF NOT EXISTS contract_config (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					contract_owner TEXT NOT NULL,
					min_ticket_price INTEGER NOT NULL,
					platform_fee_percent INTEGER NOT NULL,
					next_event_id INTEGER NOT NULL,
					next_ticket_id INTEGER NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS events (
					id INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL,
					venue TEXT NOT NULL,
					event_height INTEGER NOT NULL,
					total_tickets INTEGER NOT NULL,
					tickets_sold INTEGER NOT NULL DEFAULT 0,
					ticket_price INTEGER NOT NULL,
					refund_window INTEGER NOT NULL,
					category TEXT NOT NULL,
					organizer TEXT NOT NULL,
					revenue INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN DEFAULT TRUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer);
				CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
			`,
		},
		{
			Version:     "003",
			Description: "Create tickets table",
			SQL: `
				CREATE TABLE IF NOT EXISTS tickets (
					id INTEGER PRIMARY KEY,
					event_id INTEGER NOT NULL REFERENCES events(id),
					owner TEXT NOT NULL,
					purchase_price INTEGER NOT NULL,
					purchase_height INTEGER NOT NULL,
					is_used BOOLEAN DEFAULT FALSE,
					is_refunded BOOLEAN DEFAULT FALSE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_tickets_event_id ON tickets(event_id);
				CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner);
			`,
		},
		{
			Version:     "004",
			Description: "Create ticket_owners table",
			SQL: `
				CREATE TABLE IF NOT EXISTS ticket_owners (
					owner TEXT NOT NULL,
					ticket_id INTEGER NOT NULL,
					PRIMARY KEY (owner, ticket_id)
				);

				CREATE INDEX IF NOT EXISTS idx_ticket_owners_owner ON ticket_owners(owner);
			`,
		},
		{
			Version:     "005",
			Description: "Create organizer_stats table",
			SQL: `
				CREATE TABLE IF NOT EXISTS organizer_stats (
					organizer TEXT PRIMARY KEY,
					events_organized INTEGER NOT NULL DEFAULT 0,
					total_revenue INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
	}
}

// GetPostgreSQLMigrations returns PostgreSQL migration scripts
func GetPostgreSQLMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create contract_config table",
			SQL: `
				CREATE TABLE IF NOT EXISTS contract_config (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					contract_owner TEXT NOT NULL,
					min_ticket_price BIGINT NOT NULL,
					platform_fee_percent BIGINT NOT NULL,
					next_event_id BIGINT NOT NULL,
					next_ticket_id BIGINT NOT NULL,
					updated_at TIMESTAMPTZ DEFAULT NOW()
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS events (
					id BIGINT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL,
					venue TEXT NOT NULL,
					event_height BIGINT NOT NULL,
					total_tickets BIGINT NOT NULL,
					tickets_sold BIGINT NOT NULL DEFAULT 0,
					ticket_price BIGINT NOT NULL,
					refund_window BIGINT NOT NULL,
					category TEXT NOT NULL,
					organizer TEXT NOT NULL,
					revenue BIGINT NOT NULL DEFAULT 0,
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMPTZ DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer);
				CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
			`,
		},
		{
			Version:     "003",
			Description: "Create tickets table",
			SQL: `
				CREATE TABLE IF NOT EXISTS tickets (
					id BIGINT PRIMARY KEY,
					event_id BIGINT NOT NULL REFERENCES events(id),
					owner TEXT NOT NULL,
					purchase_price BIGINT NOT NULL,
					purchase_height BIGINT NOT NULL,
					is_used BOOLEAN DEFAULT FALSE,
					is_refunded BOOLEAN DEFAULT FALSE,
					created_at TIMESTAMPTZ DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_tickets_event_id ON tickets(event_id);
				CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner);
			`,
		},
		{
			Version:     "004",
			Description: "Create ticket_owners table",
			SQL: `
				CREATE TABLE IF NOT EXISTS ticket_owners (
					owner TEXT NOT NULL,
					ticket_id BIGINT NOT NULL,
					PRIMARY KEY (owner, ticket_id)
				);

				CREATE INDEX IF NOT EXISTS idx_ticket_owners_owner ON ticket_owners(owner);
			`,
		},
		{
			Version:     "005",
			Description: "Create organizer_stats table",
			SQL: `
				CREATE TABLE IF NOT EXISTS organizer_stats (
					organizer TEXT PRIMARY KEY,
					events_organized BIGINT NOT NULL DEFAULT 0,
					total_revenue BIGINT NOT NULL DEFAULT 0,
					updated_at TIMESTAMPTZ DEFAULT NOW()
				);
			`,
		},
	}
}
