package postgresql

// migrations returns the schema migrations keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS work_items (
				id TEXT PRIMARY KEY,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				priority TEXT NOT NULL DEFAULT '',
				payload JSONB NOT NULL DEFAULT '{}',
				plan JSONB NOT NULL DEFAULT '[]',
				attempts INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				decision_deadline TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items (status);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS approval_records (
				id SERIAL PRIMARY KEY,
				work_item_id TEXT NOT NULL,
				decision TEXT NOT NULL,
				actor TEXT NOT NULL,
				decided_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_approval_records_item ON approval_records (work_item_id);
		`,
	}
}
