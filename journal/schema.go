package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	opened DATETIME NOT NULL,
	closed DATETIME NOT NULL,
	commission REAL NOT NULL,
	profit REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	commission REAL NOT NULL,
	total REAL NOT NULL,
	returns REAL NOT NULL,
	equity REAL NOT NULL,
	drawdown REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity_values (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_equity_values_time ON equity_values(time, symbol);
`
