package store

// Dates are stored as YYYY-MM-DD text so both engines compare them the same
// way. An empty next_maintenance means no maintenance is scheduled.
const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
    vehicle_id       TEXT PRIMARY KEY,
    type             TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'active',
    mileage          BIGINT NOT NULL DEFAULT 0,
    fuel_efficiency  DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_maintenance TEXT NOT NULL DEFAULT '',
    next_maintenance TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_vehicles_next ON vehicles(next_maintenance);

CREATE TABLE IF NOT EXISTS fuel_data (
    vehicle_id        TEXT NOT NULL,
    date              TEXT NOT NULL,
    fuel_consumed     DOUBLE PRECISION NOT NULL DEFAULT 0,
    distance_traveled DOUBLE PRECISION NOT NULL DEFAULT 0,
    fuel_efficiency   DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (vehicle_id, date)
);

CREATE INDEX IF NOT EXISTS idx_fuel_data_date ON fuel_data(date);
`
