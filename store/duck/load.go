package duck

import (
	"fmt"

	"github.com/pkg/errors"
)

// LoadNDJSON ingests a newline-delimited JSON export into a fresh table for
// entity, replacing any prior load. DuckDB's json reader infers the schema.
func (dk *Duck) LoadNDJSON(entity, path string) (err error) {

	if !identRe.MatchString(entity) {
		err = errors.Errorf("entity %q is not a usable table name", entity)
		return
	}

	_, err = dk.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", entity))
	if err != nil {
		err = errors.Wrapf(err, "failed to drop table %s", entity)
		return
	}

	create := fmt.Sprintf(`
		CREATE TABLE %s AS
		SELECT * FROM read_json_auto('%s', maximum_object_size=16777216)
	`, entity, escapeValue(path))

	_, err = dk.db.Exec(create)
	if err != nil {
		err = errors.Wrapf(err, "failed to load %s from %s", entity, path)
		return
	}

	return dk.register(entity)
}

// register records the table's columns so filter and sort validation can skip
// unknown fields without touching the database per query.
func (dk *Duck) register(entity string) (err error) {

	rows, err := dk.db.Query(
		"SELECT column_name FROM information_schema.columns WHERE table_name = ?", entity)
	if err != nil {
		err = errors.Wrapf(err, "failed to read schema for %s", entity)
		return
	}
	defer rows.Close()

	info := tableInfo{
		name:    entity,
		columns: map[string]bool{},
	}
	for rows.Next() {
		var col string
		err = rows.Scan(&col)
		if err != nil {
			err = errors.Wrapf(err, "failed to scan column name")
			return
		}
		info.columns[col] = true
	}
	err = rows.Err()
	if err != nil {
		err = errors.Wrapf(err, "error iterating schema rows")
		return
	}

	info.hasTenant = info.columns["tenant_id"]
	dk.tables[entity] = info
	return
}

// Entities lists the loaded entity tables.
func (dk *Duck) Entities() []string {

	out := make([]string, 0, len(dk.tables))
	for entity := range dk.tables {
		out = append(out, entity)
	}
	return out
}
