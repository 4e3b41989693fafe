package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
)

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// ListTables returns the names of the tables in the database.
	ListTables(ctx context.Context) ([]string, error)

	// Query returns every row of a table, each decoded into a new value of
	// the type of sampleEntry and returned as a pointer.
	Query(ctx context.Context, tableName string, sampleEntry any) ([]any, error)

	// Close closes the reader
	Close() error
}

type sqliteReader struct {
	*sql.DB
}

// NewReader opens an existing recording for reading. The file is opened read
// only and is never created.
func NewReader(filename string) (DataReader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("cannot open recording: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	return &sqliteReader{DB: db}, nil
}

// NewReaderWithDB creates a DataReader with a given database
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{DB: db}
}

func (r *sqliteReader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	sampleEntry any,
) ([]any, error) {
	structType := reflect.TypeOf(sampleEntry)
	if err := checkStructFields(sampleEntry); err != nil {
		return nil, err
	}

	rows, err := r.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		entry := reflect.New(structType)

		var dests []any
		for i := 0; i < structType.NumField(); i++ {
			if structType.Field(i).IsExported() {
				dests = append(dests, entry.Elem().Field(i).Addr().Interface())
			}
		}

		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}
