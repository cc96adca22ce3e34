package storage

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// foldFunc is the SQL name of a Unicode-aware lower(). SQLite's built-in
// lower() only folds ASCII.
const foldFunc = "fold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(foldFunc, 1, fold); err != nil {
		panic("storage: register " + foldFunc + ": " + err.Error())
	}
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
