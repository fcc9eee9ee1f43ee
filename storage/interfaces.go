package storage

import "github.com/go-gota/gota/dataframe"

// TableWriter persists a full listings table to some backing store.
type TableWriter interface {
	WriteTable(df dataframe.DataFrame) error
	Close() error
}
