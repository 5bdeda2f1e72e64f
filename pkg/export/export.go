package export

import "context"

// Record is one flat report row; Columns fixes the field order.
type Record map[string]string

// Sink persists an ordered list of flat records under a report name.
type Sink interface {
	Write(ctx context.Context, name string, columns []string, rows []Record) error
}
