package ddl

// ColumnDef describes one column. Name is unquoted; quoting happens at
// render time. Default is a raw SQL expression.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef is a dotted table name (e.g. "public.flowback_dataset") and its
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// OrderColumn keeps the dataset's row order in SQL backends, which do not
// preserve insertion order on their own.
const OrderColumn = "row_order"

// DatasetTable describes the table holding the dataset: one nullable TEXT
// column per dataset column plus OrderColumn as the primary key.
func DatasetTable(fqn string, columns []string) TableDef {
	t := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(columns)+1)}
	t.Columns = append(t.Columns, ColumnDef{Name: OrderColumn, SQLType: "INTEGER", PrimaryKey: true})
	for _, c := range columns {
		t.Columns = append(t.Columns, ColumnDef{Name: c, SQLType: "TEXT", Nullable: true})
	}
	return t
}
