package clause

const (
	// CurrentTable resolves to the table (or alias) of whatever is being
	// rendered: the joined table inside a JOIN ... ON, the root table elsewhere.
	CurrentTable string = "@@@table@@@"
	// PrimaryKey resolves to the primary key of the current model.
	PrimaryKey string = "@@@py@@@"
)

// PrimaryColumn the primary key column of the current table
var PrimaryColumn = Column{Table: CurrentTable, Name: PrimaryKey}

// Writer writer interface
type Writer interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
}

// Builder builder interface
type Builder interface {
	Writer
	WriteQuoted(field interface{})
	AddVar(Writer, ...interface{})
}
