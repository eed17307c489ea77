// Package psqlbuilder is a thin wrapper over squirrel pre-configured
// with PostgreSQL dollar placeholders.
package psqlbuilder

import "github.com/Masterminds/squirrel"

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select возвращает SELECT builder с плейсхолдерами $N
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert возвращает INSERT builder с плейсхолдерами $N
func Insert(into string) squirrel.InsertBuilder {
	return builder.Insert(into)
}

// Update возвращает UPDATE builder с плейсхолдерами $N
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete возвращает DELETE builder с плейсхолдерами $N
func Delete(from string) squirrel.DeleteBuilder {
	return builder.Delete(from)
}
