package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

// Request describes the collection to drain.
type Request struct {
	// Entity is the top-level query field, e.g. "transfers"
	Entity string

	// Fields is the selection set, e.g. "id from to amount"
	Fields string

	// Where holds extra filter arguments, e.g. "type: HUB_TRANSFER"
	Where string
}

func (r Request) validate() error {
	if r.Entity == "" {
		return fmt.Errorf("entity is required")
	}
	if r.Fields == "" {
		return fmt.Errorf("fields are required")
	}
	return nil
}

// cursorQuery builds a page query for records whose id sorts after cursor.
func cursorQuery(req Request, cursor string, first int) string {
	where := "id_gt: " + strconv.Quote(cursor)
	if w := strings.TrimSpace(req.Where); w != "" {
		where += ", " + w
	}
	return fmt.Sprintf("{ %s(first: %d, orderBy: id, where: {%s}) { %s } }",
		req.Entity, first, where, req.Fields)
}

// skipQuery builds a page query for an offset into the collection.
func skipQuery(req Request, skip, first int) string {
	args := fmt.Sprintf("first: %d, skip: %d", first, skip)
	if w := strings.TrimSpace(req.Where); w != "" {
		args = "where: {" + w + "}, " + args
	}
	return fmt.Sprintf("{ %s(%s) { %s } }", req.Entity, args, req.Fields)
}
