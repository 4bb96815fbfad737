package recfmt

import "github.com/tidwall/gjson"

// Query evaluates a gjson path expression over the record's canonical JSON
// encoding and returns the match. It is a read-only convenience for
// reaching into sub-collections ("rows.0.name", "grid.1.2") without
// unpacking them; the record is not modified, so querying a frozen record
// is fine.
func (c *CompositeRecord) Query(path string) (gjson.Result, error) {
	text, err := c.EncodeJSON()
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Get(text, path), nil
}

// QueryMany evaluates several gjson paths over one encoding pass.
func (c *CompositeRecord) QueryMany(paths ...string) ([]gjson.Result, error) {
	text, err := c.EncodeJSON()
	if err != nil {
		return nil, err
	}
	return gjson.GetMany(text, paths...), nil
}
