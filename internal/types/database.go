package types

// MySQLFilter narrows a trade-log search; clauses combine with AND and
// paging applies after filtering. Decoded straight from the query
// API's request body.
type MySQLFilter struct {
	Query  []MySQLQuery `json:"query"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// MySQLQuery is a single column comparison, e.g. {ammId, =, <pool id>}.
type MySQLQuery struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Query  string `json:"query"`
}
