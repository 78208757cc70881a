package restdb

type fieldRef struct {
	FieldPath string `json:"fieldPath"`
}

type order struct {
	Field     fieldRef `json:"field"`
	Direction string   `json:"direction"`
}

type fieldFilter struct {
	Field fieldRef `json:"field"`
	Op    string   `json:"op"`
	Value value    `json:"value"`
}

type filter struct {
	FieldFilter *fieldFilter `json:"fieldFilter,omitempty"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type structuredQuery struct {
	From    []collectionSelector `json:"from"`
	Where   *filter              `json:"where,omitempty"`
	OrderBy []order              `json:"orderBy,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
}

type runQueryRequest struct {
	StructuredQuery structuredQuery `json:"structuredQuery"`
}

// runQueryResponse is one element of the streamed runQuery array. Elements
// without a document only carry progress information.
type runQueryResponse []struct {
	Document *document `json:"document"`
}

func newestFirst(collection string) structuredQuery {
	return structuredQuery{
		From:    []collectionSelector{{CollectionID: collection}},
		OrderBy: []order{{Field: fieldRef{FieldPath: "createdAt"}, Direction: "DESCENDING"}},
	}
}

func where(q structuredQuery, field, op string, v value) structuredQuery {
	q.Where = &filter{FieldFilter: &fieldFilter{Field: fieldRef{FieldPath: field}, Op: op, Value: v}}
	return q
}
