package contract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/trendfinder-api/internal/contract"
	"github.com/phrazzld/trendfinder-api/internal/domain"
)

func loadDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := contract.Load(context.Background())
	require.NoError(t, err, "the embedded contract must parse and validate")
	return doc
}

func TestLoadEmbeddedDocument(t *testing.T) {
	doc := loadDoc(t)
	assert.Equal(t, "ACLED Trendfinder API", doc.Info.Title)
	assert.NotEmpty(t, contract.Document())
}

func TestTrendsOperationShape(t *testing.T) {
	doc := loadDoc(t)

	item := doc.Paths.Find("/api/trends")
	require.NotNil(t, item, "contract must declare /api/trends")
	op := item.Get
	require.NotNil(t, op, "search is a GET operation")

	var required, query []string
	for _, ref := range op.Parameters {
		p := ref.Value
		require.NotNil(t, p)
		if p.Required {
			required = append(required, p.Name)
		}
		if p.In == openapi3.ParameterInQuery {
			query = append(query, p.Name)
		}
	}

	assert.ElementsMatch(t, []string{"country", "start_date", "end_date"}, required,
		"exactly the three mandatory filters are required")
	assert.ElementsMatch(t, []string{
		"country", "start_date", "end_date",
		"page", "page_size", "sort_by", "sort_dir",
		"q", "event_type", "sub_event_type", "actor1", "actor2",
	}, query)

	for _, status := range []string{"200", "400", "500"} {
		assert.NotNil(t, op.Responses.Value(status), "contract must document a %s response", status)
	}
}

func TestSortEnumMatchesAllowList(t *testing.T) {
	doc := loadDoc(t)

	op := doc.Paths.Find("/api/trends").Get
	require.NotNil(t, op)

	var declared []string
	for _, ref := range op.Parameters {
		p := ref.Value
		if p.Name != "sort_by" {
			continue
		}
		require.NotNil(t, p.Schema)
		require.NotNil(t, p.Schema.Value)
		for _, v := range p.Schema.Value.Enum {
			s, ok := v.(string)
			require.True(t, ok)
			declared = append(declared, s)
		}
	}
	require.NotEmpty(t, declared, "sort_by must declare its enum")

	var allowed []string
	for _, f := range domain.SortFields() {
		allowed = append(allowed, string(f))
	}
	assert.ElementsMatch(t, allowed, declared,
		"the published sort enum and the compiler allow-list must agree")
}

func TestHealthDeclared(t *testing.T) {
	doc := loadDoc(t)
	item := doc.Paths.Find("/health")
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)
}
