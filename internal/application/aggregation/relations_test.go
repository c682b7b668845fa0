package aggregation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

func TestParseOrthologyRelations(t *testing.T) {
	in := "#tax_id\tGeneID\trelationship\tOther_tax_id\tOther_GeneID\n" +
		"9606\t7157\tOrtholog\t10090\t22059\n" +
		"\n" +
		"9606\t7157\tOrtholog\t10116\t24842\n" +
		"9606\t7157\tPotential ortholog\t7955\t30590\n" +
		"9606\t1\tOrtholog\t10090\t117586\n"

	x, err := ParseOrthologyRelations(context.Background(), strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 3, x.Rows())
	assert.Equal(t, []string{"1", "7157"}, x.Groups())
	assert.Equal(t, []string{"22059", "24842"}, x.Orthologs("7157"))
	assert.Empty(t, x.Orthologs("missing"))
	assert.Equal(t, map[string]int{"Potential ortholog": 1}, x.Ignored())
}

func TestParseOrthologyRelations_MalformedLine(t *testing.T) {
	in := "9606\t7157\tOrtholog\t10090\t22059\n9606\t7157\tOrtholog\n"

	_, err := ParseOrthologyRelations(context.Background(), strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMalformedRecord))
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "expected 5 fields, got 3")
}

func TestParseHomoloGene(t *testing.T) {
	in := "3\t9606\t34\tACADM\t4557231\tNP_000007.1\n" +
		"3\t10090\t11364\tAcadm\t6680618\tNP_031408.1\n" +
		"3\t10090\t11364\tAcadm\t6680618\tNP_031408.1\n" +
		"5\t9606\t37\tACADVL\t4557235\tNP_000009.1\n"

	h, err := ParseHomoloGene(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"3", "5"}, h.IDs())
	assert.Equal(t, []HomologyMember{
		{TaxID: "9606", GeneID: "34", Symbol: "ACADM"},
		{TaxID: "10090", GeneID: "11364", Symbol: "Acadm"},
	}, h.Members("3"))

	_, err = ParseHomoloGene(context.Background(), strings.NewReader("3\t9606\n"))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedRecord))
}

//Personal.AI order the ending
