package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &WriterSink{Writer: &buf}

	columns := []string{"UserPrincipalName", "TotalLicenses", "Licenses"}
	rows := []Record{
		{"UserPrincipalName": "alice@contoso.com", "TotalLicenses": "2", "Licenses": "Office E5 [Direct]; EM+S [Group: Sales Team]"},
		{"UserPrincipalName": "bob@contoso.com", "TotalLicenses": "0", "Licenses": ""},
	}

	err := sink.Write(context.Background(), "licenses", columns, rows)
	require.NoError(t, err)

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, columns, parsed[0])
	assert.Equal(t, "alice@contoso.com", parsed[1][0])
	assert.Equal(t, "Office E5 [Direct]; EM+S [Group: Sales Team]", parsed[1][2])
	assert.Equal(t, []string{"bob@contoso.com", "0", ""}, parsed[2])
}

func TestWriterSink_MissingFieldsRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	sink := &WriterSink{Writer: &buf}

	err := sink.Write(context.Background(), "licenses", []string{"A", "B"}, []Record{{"A": "1"}})
	require.NoError(t, err)

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, parsed[1])
}
