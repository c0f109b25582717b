package postgres

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyStatement(t *testing.T) {
	tests := []struct {
		name string
		opts CopyOptions
		want string
	}{
		{
			name: "defaults",
			opts: CopyOptions{},
			want: "COPY users FROM STDIN WITH (FORMAT text, DELIMITER ',')",
		},
		{
			name: "columns and separator",
			opts: CopyOptions{Columns: []string{"id", "name"}, Separator: ';'},
			want: "COPY users (id, name) FROM STDIN WITH (FORMAT text, DELIMITER ';')",
		},
		{
			name: "tab separated with null marker",
			opts: CopyOptions{Separator: '\t', Null: "NA"},
			want: "COPY users FROM STDIN WITH (FORMAT text, DELIMITER '\t', NULL 'NA')",
		},
		{
			name: "csv with header",
			opts: CopyOptions{Header: true},
			want: "COPY users FROM STDIN WITH (FORMAT csv, HEADER true, DELIMITER ',')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.statement("users")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := CopyOptions{Separator: 'é'}.statement("users")
	assert.ErrorIs(t, err, ErrInvalidSeparator)

	_, err = CopyOptions{Separator: '\n'}.statement("users")
	assert.ErrorIs(t, err, ErrInvalidSeparator)
}

func TestImportCsv(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("1;Alice\n2;Bob\n"), 0o600))

	n, err := p.ImportCsv(context.Background(), path, "users", CopyOptions{
		Columns:   []string{"id", "name"},
		Separator: ';',
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, n)
	require.Len(t, cursor.copies, 1)
	assert.Equal(t, "COPY users (id, name) FROM STDIN WITH (FORMAT text, DELIMITER ';')", cursor.copies[0].statement)
	assert.Equal(t, "1;Alice\n2;Bob\n", cursor.copies[0].data)
	assert.Empty(t, cursor.queries)
}

func TestImportCsvMissingFile(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	_, err := p.ImportCsv(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "users", CopyOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, cursor.copies)
}

func TestImportCsvReader(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	n, err := p.ImportCsvReader(context.Background(), strings.NewReader("1,Alice\n"), "users", CopyOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, "1,Alice\n", cursor.copies[0].data)
}

type fakeSource struct {
	objects map[string]string
	opened  []string
}

func (s *fakeSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.opened = append(s.opened, key)
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("the specified key does not exist")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestImportCsvObject(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)
	source := &fakeSource{objects: map[string]string{
		"exports/users.csv": "id,name\n1,Alice\n",
	}}

	n, err := p.ImportCsvObject(context.Background(), source, "exports/users.csv", "users", CopyOptions{Header: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, "COPY users FROM STDIN WITH (FORMAT csv, HEADER true, DELIMITER ',')", cursor.copies[0].statement)

	_, err = p.ImportCsvObject(context.Background(), source, "exports/missing.csv", "users", CopyOptions{})
	assert.Error(t, err)
	assert.Equal(t, []string{"exports/users.csv", "exports/missing.csv"}, source.opened)
	assert.Len(t, cursor.copies, 1)
}
