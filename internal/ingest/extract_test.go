package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"bare", "5d41402a-bc4b-4a76-b971-000000000001", "5d41402a-bc4b-4a76-b971-000000000001"},
		{"first field", "5d41402a-bc4b-4a76-b971-000000000001,foo,bar", "5d41402a-bc4b-4a76-b971-000000000001"},
		{"double quoted", `"5d41402a-bc4b-4a76-b971-000000000001","foo"`, "5d41402a-bc4b-4a76-b971-000000000001"},
		{"single quoted", `'5d41402a-bc4b-4a76-b971-000000000001',1`, "5d41402a-bc4b-4a76-b971-000000000001"},
		{"padded", `  5d41402a-bc4b-4a76-b971-000000000001 ,x`, "5d41402a-bc4b-4a76-b971-000000000001"},
		{"empty line", "", ""},
		{"empty first field", ",foo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIdentifier(tt.line, ",", `"'`))
		})
	}
}

func TestExtractIdentifier_CustomDelimiter(t *testing.T) {
	assert.Equal(t, "abc", ExtractIdentifier("abc\tdef", "\t", ""))
	assert.Equal(t, `"abc"`, ExtractIdentifier(`"abc";x`, ";", ""), "no quote set keeps quotes")
}

func TestSniffLabel(t *testing.T) {
	assert.Equal(t, "affected_ids", SniffLabel(`"affected_ids",name`, ",", `"`))
	assert.Equal(t, "id", SniffLabel("\ufeffid", ",", `"`))
}
